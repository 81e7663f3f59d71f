package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	emaildomain "maildigest-backend/internal/email/domain"
	"maildigest-backend/internal/email/repository"
	"maildigest-backend/pkg/ai"
)

// hydrationUsecase implements HydrationUsecase
type hydrationUsecase struct {
	provider    emaildomain.MailProvider
	messageRepo repository.MessageRepository
	threadRepo  repository.ThreadRepository
	summarizer  ai.SummarizerService
	extractor   TextExtractor
	cfg         Config
}

// NewHydrationUsecase wires the hydration pipeline (dependency injection)
func NewHydrationUsecase(
	provider emaildomain.MailProvider,
	messageRepo repository.MessageRepository,
	threadRepo repository.ThreadRepository,
	summarizer ai.SummarizerService,
	extractor TextExtractor,
	cfg Config,
) HydrationUsecase {
	if cfg.MinExtractedTextLen <= 0 {
		cfg.MinExtractedTextLen = defaultMinExtractedTextLen
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = defaultAITimeout
	}
	return &hydrationUsecase{
		provider:    provider,
		messageRepo: messageRepo,
		threadRepo:  threadRepo,
		summarizer:  summarizer,
		extractor:   extractor,
		cfg:         cfg,
	}
}

// HydrateMessage is the per-message cache-aside path.
func (u *hydrationUsecase) HydrateMessage(ctx context.Context, userID string, raw *emaildomain.RawMessage) (*emaildomain.StandardizedEmail, error) {
	if raw == nil || raw.ID == "" {
		return nil, fmt.Errorf("raw message has no id")
	}

	cached, err := u.messageRepo.Get(ctx, raw.ID)
	if err != nil {
		return nil, fmt.Errorf("hydrate message %s: %w", raw.ID, err)
	}
	if cached.IsSummarized() {
		// Cache hit: frozen except for the thread key, no AI calls.
		return cached, nil
	}

	parts := u.flattenParts(ctx, userID, raw.ID, raw.Payload, true)
	email := normalizeMessage(raw, parts)

	// A partial earlier write may already carry a thread key; keep it so the
	// repair step sees the stored value.
	if cached != nil && cached.DBThreadKey != "" {
		email.DBThreadKey = cached.DBThreadKey
	}

	if err := u.generateSummaries(ctx, email); err != nil {
		return nil, fmt.Errorf("hydrate message %s: %w", raw.ID, err)
	}

	if err := u.messageRepo.Save(ctx, email); err != nil {
		return nil, fmt.Errorf("hydrate message %s: %w", raw.ID, err)
	}
	return email, nil
}

// HydrateThread hydrates every member in provider order, resolves the thread
// key, refreshes the thread summary when stale and repairs drifted members.
func (u *hydrationUsecase) HydrateThread(ctx context.Context, userID string, raw *emaildomain.RawThread) (*emaildomain.StandardizedThread, error) {
	if raw == nil || len(raw.Messages) == 0 {
		return nil, fmt.Errorf("thread has no messages")
	}

	// Sequential by construction: provider order is preserved and the
	// attachment-fetch path stays within upstream rate limits.
	messageIDs := make([]string, 0, len(raw.Messages))
	emails := make([]*emaildomain.StandardizedEmail, 0, len(raw.Messages))
	for _, msg := range raw.Messages {
		email, err := u.HydrateMessage(ctx, userID, msg)
		if err != nil {
			return nil, fmt.Errorf("hydrate thread %s: %w", raw.ID, err)
		}
		messageIDs = append(messageIDs, email.MessageID)
		emails = append(emails, email)
	}

	key := resolveThreadKey(messageIDs, emails)

	thread, err := u.resolveThreadSummary(ctx, key, messageIDs, emails)
	if err != nil {
		return nil, fmt.Errorf("hydrate thread %s: %w", raw.ID, err)
	}

	if err := u.repairThreadKeys(ctx, key, emails); err != nil {
		return nil, fmt.Errorf("hydrate thread %s: %w", raw.ID, err)
	}

	if thread.Summary == "" {
		// Unreachable when the components above behave; a summary-less
		// thread leaking out would poison every consumer, so fail loudly.
		return nil, fmt.Errorf("hydrate thread %s: thread resolved without a summary", raw.ID)
	}

	thread.Messages = emails
	return thread, nil
}

// resolveThreadKey picks the canonical thread key. A stored key on any
// member wins; otherwise the oldest message id anchors the thread, which is
// the last element because providers report messages newest first.
func resolveThreadKey(messageIDs []string, emails []*emaildomain.StandardizedEmail) string {
	var key string
	for _, email := range emails {
		if email.DBThreadKey == "" {
			continue
		}
		if key == "" {
			key = email.DBThreadKey
		} else if key != email.DBThreadKey {
			log.Printf("[Hydrator] Thread key conflict: message %s stores %q, keeping first discovered %q", email.MessageID, email.DBThreadKey, key)
		}
	}
	if key != "" {
		return key
	}
	return messageIDs[len(messageIDs)-1]
}

// resolveThreadSummary reuses the persisted thread summary when it still
// covers the current message set, and regenerates it otherwise.
func (u *hydrationUsecase) resolveThreadSummary(ctx context.Context, key string, messageIDs []string, emails []*emaildomain.StandardizedEmail) (*emaildomain.StandardizedThread, error) {
	stored, err := u.threadRepo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if stored != nil && stored.Summary != "" && sameIDSet(stored.MessageIDs, messageIDs) {
		return stored, nil
	}
	if stored != nil {
		log.Printf("[Hydrator] Thread %s is stale (message set changed or summary missing), regenerating summary", key)
	}

	var summary string
	if len(emails) == 1 {
		// One-message threads reuse the message summary; a separate AI call
		// would produce the same text at extra cost.
		summary = emails[0].Summary
	} else {
		memberSummaries := make([]string, len(emails))
		for i, email := range emails {
			memberSummaries[i] = email.Summary
		}
		summary, err = u.summarizeWithTimeout(ctx, func(ctx context.Context) (string, error) {
			return u.summarizer.SummarizeThread(ctx, memberSummaries)
		})
		if err != nil {
			return nil, fmt.Errorf("summarize thread: %w", err)
		}
	}

	thread := &emaildomain.StandardizedThread{
		DBThreadKey: key,
		MessageIDs:  messageIDs,
		Summary:     summary,
		Snippet:     emails[0].Snippet,
	}
	if err := u.threadRepo.Save(ctx, thread); err != nil {
		return nil, err
	}
	return thread, nil
}

// repairThreadKeys converges every member's stored back-reference onto the
// resolved key. Drift is self-healing and only worth a warning.
func (u *hydrationUsecase) repairThreadKeys(ctx context.Context, key string, emails []*emaildomain.StandardizedEmail) error {
	for _, email := range emails {
		if email.DBThreadKey == key {
			continue
		}
		if email.DBThreadKey != "" {
			log.Printf("[Hydrator] Repairing drifted thread key on message %s: %q -> %q", email.MessageID, email.DBThreadKey, key)
		}
		if err := u.messageRepo.SetThreadKey(ctx, email.MessageID, key); err != nil {
			return err
		}
		email.DBThreadKey = key
	}
	return nil
}

// HydrateAllThreadsForUser hydrates every thread the provider reports for
// the user. One thread's failure is logged and skipped; the batch returns
// whatever succeeded.
func (u *hydrationUsecase) HydrateAllThreadsForUser(ctx context.Context, userID string) ([]*emaildomain.StandardizedThread, error) {
	runID := uuid.New().String()

	threadIDs, err := u.provider.ListThreadIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list threads for user %s: %w", userID, err)
	}

	threads := make([]*emaildomain.StandardizedThread, 0, len(threadIDs))
	for _, threadID := range threadIDs {
		raw, err := u.provider.GetThread(ctx, userID, threadID)
		if err != nil {
			log.Printf("[Hydrator] Batch %s: fetching thread %s for user %s failed: %v", runID, threadID, userID, err)
			continue
		}
		thread, err := u.HydrateThread(ctx, userID, raw)
		if err != nil {
			log.Printf("[Hydrator] Batch %s: hydrating thread %s for user %s failed: %v", runID, threadID, userID, err)
			continue
		}
		threads = append(threads, thread)
	}

	log.Printf("[Hydrator] Batch %s: hydrated %d of %d threads for user %s", runID, len(threads), len(threadIDs), userID)
	return threads, nil
}

// sameIDSet compares two id lists as unordered sets.
func sameIDSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		seen[id]--
		if seen[id] < 0 {
			return false
		}
	}
	return true
}
