package usecase

import (
	"context"
	"time"

	emaildomain "maildigest-backend/internal/email/domain"
)

// HydrationUsecase turns raw provider threads into normalized, summarized,
// cached entities.
type HydrationUsecase interface {
	// HydrateMessage runs the per-message cache-aside pipeline: cached
	// summarized emails are returned untouched, everything else goes through
	// MIME flattening, normalization and summarization before being cached.
	HydrateMessage(ctx context.Context, userID string, raw *emaildomain.RawMessage) (*emaildomain.StandardizedEmail, error)
	// HydrateThread hydrates every member message in provider order, then
	// resolves the thread key, refreshes the thread summary if stale, and
	// repairs drifted member back-references.
	HydrateThread(ctx context.Context, userID string, raw *emaildomain.RawThread) (*emaildomain.StandardizedThread, error)
	// HydrateAllThreadsForUser hydrates every thread the provider reports,
	// isolating per-thread failures and returning the successful subset.
	HydrateAllThreadsForUser(ctx context.Context, userID string) ([]*emaildomain.StandardizedThread, error)
}

// TextExtractor is the document text extraction boundary.
type TextExtractor interface {
	ExtractText(ctx context.Context, filename, mimetype string, data []byte) (string, error)
}

// Config tunes the hydration pipeline.
type Config struct {
	// MinExtractedTextLen is the minimum viable extracted-text length.
	// Shorter output is treated as a silent extraction failure, not a
	// legitimately short document.
	MinExtractedTextLen int
	// AITimeout bounds each individual summarization call.
	AITimeout time.Duration
}

const (
	defaultMinExtractedTextLen = 100
	defaultAITimeout           = 30 * time.Second
)
