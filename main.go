package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/oauth2"

	emaildomain "maildigest-backend/internal/email/domain"
	emailRepo "maildigest-backend/internal/email/repository"
	emailUsecase "maildigest-backend/internal/email/usecase"
	"maildigest-backend/internal/task/scheduler"
	"maildigest-backend/pkg/ai"
	"maildigest-backend/pkg/config"
	"maildigest-backend/pkg/docstore"
	"maildigest-backend/pkg/extract"
	"maildigest-backend/pkg/gmail"
	"maildigest-backend/pkg/imap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	ctx := context.Background()

	// Initialize document store
	store, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize document store:", err)
	}

	// Initialize mail provider
	provider, err := newMailProvider(cfg)
	if err != nil {
		log.Fatal("Failed to initialize mail provider:", err)
	}

	// Initialize AI summarizer
	summarizer, err := ai.NewSummarizerService(ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:  cfg.GeminiAPIKey,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	})
	if err != nil {
		log.Fatal("Failed to initialize summarizer:", err)
	}

	// Initialize repositories (dependency injection)
	messageRepo := emailRepo.NewMessageRepository(store)
	threadRepo := emailRepo.NewThreadRepository(store)

	// Initialize use case
	hydrator := emailUsecase.NewHydrationUsecase(
		provider,
		messageRepo,
		threadRepo,
		summarizer,
		extract.NewDispatcher(),
		emailUsecase.Config{
			MinExtractedTextLen: cfg.ExtractMinTextLen,
			AITimeout:           cfg.AITimeout,
		},
	)

	// Start the hydration scheduler
	sched := scheduler.NewHydrationScheduler(hydrator, cfg.HydrateUsers, cfg.HydrateInterval)
	sched.Start()

	// Block until interrupted
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")
	sched.Stop()
}

func newStore(ctx context.Context, cfg *config.Config) (docstore.Store, error) {
	switch cfg.StoreBackend {
	case "firestore":
		return docstore.NewFirestoreStore(ctx, cfg.FirebaseCredentials)
	case "postgres":
		db, err := docstore.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return docstore.NewGormStore(db)
	default:
		log.Println("[Store] Using in-memory document store, data will not survive restarts")
		return docstore.NewMemoryStore(), nil
	}
}

func newMailProvider(cfg *config.Config) (emaildomain.MailProvider, error) {
	if cfg.MailProvider == "imap" {
		return imap.NewService(cfg.IMAPHost, cfg.IMAPPort, cfg.IMAPUsername, cfg.IMAPPassword, cfg.IMAPTLS), nil
	}

	// Single-account token source backed by environment configuration. Token
	// refreshes are logged but not persisted anywhere.
	tokens := func(ctx context.Context, userID string) (string, string, error) {
		return cfg.GmailAccessToken, cfg.GmailRefreshToken, nil
	}
	onRefresh := func(userID string, token *oauth2.Token) error {
		log.Printf("[Gmail] Refreshed access token for user %s (expires %s)", userID, token.Expiry)
		return nil
	}
	return gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, tokens, onRefresh), nil
}
