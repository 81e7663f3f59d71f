package ai

import "context"

// SummarizerService is the interface for AI summarization providers.
// Implement this interface to add new AI providers (Gemini, Ollama, OpenAI, etc.)
type SummarizerService interface {
	// SummarizeAttachment condenses the extracted text of one attachment.
	SummarizeAttachment(ctx context.Context, filename, mimetype, text string) (string, error)
	// SummarizeEmail condenses a structured rendering of a whole email
	// (headers, body and attachment summaries).
	SummarizeEmail(ctx context.Context, emailText string) (string, error)
	// SummarizeThread produces a thread-level narrative from the ordered
	// member email summaries, newest first.
	SummarizeThread(ctx context.Context, summaries []string) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
