package ai

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
)

// FallbackService implements smart AI provider routing with fallback
// - Attachment and email summaries: Ollama first (local, free), fallback to Gemini
// - Thread narratives: Gemini first (better synthesis), fallback to Ollama
type FallbackService struct {
	gemini SummarizerService
	ollama *OllamaService
}

// NewFallbackService creates a new fallback service with both providers
func NewFallbackService(gemini SummarizerService, ollama *OllamaService) *FallbackService {
	return &FallbackService{
		gemini: gemini,
		ollama: ollama,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	// Check for network errors
	if _, ok := err.(net.Error); ok {
		return true
	}

	// Check for common connection error messages
	errStr := err.Error()
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"EOF",
	}

	for _, indicator := range connectionIndicators {
		if strings.Contains(strings.ToLower(errStr), strings.ToLower(indicator)) {
			return true
		}
	}

	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
		"RESOURCE_EXHAUSTED",
	}

	for _, indicator := range quotaIndicators {
		if strings.Contains(strings.ToLower(errStr), strings.ToLower(indicator)) {
			return true
		}
	}

	return false
}

type summarizeCall func(svc SummarizerService) (string, error)

// ollamaFirst tries Ollama, falls back to Gemini on any error, and retries
// Ollama once when Gemini reports quota exhaustion.
func (f *FallbackService) ollamaFirst(op string, call summarizeCall) (string, error) {
	if f.ollama != nil {
		result, err := call(f.ollama)
		if err == nil {
			return result, nil
		}

		if isConnectionError(err) {
			log.Printf("[AI] Ollama connection failed for %s: %v, falling back to Gemini", op, err)
		} else {
			log.Printf("[AI] Ollama error for %s: %v, falling back to Gemini", op, err)
		}
	}

	if f.gemini != nil {
		result, err := call(f.gemini)
		if err == nil {
			return result, nil
		}

		// If Gemini also fails with quota error, try Ollama again (might have been temp issue)
		if isQuotaError(err) && f.ollama != nil {
			log.Printf("[AI] Gemini quota exhausted for %s: %v, retrying Ollama", op, err)
			return call(f.ollama)
		}

		return "", fmt.Errorf("gemini %s failed: %w", op, err)
	}

	return "", fmt.Errorf("no AI provider available for %s", op)
}

// geminiFirst tries Gemini, falls back to Ollama, and retries Gemini once
// when Ollama is unreachable.
func (f *FallbackService) geminiFirst(op string, call summarizeCall) (string, error) {
	if f.gemini != nil {
		result, err := call(f.gemini)
		if err == nil {
			return result, nil
		}

		if isQuotaError(err) {
			log.Printf("[AI] Gemini quota exhausted for %s: %v, falling back to Ollama", op, err)
		} else {
			log.Printf("[AI] Gemini error for %s: %v, falling back to Ollama", op, err)
		}
	}

	if f.ollama != nil {
		result, err := call(f.ollama)
		if err == nil {
			return result, nil
		}

		if isConnectionError(err) && f.gemini != nil {
			log.Printf("[AI] Ollama connection failed for %s: %v, retrying Gemini", op, err)
			return call(f.gemini)
		}

		return "", fmt.Errorf("ollama %s failed: %w", op, err)
	}

	return "", fmt.Errorf("no AI provider available for %s", op)
}

// SummarizeAttachment tries Ollama first (free, local), falls back to Gemini
func (f *FallbackService) SummarizeAttachment(ctx context.Context, filename, mimetype, text string) (string, error) {
	return f.ollamaFirst("attachment summarization", func(svc SummarizerService) (string, error) {
		return svc.SummarizeAttachment(ctx, filename, mimetype, text)
	})
}

// SummarizeEmail tries Ollama first (free, local), falls back to Gemini
func (f *FallbackService) SummarizeEmail(ctx context.Context, emailText string) (string, error) {
	return f.ollamaFirst("email summarization", func(svc SummarizerService) (string, error) {
		return svc.SummarizeEmail(ctx, emailText)
	})
}

// SummarizeThread tries Gemini first (better synthesis), falls back to Ollama
func (f *FallbackService) SummarizeThread(ctx context.Context, summaries []string) (string, error) {
	return f.geminiFirst("thread summarization", func(svc SummarizerService) (string, error) {
		return svc.SummarizeThread(ctx, summaries)
	})
}
