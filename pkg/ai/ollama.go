package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaService implements SummarizerService using Ollama local LLM
type OllamaService struct {
	baseURL string
	model   string
}

// NewOllamaService creates a new Ollama service
func NewOllamaService(baseURL, model string) *OllamaService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}
	return &OllamaService{
		baseURL: baseURL,
		model:   model,
	}
}

// SummarizeAttachment implements SummarizerService
func (o *OllamaService) SummarizeAttachment(ctx context.Context, filename, mimetype, text string) (string, error) {
	prompt := fmt.Sprintf(`You summarize email attachments. Summarize the document below in 2-3 sentences.
Focus on what the document is and the key facts, figures or decisions it contains.
Output ONLY the summary, no preamble.

Filename: %s (%s)

DOCUMENT:
%s

SUMMARY:`, filename, mimetype, text)

	return o.generate(ctx, prompt, 150)
}

// SummarizeEmail implements SummarizerService
func (o *OllamaService) SummarizeEmail(ctx context.Context, emailText string) (string, error) {
	prompt := fmt.Sprintf(`You are a smart email assistant. Summarize the email below so the reader can decide what to do with it at a glance.

GUIDELINES:
- One short paragraph, at most 3 sentences
- Mention action items or deadlines if there are any
- If the email is an advertisement or spam, just say so and name the sender
- Fold the attachment summaries into the picture when present
- Output ONLY the summary, no preamble

EMAIL:
%s

SUMMARY:`, emailText)

	return o.generate(ctx, prompt, 150)
}

// SummarizeThread implements SummarizerService
func (o *OllamaService) SummarizeThread(ctx context.Context, summaries []string) (string, error) {
	prompt := fmt.Sprintf(`You are a smart email assistant. Below are per-message summaries of one email conversation, newest message first. Write a short narrative of the conversation so far: what it is about, where it stands, and what (if anything) still needs to happen.

GUIDELINES:
- At most 3 sentences
- Output ONLY the narrative, no preamble

MESSAGE SUMMARIES (newest first):
%s

THREAD SUMMARY:`, numberedList(summaries))

	return o.generate(ctx, prompt, 200)
}

// generate issues a non-streaming /api/generate call.
func (o *OllamaService) generate(ctx context.Context, prompt string, numPredict int) (string, error) {
	url := o.baseURL + "/api/generate"

	payload := map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": 0.3,
			"num_predict": numPredict,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return strings.TrimSpace(result.Response), nil
}

// numberedList renders summaries as a numbered block for the prompt.
func numberedList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return b.String()
}
