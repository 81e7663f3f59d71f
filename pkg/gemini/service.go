package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type GeminiService struct {
	ApiKey string
}

func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{ApiKey: apiKey}
}

// SummarizeAttachment condenses one attachment's extracted text.
func (g *GeminiService) SummarizeAttachment(ctx context.Context, filename, mimetype, text string) (string, error) {
	prompt := fmt.Sprintf(`You summarize email attachments. Summarize the document below in 2-3 sentences.
Focus on what the document is and the key facts, figures or decisions it contains.
Output ONLY the summary, no preamble.

Filename: %s (%s)

DOCUMENT:
%s

SUMMARY:`, filename, mimetype, text)

	return g.generate(ctx, prompt)
}

// SummarizeEmail condenses the structured rendering of a whole email.
func (g *GeminiService) SummarizeEmail(ctx context.Context, emailText string) (string, error) {
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

	return g.generate(ctx, prompt)
}

// SummarizeThread turns ordered member summaries into a conversation narrative.
func (g *GeminiService) SummarizeThread(ctx context.Context, summaries []string) (string, error) {
	var list strings.Builder
	for i, s := range summaries {
		fmt.Fprintf(&list, "%d. %s\n", i+1, s)
	}

	prompt := fmt.Sprintf(`You are a smart email assistant. Below are per-message summaries of one email conversation, newest message first. Write a short narrative of the conversation so far: what it is about, where it stands, and what (if anything) still needs to happen.

GUIDELINES:
- At most 3 sentences
- Output ONLY the narrative, no preamble

MESSAGE SUMMARIES (newest first):
%s

THREAD SUMMARY:`, list.String())

	return g.generate(ctx, prompt)
}

func (g *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	// Use gemini-2.5-flash for fast summarization
	url := "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent?key=" + g.ApiKey

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error: %s", string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}

	// Parse summary from response
	if c, ok := result["candidates"].([]interface{}); ok && len(c) > 0 {
		if cand, ok := c[0].(map[string]interface{}); ok {
			if content, ok := cand["content"].(map[string]interface{}); ok {
				if parts, ok := content["parts"].([]interface{}); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]interface{}); ok {
						if text, ok := part["text"].(string); ok {
							return strings.TrimSpace(text), nil
						}
					}
				}
			}
		}
	}
	return "", fmt.Errorf("no summary returned")
}
