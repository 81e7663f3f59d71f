package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	emaildomain "maildigest-backend/internal/email/domain"
)

func summarizerUsecase(summarizer *fakeSummarizer, extractor *fakeExtractor) *hydrationUsecase {
	if extractor == nil {
		extractor = &fakeExtractor{}
	}
	return &hydrationUsecase{
		summarizer: summarizer,
		extractor:  extractor,
		cfg:        Config{MinExtractedTextLen: defaultMinExtractedTextLen, AITimeout: defaultAITimeout},
	}
}

func TestGenerateSummariesSkipsAlreadySummarizedAttachments(t *testing.T) {
	summarizer := &fakeSummarizer{}
	u := summarizerUsecase(summarizer, nil)

	email := &emaildomain.StandardizedEmail{
		MessageID: "m1",
		Subject:   "Mixed",
		Body:      "body text",
		Attachments: []emaildomain.Attachment{
			{Filename: "done.txt", Mimetype: "text/plain", AttachmentID: "att-1", Summary: "already summarized"},
			{Filename: "new.txt", Mimetype: "text/plain", AttachmentID: "att-2", Data: []byte("bytes")},
		},
	}

	require.NoError(t, u.generateSummaries(context.Background(), email))

	assert.Equal(t, "already summarized", email.Attachments[0].Summary)
	assert.Equal(t, "summary of new.txt", email.Attachments[1].Summary)
	assert.Equal(t, []string{"attachment:new.txt", "email"}, summarizer.calls)
}

func TestGenerateSummariesFailsBeforeAnyAICallOnShortExtraction(t *testing.T) {
	summarizer := &fakeSummarizer{}
	extractor := &fakeExtractor{texts: map[string]string{"thin.txt": "   " + strings.Repeat("x", 40) + "   "}}
	u := summarizerUsecase(summarizer, extractor)

	email := &emaildomain.StandardizedEmail{
		MessageID: "m1",
		Attachments: []emaildomain.Attachment{
			{Filename: "thin.txt", Mimetype: "text/plain", AttachmentID: "att-1", Data: []byte("bytes")},
		},
	}

	err := u.generateSummaries(context.Background(), email)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum")
	assert.Empty(t, summarizer.calls)
	assert.Empty(t, email.Summary)
}

func TestGenerateSummariesHonorsConfiguredThreshold(t *testing.T) {
	summarizer := &fakeSummarizer{}
	extractor := &fakeExtractor{texts: map[string]string{"short.txt": strings.Repeat("y", 40)}}
	u := summarizerUsecase(summarizer, extractor)
	u.cfg.MinExtractedTextLen = 10

	email := &emaildomain.StandardizedEmail{
		MessageID: "m1",
		Attachments: []emaildomain.Attachment{
			{Filename: "short.txt", Mimetype: "text/plain", AttachmentID: "att-1", Data: []byte("bytes")},
		},
	}

	require.NoError(t, u.generateSummaries(context.Background(), email))
	assert.Equal(t, "summary of short.txt", email.Attachments[0].Summary)
}

func TestRenderEmailPrompt(t *testing.T) {
	email := &emaildomain.StandardizedEmail{
		Subject:    "Budget review",
		From:       "alice@example.com",
		ReceivedAt: "Mon, 04 May 2026 10:00:00 +0000",
		Body:       "Numbers attached.",
		Attachments: []emaildomain.Attachment{
			{Filename: "q2.csv", Mimetype: "text/csv", Summary: "Q2 spend by team"},
		},
	}

	prompt := renderEmailPrompt(email)

	assert.Contains(t, prompt, "Subject: Budget review")
	assert.Contains(t, prompt, "From: alice@example.com")
	assert.Contains(t, prompt, "Numbers attached.")
	assert.Contains(t, prompt, `Attachment "q2.csv" (text/csv): Q2 spend by team`)
}

func TestSameIDSetIgnoresOrder(t *testing.T) {
	assert.True(t, sameIDSet([]string{"a", "b", "c"}, []string{"c", "a", "b"}))
	assert.False(t, sameIDSet([]string{"a", "b"}, []string{"a", "b", "c"}))
	assert.False(t, sameIDSet([]string{"a", "a", "b"}, []string{"a", "b", "b"}))
	assert.True(t, sameIDSet(nil, nil))
}
