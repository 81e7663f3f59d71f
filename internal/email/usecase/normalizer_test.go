package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	emaildomain "maildigest-backend/internal/email/domain"
)

func TestNormalizeMessageHeaders(t *testing.T) {
	raw := &emaildomain.RawMessage{
		ID:      "m1",
		Snippet: "hello there",
		Payload: &emaildomain.RawPart{
			MimeType: "multipart/mixed",
			Headers: []emaildomain.RawHeader{
				{Name: "FROM", Value: "alice@example.com"},
				{Name: "To", Value: "bob@example.com"},
				{Name: "subject", Value: "Greetings"},
				{Name: "Date", Value: "Mon, 04 May 2026 10:00:00 +0000"},
				{Name: "Subject", Value: "shadowed duplicate"},
			},
		},
	}

	email := normalizeMessage(raw, nil)

	assert.Equal(t, "m1", email.MessageID)
	assert.Equal(t, "alice@example.com", email.From)
	assert.Equal(t, "bob@example.com", email.To)
	assert.Equal(t, "Greetings", email.Subject, "header lookup is case-insensitive and first value wins")
	assert.Equal(t, "Mon, 04 May 2026 10:00:00 +0000", email.ReceivedAt)
	assert.Equal(t, "hello there", email.Snippet)
}

func TestNormalizeMessageBodyPrefersFirstPlainText(t *testing.T) {
	raw := &emaildomain.RawMessage{ID: "m1", Payload: &emaildomain.RawPart{MimeType: "multipart/alternative"}}

	parts := []flatPart{
		{mimeType: "text/html", data: []byte("<p>html body</p>")},
		{mimeType: "text/plain; charset=utf-8", data: []byte("first plain")},
		{mimeType: "text/plain", data: []byte("second plain")},
	}

	email := normalizeMessage(raw, parts)
	assert.Equal(t, "first plain", email.Body)
}

func TestNormalizeMessageFallsBackToHTMLBody(t *testing.T) {
	raw := &emaildomain.RawMessage{ID: "m1", Payload: &emaildomain.RawPart{MimeType: "multipart/alternative"}}

	parts := []flatPart{
		{mimeType: "image/png", data: []byte{0x89}},
		{mimeType: "text/html; charset=utf-8", data: []byte("<p>only html</p>")},
	}

	email := normalizeMessage(raw, parts)
	assert.Equal(t, "<p>only html</p>", email.Body)
}

func TestNormalizeMessageCollectsAttachmentsInOrder(t *testing.T) {
	raw := &emaildomain.RawMessage{ID: "m1", Payload: &emaildomain.RawPart{MimeType: "multipart/mixed"}}

	parts := []flatPart{
		{mimeType: "text/plain", data: []byte("body")},
		{filename: "a.pdf", mimeType: "application/pdf", attachmentID: "att-1", data: []byte("pdf")},
		{filename: "b.csv", mimeType: "text/csv", attachmentID: "att-2", data: []byte("csv")},
	}

	email := normalizeMessage(raw, parts)

	require.Len(t, email.Attachments, 2)
	assert.Equal(t, "a.pdf", email.Attachments[0].Filename)
	assert.Equal(t, "att-1", email.Attachments[0].AttachmentID)
	assert.Equal(t, "b.csv", email.Attachments[1].Filename)
	assert.Equal(t, []byte("csv"), email.Attachments[1].Data)
}

func TestNormalizeMessageTreatsNamedCSVAsAttachment(t *testing.T) {
	// A text/csv leaf with a filename and attachment id is an attachment,
	// not a body candidate.
	raw := &emaildomain.RawMessage{ID: "m1", Payload: &emaildomain.RawPart{MimeType: "multipart/mixed"}}

	parts := []flatPart{
		{filename: "data.csv", mimeType: "text/csv", attachmentID: "att-1", data: []byte("a,b,c")},
	}

	email := normalizeMessage(raw, parts)
	assert.Empty(t, email.Body)
	require.Len(t, email.Attachments, 1)
	assert.Equal(t, "data.csv", email.Attachments[0].Filename)
}
