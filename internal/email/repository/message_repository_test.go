package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	emaildomain "maildigest-backend/internal/email/domain"
	"maildigest-backend/pkg/docstore"
)

func TestMessageRepositoryRoundTrip(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewMessageRepository(store)

	email := &emaildomain.StandardizedEmail{
		MessageID:  "m1",
		From:       "alice@example.com",
		To:         "bob@example.com",
		Subject:    "Hello",
		ReceivedAt: "Mon, 04 May 2026 10:00:00 +0000",
		Body:       "body text",
		Summary:    "a short hello",
		Attachments: []emaildomain.Attachment{
			{Filename: "doc.pdf", Mimetype: "application/pdf", AttachmentID: "att-1", Summary: "the doc"},
		},
	}
	require.NoError(t, repo.Save(context.Background(), email))

	got, err := repo.Get(context.Background(), "m1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, email.Summary, got.Summary)
	assert.Equal(t, email.Subject, got.Subject)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "the doc", got.Attachments[0].Summary)
}

func TestMessageRepositoryGetAbsent(t *testing.T) {
	repo := NewMessageRepository(docstore.NewMemoryStore())

	got, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMessageRepositoryNeverPersistsAttachmentBytes(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewMessageRepository(store)

	email := &emaildomain.StandardizedEmail{
		MessageID: "m1",
		Summary:   "summarized",
		Attachments: []emaildomain.Attachment{
			{
				Filename:     "doc.pdf",
				Mimetype:     "application/pdf",
				AttachmentID: "att-1",
				Data:         []byte("raw binary payload"),
				Text:         "many pages of extracted text",
				Summary:      "the doc",
			},
		},
	}
	require.NoError(t, repo.Save(context.Background(), email))

	doc, err := store.Get(context.Background(), "messages", "m1")
	require.NoError(t, err)
	require.NotNil(t, doc)

	attachments, ok := doc["attachments"].([]any)
	require.True(t, ok)
	require.Len(t, attachments, 1)
	att, ok := attachments[0].(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "doc.pdf", att["filename"])
	assert.Equal(t, "the doc", att["summary"])
	assert.NotContains(t, att, "Data")
	assert.NotContains(t, att, "data")
	assert.NotContains(t, att, "Text")
	assert.NotContains(t, att, "text")
}

func TestMessageRepositorySetThreadKeyIsAPatch(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewMessageRepository(store)

	require.NoError(t, repo.Save(context.Background(), &emaildomain.StandardizedEmail{
		MessageID: "m1",
		Subject:   "Keep me",
		Summary:   "cached summary",
	}))

	require.NoError(t, repo.SetThreadKey(context.Background(), "m1", "thread-key"))

	got, err := repo.Get(context.Background(), "m1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "thread-key", got.DBThreadKey)
	assert.Equal(t, "Keep me", got.Subject, "patching the thread key must not disturb other fields")
	assert.Equal(t, "cached summary", got.Summary)
}

func TestMessageRepositorySaveRequiresID(t *testing.T) {
	repo := NewMessageRepository(docstore.NewMemoryStore())
	err := repo.Save(context.Background(), &emaildomain.StandardizedEmail{Summary: "no id"})
	require.Error(t, err)
}

func TestThreadRepositoryRoundTrip(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewThreadRepository(store)

	thread := &emaildomain.StandardizedThread{
		DBThreadKey: "m1",
		MessageIDs:  []string{"m3", "m2", "m1"},
		Summary:     "the whole conversation",
		Snippet:     "latest words",
		Messages:    []*emaildomain.StandardizedEmail{{MessageID: "m3"}},
	}
	require.NoError(t, repo.Save(context.Background(), thread))

	got, err := repo.Get(context.Background(), "m1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, thread.MessageIDs, got.MessageIDs)
	assert.Equal(t, thread.Summary, got.Summary)
	assert.Nil(t, got.Messages, "hydrated members are never persisted")

	doc, err := store.Get(context.Background(), "threads", "m1")
	require.NoError(t, err)
	assert.NotContains(t, doc, "Messages")
	assert.NotContains(t, doc, "messages")
}

func TestThreadRepositoryGetAbsent(t *testing.T) {
	repo := NewThreadRepository(docstore.NewMemoryStore())

	got, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestThreadRepositorySaveRequiresKey(t *testing.T) {
	repo := NewThreadRepository(docstore.NewMemoryStore())
	err := repo.Save(context.Background(), &emaildomain.StandardizedThread{Summary: "keyless"})
	require.Error(t, err)
}
