package repository

import (
	"context"
	"encoding/json"
	"fmt"

	emaildomain "maildigest-backend/internal/email/domain"
	"maildigest-backend/pkg/docstore"
)

const messagesCollection = "messages"

// MessageRepository is the per-message cache of StandardizedEmail documents.
type MessageRepository interface {
	// Get retrieves a cached email, or nil when there is no entry.
	Get(ctx context.Context, messageID string) (*emaildomain.StandardizedEmail, error)
	// Save merges the email into its cache document. Attachment binary and
	// extracted text never reach the store.
	Save(ctx context.Context, email *emaildomain.StandardizedEmail) error
	// SetThreadKey rewrites only the email's thread back-reference.
	SetThreadKey(ctx context.Context, messageID, threadKey string) error
}

// messageRepository implements MessageRepository over a document store
type messageRepository struct {
	store docstore.Store
}

// NewMessageRepository creates a new instance of messageRepository
func NewMessageRepository(store docstore.Store) MessageRepository {
	return &messageRepository{store: store}
}

func (r *messageRepository) Get(ctx context.Context, messageID string) (*emaildomain.StandardizedEmail, error) {
	doc, err := r.store.Get(ctx, messagesCollection, messageID)
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", messageID, err)
	}
	if doc == nil {
		return nil, nil
	}

	var email emaildomain.StandardizedEmail
	if err := decodeDocument(doc, &email); err != nil {
		return nil, fmt.Errorf("decode message %s: %w", messageID, err)
	}
	return &email, nil
}

func (r *messageRepository) Save(ctx context.Context, email *emaildomain.StandardizedEmail) error {
	if email.MessageID == "" {
		return fmt.Errorf("cannot save email without message id")
	}

	doc, err := encodeDocument(email)
	if err != nil {
		return fmt.Errorf("encode message %s: %w", email.MessageID, err)
	}
	if err := r.store.Merge(ctx, messagesCollection, email.MessageID, doc); err != nil {
		return fmt.Errorf("save message %s: %w", email.MessageID, err)
	}
	return nil
}

func (r *messageRepository) SetThreadKey(ctx context.Context, messageID, threadKey string) error {
	patch := docstore.Document{"dbThreadKey": threadKey}
	if err := r.store.Merge(ctx, messagesCollection, messageID, patch); err != nil {
		return fmt.Errorf("set thread key on message %s: %w", messageID, err)
	}
	return nil
}

// encodeDocument converts an entity to a store document through its JSON
// tags, which is also what strips the transient fields.
func encodeDocument(v any) (docstore.Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc docstore.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeDocument(doc docstore.Document, v any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
