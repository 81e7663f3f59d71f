package repository

import (
	"context"
	"fmt"

	emaildomain "maildigest-backend/internal/email/domain"
	"maildigest-backend/pkg/docstore"
)

const threadsCollection = "threads"

// ThreadRepository is the thread-level cache of StandardizedThread documents.
type ThreadRepository interface {
	// Get retrieves a cached thread, or nil when there is no entry.
	Get(ctx context.Context, threadKey string) (*emaildomain.StandardizedThread, error)
	// Save merges the thread document. MessageIDs and Summary travel in one
	// write so a stale summary can never be paired with a fresh id set.
	Save(ctx context.Context, thread *emaildomain.StandardizedThread) error
}

// threadRepository implements ThreadRepository over a document store
type threadRepository struct {
	store docstore.Store
}

// NewThreadRepository creates a new instance of threadRepository
func NewThreadRepository(store docstore.Store) ThreadRepository {
	return &threadRepository{store: store}
}

func (r *threadRepository) Get(ctx context.Context, threadKey string) (*emaildomain.StandardizedThread, error) {
	doc, err := r.store.Get(ctx, threadsCollection, threadKey)
	if err != nil {
		return nil, fmt.Errorf("get thread %s: %w", threadKey, err)
	}
	if doc == nil {
		return nil, nil
	}

	var thread emaildomain.StandardizedThread
	if err := decodeDocument(doc, &thread); err != nil {
		return nil, fmt.Errorf("decode thread %s: %w", threadKey, err)
	}
	return &thread, nil
}

func (r *threadRepository) Save(ctx context.Context, thread *emaildomain.StandardizedThread) error {
	if thread.DBThreadKey == "" {
		return fmt.Errorf("cannot save thread without thread key")
	}

	doc, err := encodeDocument(thread)
	if err != nil {
		return fmt.Errorf("encode thread %s: %w", thread.DBThreadKey, err)
	}
	if err := r.store.Merge(ctx, threadsCollection, thread.DBThreadKey, doc); err != nil {
		return fmt.Errorf("save thread %s: %w", thread.DBThreadKey, err)
	}
	return nil
}
