package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore backs the document cache with Cloud Firestore. Merge maps
// directly onto Firestore's Set with MergeAll.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore initializes the Firebase app and opens a Firestore
// client. credentialsFile may be empty to use application default
// credentials.
func NewFirestoreStore(ctx context.Context, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to create firestore client: %w", err)
	}

	return &FirestoreStore{client: client}, nil
}

// Get returns the document data, or nil when the document does not exist.
func (s *FirestoreStore) Get(ctx context.Context, collection, key string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("firestore get %s/%s: %w", collection, key, err)
	}
	return snap.Data(), nil
}

// Merge writes the partial document with MergeAll semantics.
func (s *FirestoreStore) Merge(ctx context.Context, collection, key string, doc Document) error {
	_, err := s.client.Collection(collection).Doc(key).Set(ctx, doc, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("firestore merge %s/%s: %w", collection, key, err)
	}
	return nil
}

// List returns every document in the collection.
func (s *FirestoreStore) List(ctx context.Context, collection string) ([]Document, error) {
	iter := s.client.Collection(collection).Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore list %s: %w", collection, err)
		}
		docs = append(docs, snap.Data())
	}
	return docs, nil
}

// Close releases the underlying Firestore client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
