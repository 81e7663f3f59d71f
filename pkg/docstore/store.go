package docstore

import "context"

// Document is a schemaless persisted record.
type Document = map[string]any

// Store is the document cache boundary. Merge is the only mutation
// primitive: fields present in the partial document are written, everything
// else on the stored document is preserved (field-level upsert). Get returns
// nil with no error when the key is absent.
type Store interface {
	Get(ctx context.Context, collection, key string) (Document, error)
	Merge(ctx context.Context, collection, key string, doc Document) error
	List(ctx context.Context, collection string) ([]Document, error)
}
