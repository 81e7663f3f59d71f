package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// documentRow is the relational shape of one cached document.
type documentRow struct {
	Collection string    `gorm:"primaryKey;size:64"`
	DocKey     string    `gorm:"primaryKey;size:256"`
	Doc        string    `gorm:"type:text"`
	UpdatedAt  time.Time
}

// TableName specifies the table name for GORM
func (documentRow) TableName() string {
	return "documents"
}

// GormStore backs the document cache with a relational database through
// GORM. Documents are stored as JSON text; merge is a transactional
// read-modify-write so partial documents never clobber unrelated fields.
type GormStore struct {
	db *gorm.DB
}

// OpenPostgres opens a Postgres connection for the store.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return db, nil
}

// NewGormStore migrates the documents table and returns the store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate documents table: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Get returns the stored document, or nil when absent.
func (s *GormStore) Get(ctx context.Context, collection, key string) (Document, error) {
	var row documentRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_key = ?", collection, key).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("document get %s/%s: %w", collection, key, err)
	}

	var doc Document
	if err := json.Unmarshal([]byte(row.Doc), &doc); err != nil {
		return nil, fmt.Errorf("document decode %s/%s: %w", collection, key, err)
	}
	return doc, nil
}

// Merge upserts the partial document inside a transaction, preserving
// fields the partial document does not mention.
func (s *GormStore) Merge(ctx context.Context, collection, key string, doc Document) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		merged := make(Document)

		var row documentRow
		err := tx.Where("collection = ? AND doc_key = ?", collection, key).
			First(&row).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			// First write for this key
		case err != nil:
			return fmt.Errorf("document merge read %s/%s: %w", collection, key, err)
		default:
			if err := json.Unmarshal([]byte(row.Doc), &merged); err != nil {
				return fmt.Errorf("document merge decode %s/%s: %w", collection, key, err)
			}
		}

		for k, v := range doc {
			merged[k] = v
		}

		raw, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("document merge encode %s/%s: %w", collection, key, err)
		}

		row.Collection = collection
		row.DocKey = key
		row.Doc = string(raw)
		row.UpdatedAt = time.Now()
		return tx.Save(&row).Error
	})
}

// List returns every document in the collection.
func (s *GormStore) List(ctx context.Context, collection string) ([]Document, error) {
	var rows []documentRow
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("document list %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		var doc Document
		if err := json.Unmarshal([]byte(row.Doc), &doc); err != nil {
			return nil, fmt.Errorf("document decode %s/%s: %w", collection, row.DocKey, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
