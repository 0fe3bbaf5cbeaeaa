package document

import (
	"context"
	"fmt"

	"github.com/jeecollege/collegerag/internal/db"
	dbredis "github.com/jeecollege/collegerag/internal/db/redis"
	"github.com/jeecollege/collegerag/internal/domain"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Hash field names shared with the FT index schema and the search repo.
const (
	FieldContent  = "__content"
	FieldVector   = "__vector"
	FieldCollege  = "college"
	FieldTopic    = "topic"
	FieldQuestion = "question"
)

// Repo stores documents as hashes under the collection's doc key prefix.
type Repo struct {
	store  store
	prefix string
}

// New creates a document repository.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// BulkUpsert writes all documents of one ingestion batch in a single
// pipelined round trip. Every document must carry a vector of the
// collection's dimension; the store computes nothing itself.
func (r *Repo) BulkUpsert(ctx context.Context, collectionName string, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(docs))
	for i, doc := range docs {
		if len(doc.Vector) == 0 {
			return fmt.Errorf("document %s has no vector", doc.ID)
		}
		items[i] = db.HashSetItem{
			Key: r.docKey(collectionName, doc.ID),
			Fields: map[string]string{
				FieldContent:  doc.Text,
				FieldVector:   dbredis.VectorToBytes(doc.Vector),
				FieldCollege:  doc.College,
				FieldTopic:    doc.Topic,
				FieldQuestion: doc.Question,
			},
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("bulk upsert %s: %w", collectionName, err)
	}
	return nil
}

// Get returns a single document by ID (operator tooling and tests).
func (r *Repo) Get(ctx context.Context, collectionName, id string) (domain.Document, error) {
	m, err := r.store.HGetAll(ctx, r.docKey(collectionName, id))
	if err != nil {
		return domain.Document{}, fmt.Errorf("hgetall document %s: %w", id, err)
	}
	if len(m) == 0 {
		return domain.Document{}, domain.ErrDocumentNotFound
	}

	return domain.Document{
		ID:       id,
		Text:     m[FieldContent],
		College:  m[FieldCollege],
		Topic:    m[FieldTopic],
		Question: m[FieldQuestion],
		Vector:   dbredis.BytesToVector(m[FieldVector]),
	}, nil
}

func (r *Repo) docKey(collectionName, id string) string {
	return r.prefix + collectionName + ":doc:" + id
}
