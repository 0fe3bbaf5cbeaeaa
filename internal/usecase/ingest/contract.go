package ingest

import (
	"context"

	"github.com/jeecollege/collegerag/internal/domain"
)

// CollectionRepository manages collection lifecycle for the hard-replace flow.
type CollectionRepository interface {
	Create(ctx context.Context, col domain.Collection) error
	Delete(ctx context.Context, name string) error
	SetDocumentCount(ctx context.Context, name string, count int) error
}

// DocumentWriter bulk-loads embedded documents.
type DocumentWriter interface {
	BulkUpsert(ctx context.Context, collectionName string, docs []domain.Document) error
}
