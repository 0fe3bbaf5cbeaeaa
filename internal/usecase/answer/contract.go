package answer

import (
	"context"

	"github.com/jeecollege/collegerag/internal/domain"
)

// CollectionReader opens a collection for the parity check.
type CollectionReader interface {
	Get(ctx context.Context, name string) (domain.Collection, error)
}

// Searcher runs nearest-neighbor queries.
type Searcher interface {
	SearchKNN(ctx context.Context, collectionName string, vector []float32, topK int) ([]domain.Passage, error)
}
