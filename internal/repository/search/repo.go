package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeecollege/collegerag/internal/db"
	"github.com/jeecollege/collegerag/internal/domain"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo runs nearest-neighbor queries over a collection's FT index.
type Repo struct {
	store  store
	prefix string
}

// New creates a search repository.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// SearchKNN returns the topK nearest passages for the query vector,
// ordered by similarity. Only the document text is requested from the
// store; metadata stays behind.
func (r *Repo) SearchKNN(
	ctx context.Context, collectionName string, vector []float32, topK int,
) ([]domain.Passage, error) {
	q := &db.KNNQuery{
		IndexName:    r.prefix + collectionName + ":idx",
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{"__content", "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", collectionName, err)
	}

	return parseResults(sr, r.prefix+collectionName+":doc:"), nil
}

func parseResults(sr *db.SearchResult, keyPrefix string) []domain.Passage {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	passages := make([]domain.Passage, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		passages = append(passages, domain.Passage{
			ID:    strings.TrimPrefix(entry.Key, keyPrefix),
			Text:  entry.Fields["__content"],
			Score: entry.Score,
		})
	}
	return passages
}
