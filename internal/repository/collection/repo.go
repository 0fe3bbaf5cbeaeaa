package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/jeecollege/collegerag/internal/db"
	"github.com/jeecollege/collegerag/internal/domain"
)

// store is the consumer interface for collections (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	DelMulti(ctx context.Context, keys []string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
}

// HNSWConfig holds HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo manages collection metadata and the per-collection FT index.
type Repo struct {
	store  store
	prefix string
	hnsw   HNSWConfig
}

// New creates a collection repository.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix, hnsw: HNSWConfig{M: 16, EFConstruct: 200}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Create stores collection metadata then creates the FT index over the
// collection's document key prefix. On FT.CREATE failure, rolls back the
// metadata hash via DEL.
func (r *Repo) Create(ctx context.Context, col domain.Collection) error {
	metaKey := r.MetaKey(col.Name)

	exists, err := r.store.Exists(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrCollectionExists
	}

	indexDef := r.buildIndex(col.Name, col.VectorDim)

	if err := r.store.HSet(ctx, metaKey, collectionToHash(col)); err != nil {
		return fmt.Errorf("hset collection %s: %w", col.Name, err)
	}

	if err := r.store.CreateIndex(ctx, indexDef); err != nil {
		cleanupErr := r.store.Del(ctx, metaKey)
		return errors.Join(fmt.Errorf("create index %s: %w", col.Name, err), cleanupErr)
	}

	return nil
}

// Get retrieves a collection by name.
func (r *Repo) Get(ctx context.Context, name string) (domain.Collection, error) {
	m, err := r.store.HGetAll(ctx, r.MetaKey(name))
	if err != nil {
		return domain.Collection{}, fmt.Errorf("hgetall collection %s: %w", name, err)
	}
	if len(m) == 0 {
		return domain.Collection{}, domain.ErrCollectionNotFound
	}

	return collectionFromHash(m)
}

// List returns all collections sorted by name.
func (r *Repo) List(ctx context.Context) ([]domain.Collection, error) {
	keys, err := r.store.Scan(ctx, r.MetaKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan collections: %w", err)
	}

	cols := make([]domain.Collection, 0, len(keys))
	for _, key := range keys {
		m, err := r.store.HGetAll(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("hgetall %s: %w", key, err)
		}
		if len(m) == 0 {
			continue
		}
		col, err := collectionFromHash(m)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}

	sort.Slice(cols, func(i, j int) bool { return cols[i].Name < cols[j].Name })
	return cols, nil
}

// Delete removes a collection: drops the index, deletes all document keys,
// then the metadata hash. Idempotent — missing parts are not errors.
func (r *Repo) Delete(ctx context.Context, name string) error {
	if err := r.store.DropIndex(ctx, r.IndexName(name)); err != nil &&
		!errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", name, err)
	}

	docKeys, err := r.store.Scan(ctx, r.DocKeyPrefix(name)+"*")
	if err != nil {
		return fmt.Errorf("scan documents %s: %w", name, err)
	}
	if err := r.store.DelMulti(ctx, docKeys); err != nil {
		return fmt.Errorf("delete documents %s: %w", name, err)
	}

	if err := r.store.Del(ctx, r.MetaKey(name)); err != nil {
		return fmt.Errorf("delete collection %s: %w", name, err)
	}
	return nil
}

// SetDocumentCount records the ingested document count in the metadata hash.
func (r *Repo) SetDocumentCount(ctx context.Context, name string, count int) error {
	if err := r.store.HSet(ctx, r.MetaKey(name), map[string]string{
		fieldDocuments: strconv.Itoa(count),
	}); err != nil {
		return fmt.Errorf("set document count %s: %w", name, err)
	}
	return nil
}

// MetaKey returns the metadata hash key for a collection.
func (r *Repo) MetaKey(name string) string {
	return r.prefix + name + ":meta"
}

// IndexName returns the FT index name for a collection.
func (r *Repo) IndexName(name string) string {
	return r.prefix + name + ":idx"
}

// DocKeyPrefix returns the document key prefix for a collection.
func (r *Repo) DocKeyPrefix(name string) string {
	return r.prefix + name + ":doc:"
}

func (r *Repo) buildIndex(name string, vectorDim int) *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     r.IndexName(name),
		Prefixes: []string{r.DocKeyPrefix(name)},
		Fields: []db.IndexField{
			{Name: "college", Type: db.IndexFieldTag},
			{Name: "topic", Type: db.IndexFieldTag, TagSeparator: "|"},
			{
				// KNN queries reference @vector; the score attribute
				// FT.SEARCH derives from the alias is __vector_score.
				Name:              "__vector",
				Alias:             "vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         vectorDim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}
}
