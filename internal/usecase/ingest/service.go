package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/jeecollege/collegerag/internal/domain"
)

// Source describes one ingestion run.
type Source struct {
	Reader        io.Reader // CSV with a header row
	CollegeSlug   string
	IgnoreColumns []string
}

// Report summarizes an ingestion run.
type Report struct {
	Documents int // documents embedded and loaded
	Rows      int // data rows in the source table
	Columns   int // non-ignored answer columns
}

// Service runs the one-shot CSV -> embedded collection pipeline. Errors
// propagate uncaught; the caller is an operator-run batch job.
type Service struct {
	colls          CollectionRepository
	docs           DocumentWriter
	embedder       domain.Embedder
	embeddingModel string
	vectorDim      int
	batchSize      int
	logger         *zap.Logger
}

// New creates an ingest service. embeddingModel and vectorDim are recorded
// in the collection metadata so the query path can enforce model parity.
func New(
	colls CollectionRepository,
	docs DocumentWriter,
	embedder domain.Embedder,
	embeddingModel string,
	vectorDim int,
	logger *zap.Logger,
) *Service {
	return &Service{
		colls:          colls,
		docs:           docs,
		embedder:       embedder,
		embeddingModel: embeddingModel,
		vectorDim:      vectorDim,
		batchSize:      64,
		logger:         logger,
	}
}

// WithBatchSize overrides the embedding batch size.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// Ingest replaces the college's collection with the documents flattened from
// the source table. The old collection is deleted before the new one is
// created — no incremental update, no partial success.
func (s *Service) Ingest(ctx context.Context, src Source) (Report, error) {
	if src.CollegeSlug == "" {
		return Report{}, fmt.Errorf("college slug is required")
	}

	table, err := ParseCSV(src.Reader)
	if err != nil {
		return Report{}, fmt.Errorf("parse csv: %w", err)
	}

	docs := Flatten(table, src.CollegeSlug, src.IgnoreColumns)
	s.logger.Info("Flattened survey table",
		zap.String("college", src.CollegeSlug),
		zap.Int("rows", len(table.Rows)),
		zap.Int("columns", len(table.Columns)),
		zap.Int("documents", len(docs)),
	)

	if err := s.embedAll(ctx, docs); err != nil {
		return Report{}, err
	}

	// Hard replace: delete whatever is there, missing collection included.
	if err := s.colls.Delete(ctx, src.CollegeSlug); err != nil &&
		!errors.Is(err, domain.ErrCollectionNotFound) {
		return Report{}, fmt.Errorf("delete old collection: %w", err)
	}

	col := domain.Collection{
		Name:           src.CollegeSlug,
		EmbeddingModel: s.embeddingModel,
		VectorDim:      s.vectorDim,
		Documents:      len(docs),
		CreatedAt:      time.Now().UnixMilli(),
	}
	if err := s.colls.Create(ctx, col); err != nil {
		return Report{}, fmt.Errorf("create collection: %w", err)
	}

	if err := s.docs.BulkUpsert(ctx, src.CollegeSlug, docs); err != nil {
		return Report{}, fmt.Errorf("load documents: %w", err)
	}

	if err := s.colls.SetDocumentCount(ctx, src.CollegeSlug, len(docs)); err != nil {
		return Report{}, fmt.Errorf("record document count: %w", err)
	}

	return Report{
		Documents: len(docs),
		Rows:      len(table.Rows),
		Columns:   countAnswerColumns(table, src.IgnoreColumns),
	}, nil
}

// embedAll vectorizes documents in batches, preferring the provider's native
// batch endpoint.
func (s *Service) embedAll(ctx context.Context, docs []domain.Document) error {
	for start := 0; start < len(docs); start += s.batchSize {
		end := min(start+s.batchSize, len(docs))
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, d := range batch {
			texts[i] = d.Text
		}

		var res domain.BatchEmbeddingResult
		var err error
		if be, ok := s.embedder.(domain.BatchEmbedder); ok {
			res, err = be.BatchEmbed(ctx, texts)
		} else {
			res, err = domain.BatchFallback(ctx, s.embedder, texts)
		}
		if err != nil {
			return fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}
		if len(res.Embeddings) != len(batch) {
			return fmt.Errorf("embed batch [%d:%d]: got %d vectors for %d texts",
				start, end, len(res.Embeddings), len(batch))
		}

		for i := range batch {
			batch[i].Vector = res.Embeddings[i]
		}
	}
	return nil
}

func countAnswerColumns(t Table, ignoreColumns []string) int {
	ignored := make(map[string]struct{}, len(ignoreColumns))
	for _, c := range ignoreColumns {
		ignored[c] = struct{}{}
	}
	n := 0
	for _, c := range t.Columns {
		if _, skip := ignored[c]; !skip {
			n++
		}
	}
	return n
}
