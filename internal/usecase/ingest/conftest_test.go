package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/jeecollege/collegerag/internal/domain"
)

// --- Mocks ---

type mockColls struct {
	createFn   func(ctx context.Context, col domain.Collection) error
	deleteFn   func(ctx context.Context, name string) error
	setCountFn func(ctx context.Context, name string, count int) error
	calls      []string
	created    domain.Collection
}

func (m *mockColls) Create(ctx context.Context, col domain.Collection) error {
	m.calls = append(m.calls, "create")
	m.created = col
	if m.createFn != nil {
		return m.createFn(ctx, col)
	}
	return nil
}

func (m *mockColls) Delete(ctx context.Context, name string) error {
	m.calls = append(m.calls, "delete")
	if m.deleteFn != nil {
		return m.deleteFn(ctx, name)
	}
	return nil
}

func (m *mockColls) SetDocumentCount(ctx context.Context, name string, count int) error {
	m.calls = append(m.calls, "setcount")
	if m.setCountFn != nil {
		return m.setCountFn(ctx, name, count)
	}
	return nil
}

type mockDocs struct {
	upsertFn func(ctx context.Context, collectionName string, docs []domain.Document) error
	upserted []domain.Document
	called   bool
}

func (m *mockDocs) BulkUpsert(ctx context.Context, collectionName string, docs []domain.Document) error {
	m.called = true
	m.upserted = docs
	if m.upsertFn != nil {
		return m.upsertFn(ctx, collectionName, docs)
	}
	return nil
}

// batchEmbedder satisfies domain.BatchEmbedder; each text maps to a fixed
// two-float vector so tests can see per-document assignment.
type batchEmbedder struct {
	err        error
	batchSizes []int
}

func (e *batchEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: res.Embeddings[0]}, nil
}

func (e *batchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if e.err != nil {
		return domain.BatchEmbeddingResult{}, e.err
	}
	e.batchSizes = append(e.batchSizes, len(texts))
	embeddings := make([][]float32, len(texts))
	for i, t := range texts {
		embeddings[i] = []float32{float32(len(t)), 1}
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings}, nil
}

// singleEmbedder has no batch endpoint; the service must fall back to
// per-text calls.
type singleEmbedder struct {
	calls int
}

func (e *singleEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.calls++
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text))}}, nil
}

func newTestService() (*Service, *mockColls, *mockDocs, *batchEmbedder) {
	colls := &mockColls{}
	docs := &mockDocs{}
	emb := &batchEmbedder{}
	svc := New(colls, docs, emb, "text-embedding-004", 384, zap.NewNop())
	return svc, colls, docs, emb
}
