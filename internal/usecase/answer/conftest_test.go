package answer

import (
	"context"

	"github.com/jeecollege/collegerag/internal/domain"
)

// --- Mocks ---

type mockColls struct {
	col    domain.Collection
	err    error
	called bool
}

func (m *mockColls) Get(_ context.Context, _ string) (domain.Collection, error) {
	m.called = true
	return m.col, m.err
}

type mockSearcher struct {
	passages []domain.Passage
	err      error
	called   bool
	lastTopK int
}

func (m *mockSearcher) SearchKNN(
	_ context.Context, _ string, _ []float32, topK int,
) ([]domain.Passage, error) {
	m.called = true
	m.lastTopK = topK
	return m.passages, m.err
}

type mockEmbedder struct {
	vec    []float32
	err    error
	called bool
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called = true
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockGenerator struct {
	text    string
	err     error
	called  bool
	lastReq domain.GenerationRequest
}

func (m *mockGenerator) Generate(
	_ context.Context, req domain.GenerationRequest,
) (domain.GenerationResult, error) {
	m.called = true
	m.lastReq = req
	if m.err != nil {
		return domain.GenerationResult{}, m.err
	}
	return domain.GenerationResult{Text: m.text}, nil
}

// --- Helpers ---

const testModel = "text-embedding-004"

func testRegistry() *Registry {
	return NewRegistry(map[string]string{
		"nit-hamirpur": "NIT Hamirpur",
		"iit-mandi":    "IIT Mandi",
	})
}

func testCollection() domain.Collection {
	return domain.Collection{
		Name:           "nit-hamirpur",
		EmbeddingModel: testModel,
		VectorDim:      384,
		Documents:      2,
	}
}

type testDeps struct {
	colls    *mockColls
	search   *mockSearcher
	embedder *mockEmbedder
	gen      *mockGenerator
}

func newTestService(opts Options) (*Service, *testDeps) {
	deps := &testDeps{
		colls:    &mockColls{col: testCollection()},
		search:   &mockSearcher{},
		embedder: &mockEmbedder{vec: []float32{0.1, 0.2}},
		gen:      &mockGenerator{text: "answer text"},
	}
	svc := New(testRegistry(), deps.colls, deps.search, deps.embedder, deps.gen, testModel, opts)
	return svc, deps
}
