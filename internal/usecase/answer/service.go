package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jeecollege/collegerag/internal/domain"
	"github.com/jeecollege/collegerag/internal/logger"
)

// Outcome is the terminal state of one answer request.
type Outcome string

const (
	// OutcomeAnswered means the generative model produced a response from
	// the retrieved context.
	OutcomeAnswered Outcome = "answered"
	// OutcomeNoContext means retrieval returned zero passages; the
	// generative model is never invoked in this state.
	OutcomeNoContext Outcome = "no_context"
)

// Answer is the result of a successful (non-error) request.
type Answer struct {
	Outcome  Outcome
	Text     string           // model response, trimmed; empty for OutcomeNoContext
	Passages []domain.Passage // retrieved context, most similar first
}

// Options tune the retrieve-then-generate pipeline.
type Options struct {
	TopK            int
	Separator       string // joins passages into the context block
	Temperature     float32
	MaxOutputTokens int
}

// Service answers a free-text question about one college using only
// retrieved survey context.
type Service struct {
	registry *Registry
	colls    CollectionReader
	search   Searcher
	embedder domain.Embedder
	gen      domain.Generator
	model    string // configured embedding model, checked against collection metadata
	opts     Options
}

// New creates an answer service. embeddingModel must be the model backing
// the injected embedder; a collection recorded under a different model is
// refused rather than silently queried with degraded quality.
func New(
	registry *Registry,
	colls CollectionReader,
	search Searcher,
	embedder domain.Embedder,
	gen domain.Generator,
	embeddingModel string,
	opts Options,
) *Service {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.Separator == "" {
		opts.Separator = "\n---\n"
	}
	if opts.Temperature <= 0 {
		opts.Temperature = 0.2
	}
	return &Service{
		registry: registry,
		colls:    colls,
		search:   search,
		embedder: embedder,
		gen:      gen,
		model:    embeddingModel,
		opts:     opts,
	}
}

// Registry exposes the known-college mapping for the web layer.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Answer runs the request state machine:
//
//	VALIDATE_COLLEGE -> RETRIEVE -> GENERATE
//
// Unknown slug returns domain.ErrCollegeNotFound before any external call.
// Store failures come back wrapped in domain.ErrRetrieval, generative
// failures in domain.ErrGeneration; the transport owns the user-facing
// wording for each.
func (s *Service) Answer(ctx context.Context, question, slug string) (Answer, error) {
	log := logger.FromContext(ctx)

	collegeName, ok := s.registry.Lookup(slug)
	if !ok {
		return Answer{}, fmt.Errorf("college %q: %w", slug, domain.ErrCollegeNotFound)
	}

	passages, err := s.retrieve(ctx, question, slug)
	if err != nil {
		log.Error("Retrieval failed", zap.String("college", slug), zap.Error(err))
		return Answer{}, fmt.Errorf("%w: %w", domain.ErrRetrieval, err)
	}

	if len(passages) == 0 {
		return Answer{Outcome: OutcomeNoContext}, nil
	}

	text, err := s.generate(ctx, question, collegeName, passages)
	if err != nil {
		log.Error("Generation failed", zap.String("college", slug), zap.Error(err))
		return Answer{}, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	return Answer{Outcome: OutcomeAnswered, Text: text, Passages: passages}, nil
}

// retrieve opens the collection, checks embedding-model parity, embeds the
// question, and runs the KNN query.
func (s *Service) retrieve(ctx context.Context, question, slug string) ([]domain.Passage, error) {
	col, err := s.colls.Get(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get collection: %w", err)
	}

	// Ingest-time and query-time embeddings must come from one model;
	// a silent mismatch degrades retrieval without failing loudly.
	if col.EmbeddingModel != "" && col.EmbeddingModel != s.model {
		return nil, fmt.Errorf("collection %s embedded with %q, configured model is %q: %w",
			slug, col.EmbeddingModel, s.model, domain.ErrModelMismatch)
	}

	emb, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	passages, err := s.search.SearchKNN(ctx, slug, emb.Embedding, s.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	return passages, nil
}

// generate builds the constrained prompt and calls the model once.
func (s *Service) generate(
	ctx context.Context, question, collegeName string, passages []domain.Passage,
) (string, error) {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	contextBlock := strings.Join(texts, s.opts.Separator)

	req := domain.GenerationRequest{
		SystemInstruction: fmt.Sprintf(
			"You answer questions about %s using ONLY the given context.", collegeName,
		),
		Prompt: fmt.Sprintf(
			"Question: %s\n\nContext:\n%s\n\nAnswer clearly using only the context.",
			question, contextBlock,
		),
		Temperature:     s.opts.Temperature,
		MaxOutputTokens: s.opts.MaxOutputTokens,
	}

	res, err := s.gen.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Text), nil
}

// IsNotFound reports whether err is the unknown-college terminal state.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrCollegeNotFound)
}
