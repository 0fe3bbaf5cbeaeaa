package domain

// KeyPrefix namespaces every key this service writes to the store.
const KeyPrefix = "collegerag:"

// Document is one free-text survey answer extracted from a (row, column) cell.
type Document struct {
	ID       string
	Text     string
	College  string // college slug, doubles as the collection name
	Topic    string // source column header
	Question string // source column header (kept separate for future wording splits)
	Vector   []float32
}

// Passage is a retrieved document text with its similarity score.
// Ordered sequences of passages form the context block for generation.
type Passage struct {
	ID    string
	Text  string
	Score float64
}

// Collection is a named group of embedded documents, one per college slug.
// EmbeddingModel and VectorDim are recorded at create time; the QA path
// refuses to query a collection recorded under a different model.
type Collection struct {
	Name           string
	EmbeddingModel string
	VectorDim      int
	Documents      int
	CreatedAt      int64 // unix millis
}
