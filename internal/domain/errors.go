package domain

import "errors"

var (
	// ErrCollegeNotFound signals an unknown college slug. The transport turns
	// it into a not-found response; no external call is made past this point.
	ErrCollegeNotFound = errors.New("college not found")
	// ErrCollectionNotFound signals a missing vector-store collection.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrCollectionExists signals a duplicate collection name.
	ErrCollectionExists = errors.New("collection already exists")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrRetrieval wraps any failure fetching or querying the vector store.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrGeneration wraps any failure calling the generative-model API.
	ErrGeneration = errors.New("generation failed")
	// ErrModelMismatch signals that a collection was embedded with a
	// different model than the one currently configured.
	ErrModelMismatch = errors.New("embedding model mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
