package collection

import (
	"fmt"
	"strconv"

	"github.com/jeecollege/collegerag/internal/domain"
)

// Metadata hash field names.
const (
	fieldName           = "name"
	fieldEmbeddingModel = "embedding_model"
	fieldVectorDim      = "vector_dim"
	fieldDocuments      = "documents"
	fieldCreatedAt      = "created_at"
)

func collectionToHash(col domain.Collection) map[string]string {
	return map[string]string{
		fieldName:           col.Name,
		fieldEmbeddingModel: col.EmbeddingModel,
		fieldVectorDim:      strconv.Itoa(col.VectorDim),
		fieldDocuments:      strconv.Itoa(col.Documents),
		fieldCreatedAt:      strconv.FormatInt(col.CreatedAt, 10),
	}
}

func collectionFromHash(m map[string]string) (domain.Collection, error) {
	name := m[fieldName]
	if name == "" {
		return domain.Collection{}, fmt.Errorf("collection hash missing %q field", fieldName)
	}

	dim, err := strconv.Atoi(m[fieldVectorDim])
	if err != nil {
		return domain.Collection{}, fmt.Errorf("collection %s: parse vector_dim: %w", name, err)
	}

	docs := 0
	if v := m[fieldDocuments]; v != "" {
		if docs, err = strconv.Atoi(v); err != nil {
			return domain.Collection{}, fmt.Errorf("collection %s: parse documents: %w", name, err)
		}
	}

	var createdAt int64
	if v := m[fieldCreatedAt]; v != "" {
		if createdAt, err = strconv.ParseInt(v, 10, 64); err != nil {
			return domain.Collection{}, fmt.Errorf("collection %s: parse created_at: %w", name, err)
		}
	}

	return domain.Collection{
		Name:           name,
		EmbeddingModel: m[fieldEmbeddingModel],
		VectorDim:      dim,
		Documents:      docs,
		CreatedAt:      createdAt,
	}, nil
}
