package classifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pbaille/sentiment/internal/embedding"
)

// Embedder is the subset of the embedding service a vectorizer needs
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// EmbeddingVectorizer uses dense text embeddings as features
type EmbeddingVectorizer struct {
	embedder Embedder
	dim      int
}

// NewEmbeddingVectorizer wraps an embedder; dim 0 skips the length check
func NewEmbeddingVectorizer(e Embedder, dim int) *EmbeddingVectorizer {
	return &EmbeddingVectorizer{embedder: e, dim: dim}
}

// Vectorize embeds text
func (v *EmbeddingVectorizer) Vectorize(ctx context.Context, text string) ([]float64, error) {
	x, err := v.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if v.dim > 0 && len(x) != v.dim {
		return nil, fmt.Errorf("embedding has %d dimensions, model expects %d", len(x), v.dim)
	}
	return x, nil
}

func decodeVoyage(data []byte, apiKey string) (*EmbeddingVectorizer, error) {
	var art struct {
		Model string `json:"model"`
		Dim   int    `json:"dim"`
	}
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decode voyage vectorizer: %w", err)
	}
	svc, err := embedding.New(apiKey, art.Model)
	if err != nil {
		return nil, err
	}
	return NewEmbeddingVectorizer(svc, art.Dim), nil
}
