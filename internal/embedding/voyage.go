package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const voyageAPI = "https://api.voyageai.com/v1/embeddings"

// DefaultModel is the embedding model used when an artifact names none
const DefaultModel = "voyage-3-lite"

// Service handles embedding generation via Voyage AI
type Service struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// New creates a new embedding Service
func New(apiKey, model string) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("VOYAGE_API_KEY environment variable not set")
	}
	if model == "" {
		model = DefaultModel
	}

	return &Service{
		apiKey:   apiKey,
		model:    model,
		endpoint: voyageAPI,
		client:   http.DefaultClient,
	}, nil
}

// WithEndpoint points the service at another API base, e.g. a test server
func (s *Service) WithEndpoint(endpoint string, client *http.Client) *Service {
	cp := *s
	cp.endpoint = endpoint
	if client != nil {
		cp.client = client
	}
	return &cp
}

// Model returns the embedding model name
func (s *Service) Model() string {
	return s.model
}

// Embed generates an embedding vector for the given text
func (s *Service) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	reqBody := embeddingRequest{
		Input: texts,
		Model: s.model,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp embeddingResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	vectors := make([][]float64, len(apiResp.Data))
	for i, d := range apiResp.Data {
		vectors[i] = d.Embedding
	}

	return vectors, nil
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}
