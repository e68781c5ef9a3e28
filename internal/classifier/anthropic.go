package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pbaille/sentiment/internal/domain"
)

const anthropicAPI = "https://api.anthropic.com/v1/messages"

// DefaultAnthropicModel is used when no model is configured
const DefaultAnthropicModel = "claude-sonnet-4-20250514"

// Anthropic asks a Claude model for the sentiment distribution of a text
type Anthropic struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewAnthropic creates a new Anthropic predictor
func NewAnthropic(apiKey, model string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}
	if model == "" {
		model = DefaultAnthropicModel
	}

	return &Anthropic{
		apiKey:   apiKey,
		model:    model,
		endpoint: anthropicAPI,
		client:   http.DefaultClient,
	}, nil
}

// WithEndpoint points the predictor at another API base, e.g. a test server
func (a *Anthropic) WithEndpoint(endpoint string, client *http.Client) *Anthropic {
	cp := *a
	cp.endpoint = endpoint
	if client != nil {
		cp.client = client
	}
	return &cp
}

// Predict returns the model's Negative/Neutral/Positive distribution for text
func (a *Anthropic) Predict(ctx context.Context, text string) (domain.ClassProbabilities, error) {
	resp, err := a.callAPI(ctx, buildPrompt(text))
	if err != nil {
		return domain.ClassProbabilities{}, fmt.Errorf("api call: %w", err)
	}

	return parseResponse(resp)
}

func buildPrompt(text string) string {
	var sb strings.Builder

	sb.WriteString("Rate the sentiment of this customer feedback. Return JSON only.\n\n")
	sb.WriteString("Feedback:\n")
	sb.WriteString(text)
	sb.WriteString("\n\n")

	sb.WriteString(`Return a JSON object with this structure:
{"negative": 0.1, "neutral": 0.2, "positive": 0.7}

Rules:
- Each value is the probability that the feedback belongs to that class
- The three values sum to 1
- Empty or meaningless feedback is neutral

Return ONLY the JSON, no other text.`)

	return sb.String()
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (a *Anthropic) callAPI(ctx context.Context, prompt string) (string, error) {
	reqBody := apiRequest{
		Model:     a.model,
		MaxTokens: 256,
		Messages: []apiMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("api error: %s", apiResp.Error.Message)
	}

	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}

	return apiResp.Content[0].Text, nil
}

func parseResponse(resp string) (domain.ClassProbabilities, error) {
	// Clean up response - remove markdown code blocks if present
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	resp = strings.TrimSpace(resp)

	var p domain.ClassProbabilities
	if err := json.Unmarshal([]byte(resp), &p); err != nil {
		return domain.ClassProbabilities{}, fmt.Errorf("parse json: %w (response: %s)", err, resp)
	}
	return checkDistribution(p)
}

func checkDistribution(p domain.ClassProbabilities) (domain.ClassProbabilities, error) {
	if p.Negative < 0 || p.Neutral < 0 || p.Positive < 0 {
		return domain.ClassProbabilities{}, fmt.Errorf("negative probability in %+v", p)
	}
	if p.Sum() == 0 {
		return domain.ClassProbabilities{}, fmt.Errorf("all-zero distribution")
	}
	return p.Normalized(), nil
}
