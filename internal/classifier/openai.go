package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/pbaille/sentiment/internal/domain"
)

// DefaultOpenAIModel is used when no model is configured
const DefaultOpenAIModel = "gpt-5-mini"

const openAIInstructions = `You rate the sentiment of customer feedback.
Return the probability that the feedback is negative, neutral and positive.
The three probabilities sum to 1. Empty or meaningless feedback is neutral.`

type distributionResponse struct {
	Negative float64 `json:"negative" jsonschema:"description=Probability the feedback is negative"`
	Neutral  float64 `json:"neutral" jsonschema:"description=Probability the feedback is neutral"`
	Positive float64 `json:"positive" jsonschema:"description=Probability the feedback is positive"`
}

var distributionSchema = generateSchema[distributionResponse]()

// OpenAI asks an OpenAI model for the sentiment distribution of a text using
// a strict JSON schema response format
type OpenAI struct {
	client *openai.Client
	model  string
	// waits between attempts; one entry per retry
	backoff []time.Duration
}

// NewOpenAI creates a new OpenAI predictor. Extra request options (base URL,
// HTTP client) are passed through to the SDK.
func NewOpenAI(apiKey, model string, opts ...option.RequestOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAI{
		client:  &client,
		model:   model,
		backoff: []time.Duration{5 * time.Second, 30 * time.Second},
	}, nil
}

// Predict returns the model's Negative/Neutral/Positive distribution for text
func (o *OpenAI) Predict(ctx context.Context, text string) (domain.ClassProbabilities, error) {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "SentimentDistribution",
			Schema:      distributionSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Sentiment class probabilities"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(200),
		Instructions:    openai.String(openAIInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := o.callWithRetry(ctx, params)
	if err != nil {
		return domain.ClassProbabilities{}, err
	}

	var out distributionResponse
	if err := decodeModelJSON(resp.OutputText(), &out); err != nil {
		return domain.ClassProbabilities{}, fmt.Errorf("unmarshal distribution: %w", err)
	}
	return checkDistribution(domain.ClassProbabilities{
		Negative: out.Negative,
		Neutral:  out.Neutral,
		Positive: out.Positive,
	})
}

func (o *OpenAI) callWithRetry(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := o.client.Responses.New(ctx, params)
		if err == nil {
			return resp, nil
		}
		if attempt >= len(o.backoff) || !isRetryable(err) {
			return nil, fmt.Errorf("openai request: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(o.backoff[attempt]):
		}
	}
}

func isRetryable(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "internal server error")
}

// decodeModelJSON unmarshals JSON from a model response, falling back to the
// outermost {...} when the model wraps it in extra text
func decodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("failed to unmarshal extracted JSON: %w", err)
	}
	return nil
}

func generateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	ensureStrict(m)
	return m
}

// ensureStrict marks every object closed and every property required, as
// strict structured outputs demand
func ensureStrict(schema map[string]any) {
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]any); ok {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema["required"] = required
			}
		}
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		for _, prop := range props {
			if m, ok := prop.(map[string]any); ok {
				ensureStrict(m)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		ensureStrict(items)
	}
}
