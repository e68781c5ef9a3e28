// Package config loads the JSON configuration shared by every command.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/pbaille/sentiment/internal/scoring"
)

// ErrInvalid marks a configuration value outside its allowed range
var ErrInvalid = errors.New("invalid config")

// Backends a scoring context can be built on
const (
	BackendArtifacts = "artifacts"
	BackendAnthropic = "anthropic"
	BackendOpenAI    = "openai"
	BackendVader     = "vader"
)

// Columns names the dataset columns
type Columns struct {
	Text    string `json:"text"`
	Rating  string `json:"rating"`
	Label   string `json:"label"`
	Display string `json:"display"`
}

// Scoring configures the blend
type Scoring struct {
	WeightText   float64 `json:"weightText"`
	RatingMax    float64 `json:"ratingMax"`
	RatingPolicy string  `json:"ratingPolicy"`
}

// Classifier selects and configures the text predictor
type Classifier struct {
	Backend      string `json:"backend"`
	ArtifactsDir string `json:"artifactsDir"`
	Model        string `json:"model,omitempty"`
}

// Reports configures the disagreement sample
type Reports struct {
	SampleSize int    `json:"sampleSize"`
	Seed       uint64 `json:"seed"`
}

// S3 configures remote dataset access
type S3 struct {
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// Config is the full configuration
type Config struct {
	Columns    Columns    `json:"columns"`
	Scoring    Scoring    `json:"scoring"`
	Classifier Classifier `json:"classifier"`
	Reports    Reports    `json:"reports"`
	S3         S3         `json:"s3"`
	Addr       string     `json:"addr"`

	AnthropicAPIKey string `json:"-"`
	OpenAIAPIKey    string `json:"-"`
	VoyageAPIKey    string `json:"-"`
}

// Default returns a configuration with every default applied
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// LoadConfig reads path, falling back to defaults when it is empty or does
// not exist, then applies environment overrides
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("decode config: %w", err)
			}
		}
	}
	cfg.ApplyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// ApplyDefaults fills zero values
func (c *Config) ApplyDefaults() {
	if c.Columns.Text == "" {
		c.Columns.Text = "Feedback"
	}
	if c.Columns.Rating == "" {
		c.Columns.Rating = "Rating"
	}
	if c.Columns.Label == "" {
		c.Columns.Label = "p_sentiment"
	}
	if c.Columns.Display == "" {
		c.Columns.Display = "lem_feedback"
	}
	if c.Scoring.WeightText == 0 {
		c.Scoring.WeightText = scoring.DefaultWeightText
	}
	if c.Scoring.RatingMax == 0 {
		c.Scoring.RatingMax = scoring.DefaultRatingMax
	}
	if c.Scoring.RatingPolicy == "" {
		c.Scoring.RatingPolicy = string(scoring.RatingReject)
	}
	if c.Classifier.Backend == "" {
		c.Classifier.Backend = BackendArtifacts
	}
	if c.Classifier.ArtifactsDir == "" {
		c.Classifier.ArtifactsDir = "models"
	}
	if c.Reports.SampleSize == 0 {
		c.Reports.SampleSize = 10
	}
	if c.Reports.Seed == 0 {
		c.Reports.Seed = 42
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

func (c *Config) applyEnv() {
	c.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	c.VoyageAPIKey = os.Getenv("VOYAGE_API_KEY")
	c.S3.Region = getEnvOrDefault("S3_REGION", c.S3.Region)
	c.S3.Endpoint = getEnvOrDefault("S3_ENDPOINT", c.S3.Endpoint)
	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// ScoringOptions converts the scoring section, validating it
func (c Config) ScoringOptions() (scoring.Options, error) {
	policy, err := scoring.ParseRatingPolicy(c.Scoring.RatingPolicy)
	if err != nil {
		return scoring.Options{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	opts := scoring.Options{
		WeightText:   c.Scoring.WeightText,
		RatingMax:    c.Scoring.RatingMax,
		RatingPolicy: policy,
	}
	if err := opts.Validate(); err != nil {
		return scoring.Options{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return opts, nil
}

// Validate checks every section
func (c Config) Validate() error {
	if _, err := c.ScoringOptions(); err != nil {
		return err
	}
	switch c.Classifier.Backend {
	case BackendArtifacts, BackendAnthropic, BackendOpenAI, BackendVader:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Classifier.Backend)
	}
	if c.Reports.SampleSize < 0 {
		return fmt.Errorf("%w: negative report sample size", ErrInvalid)
	}
	return nil
}
