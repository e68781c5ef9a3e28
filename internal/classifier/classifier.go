// Package classifier loads trained sentiment models and exposes them as
// predictors of a Negative/Neutral/Positive distribution.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pbaille/sentiment/internal/domain"
)

// Artifact file names inside a model directory
const (
	VectorizerFile   = "vectorizer.json"
	ModelFile        = "model.json"
	LabelEncoderFile = "label_encoder.json"
)

// ErrClassMismatch is returned when model classes do not cover the three sentiment classes
var ErrClassMismatch = errors.New("model classes do not match sentiment classes")

// Vectorizer turns raw text into the feature vector a Model expects
type Vectorizer interface {
	Vectorize(ctx context.Context, text string) ([]float64, error)
}

// Model predicts class probabilities for a feature vector. Classes returns the
// encoded class ids in the order of the probability vector.
type Model interface {
	Classes() []int
	PredictProba(x []float64) ([]float64, error)
}

// LabelEncoder maps encoded class ids back to class names
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// Pipeline is a vectorizer, a model and a label encoder loaded together
type Pipeline struct {
	vectorizer Vectorizer
	model      Model
	order      [3]int // probability index of Negative, Neutral, Positive
}

// NewPipeline checks that the encoded model classes name each sentiment class exactly once
func NewPipeline(v Vectorizer, m Model, enc LabelEncoder) (*Pipeline, error) {
	classes := m.Classes()
	if len(classes) != len(domain.Classes) {
		return nil, fmt.Errorf("%w: model has %d classes", ErrClassMismatch, len(classes))
	}

	order := [3]int{-1, -1, -1}
	for idx, id := range classes {
		if id < 0 || id >= len(enc.Classes) {
			return nil, fmt.Errorf("%w: class id %d not in label encoder", ErrClassMismatch, id)
		}
		c, err := domain.ParseSentimentClass(enc.Classes[id])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrClassMismatch, err)
		}
		if order[c] != -1 {
			return nil, fmt.Errorf("%w: %s appears twice", ErrClassMismatch, c)
		}
		order[c] = idx
	}

	return &Pipeline{vectorizer: v, model: m, order: order}, nil
}

// Predict vectorizes text and returns the model's class distribution
func (p *Pipeline) Predict(ctx context.Context, text string) (domain.ClassProbabilities, error) {
	x, err := p.vectorizer.Vectorize(ctx, text)
	if err != nil {
		return domain.ClassProbabilities{}, fmt.Errorf("vectorize: %w", err)
	}
	proba, err := p.model.PredictProba(x)
	if err != nil {
		return domain.ClassProbabilities{}, fmt.Errorf("predict proba: %w", err)
	}
	return domain.ClassProbabilities{
		Negative: proba[p.order[domain.Negative]],
		Neutral:  proba[p.order[domain.Neutral]],
		Positive: proba[p.order[domain.Positive]],
	}, nil
}

// LoadOptions carries what some artifact kinds need beyond their files
type LoadOptions struct {
	VoyageAPIKey string
}

// LoadArtifacts reads vectorizer.json, model.json and label_encoder.json from dir
func LoadArtifacts(dir string, opts LoadOptions) (*Pipeline, error) {
	var enc LabelEncoder
	if err := readJSON(filepath.Join(dir, LabelEncoderFile), &enc); err != nil {
		return nil, err
	}

	vec, err := loadVectorizer(dir, opts)
	if err != nil {
		return nil, err
	}

	model, err := loadModel(filepath.Join(dir, ModelFile))
	if err != nil {
		return nil, err
	}

	return NewPipeline(vec, model, enc)
}

type artifactKind struct {
	Kind string `json:"kind"`
}

func loadVectorizer(dir string, opts LoadOptions) (Vectorizer, error) {
	path := filepath.Join(dir, VectorizerFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", VectorizerFile, err)
	}
	var kind artifactKind
	if err := json.Unmarshal(data, &kind); err != nil {
		return nil, fmt.Errorf("decode %s: %w", VectorizerFile, err)
	}

	switch kind.Kind {
	case "", "tfidf":
		return decodeTFIDF(dir, data)
	case "voyage":
		return decodeVoyage(data, opts.VoyageAPIKey)
	default:
		return nil, fmt.Errorf("unknown vectorizer kind %q", kind.Kind)
	}
}

func loadModel(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ModelFile, err)
	}
	var kind artifactKind
	if err := json.Unmarshal(data, &kind); err != nil {
		return nil, fmt.Errorf("decode %s: %w", ModelFile, err)
	}

	switch kind.Kind {
	case "forest":
		var f Forest
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode forest: %w", err)
		}
		if err := f.validate(); err != nil {
			return nil, err
		}
		return &f, nil
	case "linear":
		var l Linear
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("decode linear model: %w", err)
		}
		if err := l.validate(); err != nil {
			return nil, err
		}
		return &l, nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", kind.Kind)
	}
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
