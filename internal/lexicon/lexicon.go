// Package lexicon is the rule-based VADER baseline used to sanity-check the
// trained classifiers.
package lexicon

import (
	"context"
	"math"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/pbaille/sentiment/internal/domain"
)

// CompoundThreshold separates neutral from polar compound scores
const CompoundThreshold = 0.05

// Scores is the VADER output for one text
type Scores struct {
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
	Positive float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// Analyzer wraps a VADER sentiment intensity analyzer. It holds no per-call
// state and can be shared.
type Analyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// New builds an analyzer with the embedded VADER lexicon
func New() *Analyzer {
	return &Analyzer{sia: govader.NewSentimentIntensityAnalyzer()}
}

// Analyze returns the VADER scores of text. Blank text is fully neutral.
func (a *Analyzer) Analyze(text string) Scores {
	if strings.TrimSpace(text) == "" {
		return Scores{Neutral: 1}
	}
	s := a.sia.PolarityScores(text)
	return Scores{
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Positive: s.Positive,
		Compound: s.Compound,
	}
}

// Label maps a compound score to positive, neutral or negative
func Label(compound float64) domain.SentimentClass {
	switch {
	case compound > CompoundThreshold:
		return domain.Positive
	case compound < -CompoundThreshold:
		return domain.Negative
	default:
		return domain.Neutral
	}
}

// Predict uses the neg/neu/pos proportions as a class distribution, so the
// lexicon can stand in for a trained model when scoring
func (a *Analyzer) Predict(_ context.Context, text string) (domain.ClassProbabilities, error) {
	s := a.Analyze(text)
	if math.IsNaN(s.Negative + s.Neutral + s.Positive) {
		return domain.ClassProbabilities{Neutral: 1}, nil
	}
	return domain.ClassProbabilities{
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Positive: s.Positive,
	}.Normalized(), nil
}
