package scoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/pbaille/sentiment/internal/domain"
)

// Predictor produces a class distribution for a feedback text
type Predictor interface {
	Predict(ctx context.Context, text string) (domain.ClassProbabilities, error)
}

// Context bundles a loaded predictor with blend options. It is built once per
// run, never mutated, and shared by every scoring call.
type Context struct {
	predictor Predictor
	opts      Options
}

// NewContext validates opts and wraps the predictor
func NewContext(p Predictor, opts Options) (*Context, error) {
	if p == nil {
		return nil, errors.New("scoring context: nil predictor")
	}
	if opts.RatingPolicy == "" {
		opts.RatingPolicy = RatingReject
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("scoring context: %w", err)
	}
	return &Context{predictor: p, opts: opts}, nil
}

// Options returns the blend options
func (c *Context) Options() Options {
	return c.opts
}

// ScoreText predicts the class distribution of text and maps it onto [0,10]
func (c *Context) ScoreText(ctx context.Context, text string) (float64, error) {
	probs, err := c.predictor.Predict(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	return TextScore(probs.Normalized()), nil
}

// Blend combines a text score with a raw rating and classifies both scores
func (c *Context) Blend(textScore, rating float64) (domain.ScoreResult, error) {
	normalized, err := NormalizeRating(rating, c.opts.RatingMax, c.opts.RatingPolicy)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	combined := Combine(textScore, normalized, c.opts.WeightText)
	return domain.ScoreResult{
		TextScore:     textScore,
		CombinedScore: combined,
		TextClass:     Classify(textScore),
		CombinedClass: Classify(combined),
	}, nil
}

// Score runs the full text + rating pipeline for one record
func (c *Context) Score(ctx context.Context, text string, rating float64) (domain.ScoreResult, error) {
	textScore, err := c.ScoreText(ctx, text)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	return c.Blend(textScore, rating)
}
