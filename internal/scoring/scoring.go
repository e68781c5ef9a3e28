// Package scoring turns class probabilities into a 0-10 sentiment score,
// blends it with a star rating and buckets both scores into sentiment classes.
//
// The class anchors (0, 5, 10) and the class thresholds (4.5, 6) are a fixed
// heuristic rather than a learned calibration. They change together, and any
// change bumps ScaleVersion, which is recorded with every scoring run.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/pbaille/sentiment/internal/domain"
)

// ScaleVersion identifies the anchor/threshold pair below
const ScaleVersion = "v1:anchors=0/5/10;thresholds=4.5/6"

// Class anchors on the 0-10 scale
const (
	NegativeAnchor = 0.0
	NeutralAnchor  = 5.0
	PositiveAnchor = 10.0
	ScaleMax       = 10.0
)

// Class thresholds: score < NeutralFrom is Negative, score >= PositiveFrom is Positive
const (
	NeutralFrom  = 4.5
	PositiveFrom = 6.0
)

// DefaultWeightText is the share of the text score in the combined score
const DefaultWeightText = 0.7

// DefaultRatingMax is the top of a five-star scale
const DefaultRatingMax = 5.0

// ErrRatingOutOfRange is returned for ratings outside [0, max] under RatingReject
var ErrRatingOutOfRange = errors.New("rating out of range")

// RatingPolicy decides what happens to ratings outside [0, max]
type RatingPolicy string

const (
	RatingReject RatingPolicy = "reject"
	RatingClamp  RatingPolicy = "clamp"
)

// ParseRatingPolicy accepts "reject" or "clamp"
func ParseRatingPolicy(s string) (RatingPolicy, error) {
	switch p := RatingPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case RatingReject, RatingClamp:
		return p, nil
	case "":
		return RatingReject, nil
	default:
		return "", fmt.Errorf("unknown rating policy %q (want reject or clamp)", s)
	}
}

// TextScore maps a class distribution onto [0,10] by anchoring Negative,
// Neutral and Positive at 0, 5 and 10
func TextScore(p domain.ClassProbabilities) float64 {
	return p.Negative*NegativeAnchor + p.Neutral*NeutralAnchor + p.Positive*PositiveAnchor
}

// NormalizeRating rescales a rating from [0, max] onto [0,10]. NaN is always
// rejected; other out-of-range values are rejected or clamped per policy.
func NormalizeRating(rating, ratingMax float64, policy RatingPolicy) (float64, error) {
	if ratingMax <= 0 || math.IsNaN(ratingMax) || math.IsInf(ratingMax, 0) {
		return 0, fmt.Errorf("rating max must be positive, got %v", ratingMax)
	}
	if math.IsNaN(rating) {
		return 0, fmt.Errorf("%w: NaN", ErrRatingOutOfRange)
	}
	if rating < 0 || rating > ratingMax {
		if policy != RatingClamp {
			return 0, fmt.Errorf("%w: %v not in [0,%v]", ErrRatingOutOfRange, rating, ratingMax)
		}
		rating = math.Max(0, math.Min(rating, ratingMax))
	}
	return rating / ratingMax * ScaleMax, nil
}

// Combine blends the text score with the normalized rating
func Combine(textScore, normalizedRating, weightText float64) float64 {
	return weightText*textScore + (1-weightText)*normalizedRating
}

// Classify buckets a score into Negative, Neutral or Positive
func Classify(score float64) domain.SentimentClass {
	switch {
	case score < NeutralFrom:
		return domain.Negative
	case score < PositiveFrom:
		return domain.Neutral
	default:
		return domain.Positive
	}
}

// Options are the tunables of the blend
type Options struct {
	WeightText   float64
	RatingMax    float64
	RatingPolicy RatingPolicy
}

// DefaultOptions returns 0.7 text weight, five-star ratings, reject policy
func DefaultOptions() Options {
	return Options{
		WeightText:   DefaultWeightText,
		RatingMax:    DefaultRatingMax,
		RatingPolicy: RatingReject,
	}
}

// Validate checks the options are usable
func (o Options) Validate() error {
	if math.IsNaN(o.WeightText) || o.WeightText < 0 || o.WeightText > 1 {
		return fmt.Errorf("weight_text must be in [0,1], got %v", o.WeightText)
	}
	if !(o.RatingMax > 0) || math.IsInf(o.RatingMax, 0) {
		return fmt.Errorf("rating_max must be positive, got %v", o.RatingMax)
	}
	if _, err := ParseRatingPolicy(string(o.RatingPolicy)); err != nil {
		return err
	}
	return nil
}
