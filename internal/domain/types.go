package domain

import (
	"fmt"
	"strings"
	"time"
)

// Label bounds for pseudo-labels assigned by an operator
const (
	MinLabel = 1
	MaxLabel = 10
)

// SentimentClass is one of the three buckets every score is mapped into
type SentimentClass int

const (
	Negative SentimentClass = iota
	Neutral
	Positive
)

// Classes lists the sentiment classes in probability-vector order
var Classes = []SentimentClass{Negative, Neutral, Positive}

var classNames = map[SentimentClass]string{
	Negative: "Negative",
	Neutral:  "Neutral",
	Positive: "Positive",
}

func (c SentimentClass) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("SentimentClass(%d)", int(c))
}

// ParseSentimentClass accepts a class name in any letter case
func ParseSentimentClass(s string) (SentimentClass, error) {
	for c, name := range classNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown sentiment class: %q", s)
}

// MarshalText encodes the class as its name, in values and map keys alike
func (c SentimentClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a class name
func (c *SentimentClass) UnmarshalText(data []byte) error {
	v, err := ParseSentimentClass(string(data))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// LabelClass buckets a 1-10 pseudo-label: 1-4 negative, 5 neutral, 6-10 positive
func LabelClass(label int) SentimentClass {
	switch {
	case label <= 4:
		return Negative
	case label == 5:
		return Neutral
	default:
		return Positive
	}
}

// FeedbackRecord is one row of a feedback dataset, identified by its position
type FeedbackRecord struct {
	Row        int      `json:"row"`
	Text       string   `json:"text"`
	Display    string   `json:"display,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
	Label      *int     `json:"label,omitempty"`
	Lemmatized string   `json:"lemmatized,omitempty"`
}

// Labeled reports whether an operator has assigned a label
func (r FeedbackRecord) Labeled() bool {
	return r.Label != nil
}

// ClassProbabilities is a classifier's distribution over the three classes
type ClassProbabilities struct {
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Positive float64 `json:"positive"`
}

// Sum returns the total probability mass
func (p ClassProbabilities) Sum() float64 {
	return p.Negative + p.Neutral + p.Positive
}

// Normalized rescales the vector so it sums to 1. A zero vector becomes uniform.
func (p ClassProbabilities) Normalized() ClassProbabilities {
	sum := p.Sum()
	if sum <= 0 {
		return ClassProbabilities{Negative: 1.0 / 3, Neutral: 1.0 / 3, Positive: 1.0 / 3}
	}
	return ClassProbabilities{
		Negative: p.Negative / sum,
		Neutral:  p.Neutral / sum,
		Positive: p.Positive / sum,
	}
}

// ScoreResult holds the derived scores for one record
type ScoreResult struct {
	TextScore     float64        `json:"text_score"`
	CombinedScore float64        `json:"combined_score"`
	TextClass     SentimentClass `json:"text_class"`
	CombinedClass SentimentClass `json:"combined_class"`
}

// Disagrees reports whether the text-only and combined classes differ
func (s ScoreResult) Disagrees() bool {
	return s.TextClass != s.CombinedClass
}

// LabelEvent records one accepted pseudo-label
type LabelEvent struct {
	ID        string    `json:"id"`
	StorePath string    `json:"store_path"`
	Row       int       `json:"row"`
	Label     int       `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoreRun summarizes one batch scoring pass
type ScoreRun struct {
	ID             string                 `json:"id"`
	InputPath      string                 `json:"input_path"`
	OutputPath     string                 `json:"output_path"`
	Backend        string                 `json:"backend"`
	ScaleVersion   string                 `json:"scale_version"`
	WeightText     float64                `json:"weight_text"`
	RatingPolicy   string                 `json:"rating_policy"`
	Records        int                    `json:"records"`
	Rejected       int                    `json:"rejected"`
	Disagreements  int                    `json:"disagreements"`
	TextCounts     map[SentimentClass]int `json:"text_counts"`
	CombinedCounts map[SentimentClass]int `json:"combined_counts"`
	CreatedAt      time.Time              `json:"created_at"`
}
