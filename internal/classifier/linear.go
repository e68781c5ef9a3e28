package classifier

import (
	"fmt"
	"math"
)

// Linear is a multinomial logistic regression: softmax(Coef·x + Intercept)
type Linear struct {
	ClassIDs  []int       `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

// Classes returns the encoded class ids
func (l *Linear) Classes() []int {
	return l.ClassIDs
}

// PredictProba applies the softmax over per-class logits
func (l *Linear) PredictProba(x []float64) ([]float64, error) {
	logits := make([]float64, len(l.Coef))
	maxLogit := math.Inf(-1)
	for c, w := range l.Coef {
		if len(w) != len(x) {
			return nil, fmt.Errorf("linear model expects %d features, got %d", len(w), len(x))
		}
		z := l.Intercept[c]
		for i, xi := range x {
			z += w[i] * xi
		}
		logits[c] = z
		maxLogit = math.Max(maxLogit, z)
	}

	var sum float64
	for c, z := range logits {
		logits[c] = math.Exp(z - maxLogit)
		sum += logits[c]
	}
	for c := range logits {
		logits[c] /= sum
	}
	return logits, nil
}

func (l *Linear) validate() error {
	if len(l.Coef) != len(l.ClassIDs) || len(l.Intercept) != len(l.ClassIDs) {
		return fmt.Errorf("linear model: %d classes, %d coefficient rows, %d intercepts",
			len(l.ClassIDs), len(l.Coef), len(l.Intercept))
	}
	return nil
}
