package labeling

import (
	"fmt"
	"strings"

	"github.com/pbaille/sentiment/internal/dataset"
	"github.com/pbaille/sentiment/internal/domain"
	"github.com/pbaille/sentiment/internal/store"
)

// ColClass holds the class derived from a pseudo-label
const ColClass = "sentiment_class"

// DeriveClasses writes the lowercase class of every label in labelColumn
// into ColClass. Unlabeled rows get an empty class. It returns the per-class
// counts.
func DeriveClasses(t *dataset.Table, labelColumn string) (map[domain.SentimentClass]int, error) {
	labelCol, err := t.MustColumn(labelColumn)
	if err != nil {
		return nil, err
	}
	classCol := t.EnsureColumn(ColClass)

	counts := make(map[domain.SentimentClass]int)
	for i := range t.Rows {
		label, err := store.ParseLabel(t.Cell(i, labelCol))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if label == nil {
			t.Set(i, classCol, "")
			continue
		}
		c := domain.LabelClass(*label)
		counts[c]++
		t.Set(i, classCol, strings.ToLower(c.String()))
	}
	return counts, nil
}
