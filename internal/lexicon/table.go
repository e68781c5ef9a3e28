package lexicon

import (
	"strconv"
	"strings"

	"github.com/pbaille/sentiment/internal/dataset"
)

// Output columns of the VADER pass
const (
	ColScore = "sentiment_score"
	ColLabel = "sentiment_label"
)

// AnnotateTable adds the compound score and its lowercase label to every row
func (a *Analyzer) AnnotateTable(t *dataset.Table, textColumn string) error {
	textCol, err := t.MustColumn(textColumn)
	if err != nil {
		return err
	}
	scoreCol := t.EnsureColumn(ColScore)
	labelCol := t.EnsureColumn(ColLabel)

	for i := range t.Rows {
		text := t.Cell(i, textCol)
		if dataset.IsMissing(text) {
			text = ""
		}
		s := a.Analyze(text)
		t.Set(i, scoreCol, strconv.FormatFloat(s.Compound, 'f', 4, 64))
		t.Set(i, labelCol, strings.ToLower(Label(s.Compound).String()))
	}
	return nil
}
