// Package cleaning prepares raw feedback exports for labeling and scoring:
// missing and duplicate rows are dropped, text is normalized, and a
// lemmatized copy of every review is added.
package cleaning

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pbaille/sentiment/internal/dataset"
)

// Options names the columns Clean reads and writes
type Options struct {
	TextColumn    string
	RatingColumn  string
	LemmaColumn   string
	PreppedColumn string
}

// DefaultOptions matches the feedback export layout
func DefaultOptions() Options {
	return Options{
		TextColumn:    "Feedback",
		RatingColumn:  "Rating",
		LemmaColumn:   "lem_feedback",
		PreppedColumn: "feedback_prepped",
	}
}

// Report counts the rows each cleaning step removed
type Report struct {
	Initial         int
	MissingFeedback int
	NanFeedback     int
	MissingRating   int
	Duplicates      int
	NonEnglish      int
	EmptyAfterPrep  int
	Final           int
}

// Removed returns the total number of dropped rows
func (r Report) Removed() int {
	return r.Initial - r.Final
}

// Retained returns the share of rows kept, in percent
func (r Report) Retained() float64 {
	if r.Initial == 0 {
		return 0
	}
	return float64(r.Final) / float64(r.Initial) * 100
}

// Clean runs every cleaning step over t and returns the cleaned table.
// The input table is not modified.
func Clean(t *dataset.Table, opts Options) (*dataset.Table, Report, error) {
	rep := Report{Initial: t.Len()}

	textCol, err := t.MustColumn(opts.TextColumn)
	if err != nil {
		return nil, rep, fmt.Errorf("clean: %w", err)
	}
	ratingCol, err := t.MustColumn(opts.RatingColumn)
	if err != nil {
		return nil, rep, fmt.Errorf("clean: %w", err)
	}

	seen := make(map[string]bool)
	var kept [][]string
	for _, row := range t.Rows {
		text := row[textCol]
		switch {
		case strings.TrimSpace(text) == "":
			rep.MissingFeedback++
			continue
		case strings.EqualFold(strings.TrimSpace(text), "nan"):
			rep.NanFeedback++
			continue
		}
		if !validRating(row[ratingCol]) {
			rep.MissingRating++
			continue
		}
		if seen[text] {
			rep.Duplicates++
			continue
		}
		seen[text] = true
		kept = append(kept, append([]string(nil), row...))
	}

	out := dataset.NewTable(append([]string(nil), t.Header...), kept)
	lemmaCol := out.EnsureColumn(opts.LemmaColumn)
	preppedCol := -1
	if opts.PreppedColumn != "" {
		preppedCol = out.EnsureColumn(opts.PreppedColumn)
	}

	var final [][]string
	for i, row := range out.Rows {
		text := StripHTML(NormalizeText(row[textCol]))
		if !ContainsEnglishWord(text) {
			rep.NonEnglish++
			continue
		}
		lemmas := LemmatizeText(text)
		if strings.TrimSpace(lemmas) == "" {
			rep.EmptyAfterPrep++
			continue
		}
		out.Set(i, textCol, text)
		out.Set(i, lemmaCol, lemmas)
		if preppedCol >= 0 {
			out.Set(i, preppedCol, lemmas)
		}
		final = append(final, out.Rows[i])
	}
	out.Rows = final
	rep.Final = len(final)

	return out, rep, nil
}

// validRating reports whether cell holds a usable number. Missing markers
// and NaN count as missing.
func validRating(cell string) bool {
	if dataset.IsMissing(cell) {
		return false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	return err == nil && !math.IsNaN(v)
}
