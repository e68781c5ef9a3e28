// Package sampling draws the seeded random subsets the pipeline works on:
// the pseudo-labeling sample and the per-class review sample.
package sampling

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/pbaille/sentiment/internal/dataset"
	"github.com/pbaille/sentiment/internal/domain"
)

// Defaults for the pseudo-labeling sample
const (
	DefaultSampleSize = 1000
	DefaultSeed       = 42
	DefaultPerClass   = 5
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Sample draws n rows of t in random order. The remaining rows are returned
// in their original order.
func Sample(t *dataset.Table, n int, seed uint64) (sample, rest *dataset.Table, err error) {
	if n < 0 || n > t.Len() {
		return nil, nil, fmt.Errorf("sample size %d outside [0,%d]", n, t.Len())
	}

	perm := newRand(seed).Perm(t.Len())
	picked := make(map[int]bool, n)
	sample = &dataset.Table{Header: append([]string(nil), t.Header...)}
	for _, i := range perm[:n] {
		picked[i] = true
		sample.Rows = append(sample.Rows, append([]string(nil), t.Rows[i]...))
	}

	rest = &dataset.Table{Header: append([]string(nil), t.Header...)}
	for i, row := range t.Rows {
		if !picked[i] {
			rest.Rows = append(rest.Rows, append([]string(nil), row...))
		}
	}
	return sample, rest, nil
}

// ClassCount is how many rows one class offered and how many were drawn
type ClassCount struct {
	Class     domain.SentimentClass
	Available int
	Sampled   int
}

// ReviewSample draws up to perClass rows of each class in classColumn,
// groups them by class name and keeps only columns. An empty columns list
// keeps every column.
func ReviewSample(t *dataset.Table, classColumn string, perClass int, seed uint64, columns []string) (*dataset.Table, []ClassCount, error) {
	classCol, err := t.MustColumn(classColumn)
	if err != nil {
		return nil, nil, err
	}

	byClass := make(map[domain.SentimentClass][]int)
	for i := range t.Rows {
		c, err := domain.ParseSentimentClass(t.Cell(i, classCol))
		if err != nil {
			continue
		}
		byClass[c] = append(byClass[c], i)
	}

	var counts []ClassCount
	var rows []int
	for _, c := range []domain.SentimentClass{domain.Positive, domain.Neutral, domain.Negative} {
		idx := byClass[c]
		n := min(perClass, len(idx))
		counts = append(counts, ClassCount{Class: c, Available: len(idx), Sampled: n})
		if n == 0 {
			continue
		}
		r := newRand(seed)
		r.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		rows = append(rows, idx[:n]...)
	}
	if len(rows) == 0 {
		return nil, counts, fmt.Errorf("no reviews sampled for any sentiment class")
	}

	out := &dataset.Table{Header: append([]string(nil), t.Header...)}
	for _, i := range rows {
		out.Rows = append(out.Rows, t.Rows[i])
	}
	sort.SliceStable(out.Rows, func(i, j int) bool {
		return out.Rows[i][classCol] < out.Rows[j][classCol]
	})

	if len(columns) > 0 {
		out, err = out.Select(columns...)
		if err != nil {
			return nil, counts, err
		}
	}
	return out, counts, nil
}
