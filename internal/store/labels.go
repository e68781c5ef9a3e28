package store

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pbaille/sentiment/internal/dataset"
	"github.com/pbaille/sentiment/internal/domain"
)

// ErrNotFound is returned when the backing file of a label store does not exist
var ErrNotFound = errors.New("label store not found")

// ErrUnsupportedFormat is returned for backing files that cannot be rewritten
// without losing data, such as multi-sheet workbooks
var ErrUnsupportedFormat = errors.New("unsupported label store format")

// Columns names the dataset columns the label store reads and writes
type Columns struct {
	Text    string
	Rating  string
	Label   string
	Display string
}

// LabelStore is an ordered, CSV-backed collection of feedback records with
// at most one pseudo-label each
type LabelStore struct {
	path  string
	table *dataset.Table
	cols  Columns

	textCol, ratingCol, labelCol, displayCol int
	labels                                   []*int
}

// OpenLabelStore loads the store at path and adds the label column on first
// use. Only .csv and .tsv files can back a store; convert workbooks first.
func OpenLabelStore(path string, cols Columns) (*LabelStore, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xls", ".xlsm":
		return nil, fmt.Errorf("%w: %s (convert it to .csv first)", ErrUnsupportedFormat, filepath.Base(path))
	}
	table, err := dataset.ReadFile(path, dataset.ReadOptions{})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open label store: %w", err)
	}
	return newLabelStore(path, table, cols)
}

func newLabelStore(path string, table *dataset.Table, cols Columns) (*LabelStore, error) {
	s := &LabelStore{path: path, table: table, cols: cols, ratingCol: -1, displayCol: -1}

	textCol, err := table.MustColumn(cols.Text)
	if err != nil {
		return nil, fmt.Errorf("open label store: %w", err)
	}
	s.textCol = textCol
	if cols.Rating != "" {
		s.ratingCol = table.Column(cols.Rating)
	}
	if cols.Display != "" {
		s.displayCol = table.Column(cols.Display)
	}
	s.labelCol = table.EnsureColumn(cols.Label)

	s.labels = make([]*int, table.Len())
	for i := range table.Rows {
		label, err := ParseLabel(table.Cell(i, s.labelCol))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		s.labels[i] = label
	}
	return s, nil
}

// ParseLabel reads a stored label cell. Empty and NaN cells are unset; pandas
// writes integer labels in a column with gaps as floats, so "7.0" is 7.
func ParseLabel(cell string) (*int, error) {
	if dataset.IsMissing(cell) {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || f != math.Trunc(f) {
		return nil, fmt.Errorf("invalid label %q", cell)
	}
	v := int(f)
	if v < domain.MinLabel || v > domain.MaxLabel {
		return nil, fmt.Errorf("label %d outside [%d,%d]", v, domain.MinLabel, domain.MaxLabel)
	}
	return &v, nil
}

// Path returns the backing file
func (s *LabelStore) Path() string {
	return s.path
}

// Len returns the number of records
func (s *LabelStore) Len() int {
	return len(s.labels)
}

// LabeledCount returns how many records carry a label
func (s *LabelStore) LabeledCount() int {
	n := 0
	for _, l := range s.labels {
		if l != nil {
			n++
		}
	}
	return n
}

// Record returns a snapshot of row i
func (s *LabelStore) Record(i int) domain.FeedbackRecord {
	rec := domain.FeedbackRecord{
		Row:  i,
		Text: s.table.Cell(i, s.textCol),
	}
	if s.displayCol >= 0 {
		rec.Display = s.table.Cell(i, s.displayCol)
		rec.Lemmatized = rec.Display
	}
	if s.ratingCol >= 0 {
		if r, err := strconv.ParseFloat(strings.TrimSpace(s.table.Cell(i, s.ratingCol)), 64); err == nil {
			rec.Rating = &r
		}
	}
	if l := s.labels[i]; l != nil {
		v := *l
		rec.Label = &v
	}
	return rec
}

// SetLabel assigns a label in memory; Save persists it
func (s *LabelStore) SetLabel(i, value int) error {
	if i < 0 || i >= len(s.labels) {
		return fmt.Errorf("row %d out of range", i)
	}
	if value < domain.MinLabel || value > domain.MaxLabel {
		return fmt.Errorf("label %d outside [%d,%d]", value, domain.MinLabel, domain.MaxLabel)
	}
	s.labels[i] = &value
	s.table.Set(i, s.labelCol, strconv.Itoa(value))
	return nil
}

// ClearLabel removes the label of row i in memory
func (s *LabelStore) ClearLabel(i int) {
	if i < 0 || i >= len(s.labels) {
		return
	}
	s.labels[i] = nil
	s.table.Set(i, s.labelCol, "")
}

// Save rewrites the whole backing file atomically
func (s *LabelStore) Save() error {
	if err := dataset.WriteFileAtomic(s.path, s.table); err != nil {
		return fmt.Errorf("save label store: %w", err)
	}
	return nil
}

// Table exposes the underlying rows for read-only derivations
func (s *LabelStore) Table() *dataset.Table {
	return s.table
}
