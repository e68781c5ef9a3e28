package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// sheetName is the sheet written into new workbooks
const sheetName = "Sheet1"

// Encode renders the table as delimited text
func Encode(t *Table, comma rune) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = comma
	if err := w.Write(t.Header); err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeWorkbook renders the table as a single-sheet xlsx workbook
func EncodeWorkbook(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	rows := append([][]string{t.Header}, t.Rows...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("encode row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFileAtomic encodes the whole table in memory, writes it to a temporary
// file next to path and renames it over path. Readers see either the old
// file or the new one, never a partial write. The format follows the
// extension: .xlsx is a one-sheet workbook, .tsv is tab separated, anything
// else is CSV.
func WriteFileAtomic(path string, t *Table) error {
	var (
		data []byte
		err  error
	)
	switch ext := filepath.Ext(path); {
	case strings.EqualFold(ext, ".xlsx"):
		data, err = EncodeWorkbook(t)
	case strings.EqualFold(ext, ".tsv"):
		data, err = Encode(t, '\t')
	default:
		data, err = Encode(t, ',')
	}
	if err != nil {
		return err
	}
	if err := writeFileAtomicSameDir(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeFileAtomicSameDir(path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp_"+filepath.Base(path)+"_*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// WriteTextAtomic replaces path with the given text report
func WriteTextAtomic(path, text string) error {
	if err := writeFileAtomicSameDir(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
