package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadOptions tunes how delimited files are parsed
type ReadOptions struct {
	// Comma overrides the delimiter picked from the file extension
	Comma rune
}

// ObjectGetter fetches remote objects; S3 implements it
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Load reads a table from a local path or an s3://bucket/key URI
func Load(ctx context.Context, path string, remote ObjectGetter, opts ReadOptions) (*Table, error) {
	if bucket, key, ok := ParseS3URI(path); ok {
		if remote == nil {
			return nil, fmt.Errorf("load %s: no S3 client configured", path)
		}
		content, err := remote.GetObject(ctx, bucket, key)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", path, err)
		}
		return Parse(key, content, opts)
	}
	return ReadFile(path, opts)
}

// ReadFile reads a local table. A missing file yields an error wrapping os.ErrNotExist.
func ReadFile(path string, opts ReadOptions) (*Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return Parse(path, content, opts)
}

// Parse decodes file content, choosing the format from the file name
func Parse(name string, content []byte, opts ReadOptions) (*Table, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls"):
		return parseExcel(content)
	case strings.HasSuffix(lower, ".tsv"):
		if opts.Comma == 0 {
			opts.Comma = '\t'
		}
	}
	if opts.Comma == 0 {
		opts.Comma = ','
	}
	return parseDelimited(content, opts.Comma)
}

func parseDelimited(content []byte, comma rune) (*Table, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited: %w", err)
	}
	if len(all) == 0 {
		return nil, errors.New("empty file")
	}
	return NewTable(cleanHeader(all[0]), all[1:]), nil
}

func parseExcel(content []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("no sheets in workbook")
	}

	// metadata sheets are skipped
	skip := map[string]bool{"info": true, "metadata": true, "about": true, "readme": true, "notes": true}
	sheet := sheets[len(sheets)-1]
	for _, name := range sheets {
		if !skip[strings.ToLower(name)] {
			sheet = name
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty workbook")
	}
	return NewTable(cleanHeader(rows[0]), rows[1:]), nil
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(h)
	}
	return out
}
