// Package source provides file-backed implementations of observance.Source.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/zapponejosh/ordinarium/internal/observance"
)

// Extensions tried, in order, for each table inside a Delimited directory.
var delimitedExtensions = []string{".tsv", ".csv"}

// Delimited reads each table from <dir>/<table>.tsv or <dir>/<table>.csv.
// Files are read on every call; caching is left to observance.Cache.
type Delimited struct {
	dir    string
	logger *slog.Logger
}

// NewDelimited creates a source over the tables in dir.
func NewDelimited(dir string, logger *slog.Logger) *Delimited {
	if logger == nil {
		logger = slog.Default()
	}
	return &Delimited{dir: dir, logger: logger}
}

// Rows implements observance.Source. A table without a file yields no rows.
func (d *Delimited) Rows(ctx context.Context, table observance.Table) ([]observance.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, ok := d.find(table)
	if !ok {
		d.logger.Debug("no file for table", slog.String("table", string(table)), slog.String("dir", d.dir))
		return nil, nil
	}
	return ReadFile(path)
}

// Path returns the file backing table, or "" if there is none.
func (d *Delimited) Path(table observance.Table) string {
	path, _ := d.find(table)
	return path
}

func (d *Delimited) find(table observance.Table) (string, bool) {
	for _, ext := range delimitedExtensions {
		path := filepath.Join(d.dir, string(table)+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// ReadFile parses a delimited table file. The separator is a tab for .tsv
// files and a comma otherwise.
func ReadFile(path string) ([]observance.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	comma := ','
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		comma = '\t'
	}

	rows, err := Read(f, comma)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// Read parses delimited text whose first record is a header. Column names
// are passed through NormalizeHeader. Short records leave the missing
// fields empty; extra fields are ignored.
func Read(r io.Reader, comma rune) ([]observance.Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = NormalizeHeader(h)
	}

	var rows []observance.Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make(observance.Row, len(keys))
		for i, key := range keys {
			if key == "" || i >= len(record) {
				continue
			}
			row[key] = strings.TrimSpace(record[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

var trailingAnnotation = regexp.MustCompile(`\s*\[[^\]]*\]\s*$`)

// headerSigils are stripped from the front of column names. Spreadsheet
// exports mark key and computed columns with them.
const headerSigils = "#*!@"

// NormalizeHeader turns a column title such as "*Date Rule [computed]" into
// the field key "date_rule".
func NormalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.TrimSpace(name)
	name = trailingAnnotation.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, headerSigils)
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '-' || r == '\t'
	}), "_")
	return name
}
