package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zapponejosh/ordinarium/internal/observance"
)

// YAML reads all tables from a single document of the form
//
//	observances:
//	  - handle: AdventI
//	    date_rule: "11/27→Sun"
//	    propers: [CollectAdventI, LessonAdventI]
//	fragments: [...]
//	subcycles: [...]
//
// Keys go through NormalizeHeader. Sequence values are joined with commas,
// so propers may be written either as a list or as a string.
type YAML struct {
	path   string
	logger *slog.Logger
}

// NewYAML creates a source over the YAML file at path.
func NewYAML(path string, logger *slog.Logger) *YAML {
	if logger == nil {
		logger = slog.Default()
	}
	return &YAML{path: path, logger: logger}
}

// Rows implements observance.Source. A missing file or table yields no rows.
func (y *YAML) Rows(ctx context.Context, table observance.Table) ([]observance.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(y.path)
	if errors.Is(err, fs.ErrNotExist) {
		y.logger.Debug("yaml table file missing", slog.String("path", y.path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", y.path, err)
	}

	return ParseYAML(data, table)
}

// ParseYAML extracts one table from a YAML document.
func ParseYAML(data []byte, table observance.Table) ([]observance.Row, error) {
	var doc map[string][]map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	var items []map[string]any
	for name, list := range doc {
		if NormalizeHeader(name) == string(table) {
			items = list
			break
		}
	}

	rows := make([]observance.Row, 0, len(items))
	for _, item := range items {
		row := make(observance.Row, len(item))
		for k, v := range item {
			if key := NormalizeHeader(k); key != "" {
				row[key] = scalarString(v)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func scalarString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, scalarString(item))
		}
		return strings.Join(parts, ", ")
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
