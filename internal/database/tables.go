package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zapponejosh/ordinarium/internal/observance"
)

// column maps a database column onto the normalized row field it carries.
type column struct {
	name  string
	field string
}

// schemas lists the stored columns of each table, in insert order.
var schemas = map[observance.Table][]column{
	observance.TableObservances: {
		{"handle", observance.FieldHandle},
		{"date_rule", observance.FieldDateRule},
		{"style", observance.FieldStyle},
		{"priority", observance.FieldPriority},
		{"propers", observance.FieldPropers},
		{"name", observance.FieldName},
		{"alternative_name", observance.FieldAlternativeName},
	},
	observance.TableFragments: {
		{"date_rule", observance.FieldDateRule},
		{"behaviour", observance.FieldBehaviour},
		{"propers", observance.FieldPropers},
	},
	observance.TableSubcycles: {
		{"handle", observance.FieldHandle},
		{"epoch", observance.FieldEpoch},
		{"cycle_order", observance.FieldOrder},
		{"full_cycle", observance.FieldFullCycle},
	},
}

func columnNames(cols []column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return strings.Join(names, ", ")
}

// =============================================================================
// Reads
// =============================================================================

// Rows implements observance.Source. Rows come back in source_index order.
func (db *DB) Rows(ctx context.Context, table observance.Table) ([]observance.Row, error) {
	cols, ok := schemas[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY source_index", columnNames(cols), table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []observance.Row
	values := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		row := make(observance.Row, len(cols))
		for i, c := range cols {
			if values[i].Valid {
				row[c.field] = values[i].String
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	return out, nil
}

// Counts returns the number of stored rows per table.
func (db *DB) Counts(ctx context.Context) (map[observance.Table]int, error) {
	counts := make(map[observance.Table]int, len(schemas))
	for _, table := range observance.AllTables() {
		var n int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		if err := db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// =============================================================================
// Writes
// =============================================================================

// ReplaceTable deletes every row of table and inserts rows in their place.
// Each row's source_index is its 1-based position in rows. Fields the table
// does not store are ignored; the date alias is stored as date_rule.
func (tx *Tx) ReplaceTable(ctx context.Context, table observance.Table, rows []observance.Row) error {
	cols, ok := schemas[table]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table)); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)+1), ", ")
	insert := tx.rebind(fmt.Sprintf("INSERT INTO %s (source_index, %s) VALUES (%s)",
		table, columnNames(cols), placeholders))

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	args := make([]any, len(cols)+1)
	for i, row := range rows {
		args[0] = i + 1
		for j, c := range cols {
			v := row.Get(c.field)
			if c.field == observance.FieldDateRule {
				v = row.Get(observance.FieldDateRule, observance.FieldDate)
			}
			args[j+1] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", table, i+1, err)
		}
	}

	return nil
}

// ImportSummary reports how many rows were written per table.
type ImportSummary map[observance.Table]int

// Import copies every table served by src into the database in a single
// transaction, replacing what was there. Tables src has no rows for are
// emptied.
func (db *DB) Import(ctx context.Context, src observance.Source) (ImportSummary, error) {
	summary := make(ImportSummary, len(schemas))

	err := db.WithTx(ctx, func(tx *Tx) error {
		for _, table := range observance.AllTables() {
			rows, err := src.Rows(ctx, table)
			if err != nil {
				return fmt.Errorf("read %s: %w", table, err)
			}
			if err := tx.ReplaceTable(ctx, table, rows); err != nil {
				return err
			}
			summary[table] = len(rows)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	db.logger.Info("tables imported",
		slog.Int("observances", summary[observance.TableObservances]),
		slog.Int("fragments", summary[observance.TableFragments]),
		slog.Int("subcycles", summary[observance.TableSubcycles]),
	)
	return summary, nil
}
