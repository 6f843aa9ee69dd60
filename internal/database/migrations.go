package database

// migrations contains all database migrations, applied in order by version.
// Each statement runs separately so the same text works on SQLite and
// Postgres. Columns hold the raw text of the source rows; typing and
// defaults are applied when rows are normalized, not here.
var migrations = map[int][]string{
	1: migrationV1ObservanceTables,
}

// migrationV1ObservanceTables creates one table per record kind.
//
// source_index is the 1-based row position in the imported file and is the
// tie-breaker between observances of equal priority, so it is preserved
// rather than generated. Subcycle "order" is stored as cycle_order because
// ORDER is reserved in both dialects.
var migrationV1ObservanceTables = []string{
	`CREATE TABLE IF NOT EXISTS observances (
		source_index INTEGER PRIMARY KEY,
		handle TEXT,
		date_rule TEXT,
		style TEXT,
		priority TEXT,
		propers TEXT,
		name TEXT,
		alternative_name TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_observances_handle ON observances(handle)`,

	`CREATE TABLE IF NOT EXISTS fragments (
		source_index INTEGER PRIMARY KEY,
		date_rule TEXT,
		behaviour TEXT,
		propers TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS subcycles (
		source_index INTEGER PRIMARY KEY,
		handle TEXT,
		epoch TEXT,
		cycle_order TEXT,
		full_cycle TEXT
	)`,
}
