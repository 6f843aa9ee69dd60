package database

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/zapponejosh/ordinarium/internal/calendar"
	"github.com/zapponejosh/ordinarium/internal/observance"
)

// testDB creates a migrated in-memory database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()

	cfg := DefaultConfig(":memory:")

	// Quiet logger for tests
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	db, err := Open(cfg, logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	ctx := context.Background()
	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// rowSource serves fixed rows.
type rowSource map[observance.Table][]observance.Row

func (s rowSource) Rows(_ context.Context, table observance.Table) ([]observance.Row, error) {
	return s[table], nil
}

type failingSource struct{ failOn observance.Table }

func (s failingSource) Rows(_ context.Context, table observance.Table) ([]observance.Row, error) {
	if table == s.failOn {
		return nil, errors.New("boom")
	}
	return []observance.Row{{"handle": "X", "date": "1/1", "name": "X"}}, nil
}

func sampleTables() rowSource {
	return rowSource{
		observance.TableObservances: {
			{"handle": "AdventI", "date_rule": "11/27→Sun", "style": "Sunday", "priority": "1",
				"propers": "CollectAdventI, LessonAdventI", "name": "The First Sunday in Advent"},
			{"handle": "Andrew", "date": "11/30", "priority": "2", "name": "Saint Andrew"},
			{"handle": "Nameless", "date": "12/1", "alternative_name": "Alt only"},
		},
		observance.TableFragments: {
			{"date_rule": "11/27→Sun", "behaviour": "Append", "propers": "Wreath"},
		},
		observance.TableSubcycles: {
			{"handle": "Year A", "epoch": "2023", "order": "0", "full_cycle": "3"},
			{"handle": "Year B", "epoch": "2023", "order": "1", "full_cycle": "3"},
			{"handle": "Year C", "epoch": "2023", "order": "2", "full_cycle": "3"},
		},
	}
}

// -----------------------------------------------------------------
// DB tests
// -----------------------------------------------------------------

func TestOpen(t *testing.T) {
	db := testDB(t)

	ctx := context.Background()
	if err := db.Health(ctx); err != nil {
		t.Errorf("Health() error = %v", err)
	}
	if db.Driver() != DriverSQLite {
		t.Errorf("Driver() = %q, want %q", db.Driver(), DriverSQLite)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle", DSN: "x"}, nil)
	if err == nil {
		t.Error("Open() with unknown driver expected error")
	}
}

func TestOpen_PostgresRequiresDSN(t *testing.T) {
	_, err := Open(PostgresConfig(""), nil)
	if err == nil {
		t.Error("Open() with empty postgres DSN expected error")
	}
}

func TestMigrate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Running again should be a no-op
	count, err := db.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Migrate() count = %d, want 0 (already applied)", count)
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		driver string
		in     string
		want   string
	}{
		{DriverSQLite, "INSERT INTO t (a, b) VALUES (?, ?)", "INSERT INTO t (a, b) VALUES (?, ?)"},
		{DriverPostgres, "INSERT INTO t (a, b) VALUES (?, ?)", "INSERT INTO t (a, b) VALUES ($1, $2)"},
		{DriverPostgres, "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		if got := rebind(tt.driver, tt.in); got != tt.want {
			t.Errorf("rebind(%q, %q) = %q, want %q", tt.driver, tt.in, got, tt.want)
		}
	}
}

// -----------------------------------------------------------------
// Table tests
// -----------------------------------------------------------------

func TestImportAndRows(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	summary, err := db.Import(ctx, sampleTables())
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if summary[observance.TableObservances] != 3 || summary[observance.TableSubcycles] != 3 {
		t.Errorf("Import() summary = %v", summary)
	}

	rows, err := db.Rows(ctx, observance.TableObservances)
	if err != nil {
		t.Fatalf("Rows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Rows() returned %d rows, want 3", len(rows))
	}
	if rows[0]["handle"] != "AdventI" || rows[0]["priority"] != "1" {
		t.Errorf("first row = %v", rows[0])
	}
	// The date alias is stored as date_rule.
	if rows[1]["date_rule"] != "11/30" {
		t.Errorf("aliased date_rule = %q, want 11/30", rows[1]["date_rule"])
	}

	subs, err := db.Rows(ctx, observance.TableSubcycles)
	if err != nil {
		t.Fatalf("Rows(subcycles) error = %v", err)
	}
	if subs[2]["order"] != "2" {
		t.Errorf("cycle_order not mapped to order: %v", subs[2])
	}

	counts, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	want := map[observance.Table]int{
		observance.TableObservances: 3,
		observance.TableFragments:   1,
		observance.TableSubcycles:   3,
	}
	for table, n := range want {
		if counts[table] != n {
			t.Errorf("Counts()[%s] = %d, want %d", table, counts[table], n)
		}
	}
}

func TestImport_Replaces(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := db.Import(ctx, sampleTables()); err != nil {
		t.Fatalf("first Import() error = %v", err)
	}
	smaller := rowSource{
		observance.TableObservances: {{"handle": "Only", "date": "1/1", "name": "Only"}},
	}
	if _, err := db.Import(ctx, smaller); err != nil {
		t.Fatalf("second Import() error = %v", err)
	}

	counts, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if counts[observance.TableObservances] != 1 || counts[observance.TableFragments] != 0 {
		t.Errorf("Counts() after replace = %v", counts)
	}
}

func TestImport_RollsBackOnError(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := db.Import(ctx, sampleTables()); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if _, err := db.Import(ctx, failingSource{failOn: observance.TableSubcycles}); err == nil {
		t.Fatal("Import() expected error")
	}

	counts, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() error = %v", err)
	}
	if counts[observance.TableObservances] != 3 {
		t.Errorf("observances after failed import = %d, want 3 (rolled back)", counts[observance.TableObservances])
	}
}

func TestRows_UnknownTable(t *testing.T) {
	db := testDB(t)

	_, err := db.Rows(context.Background(), observance.Table("readings"))
	if !errors.Is(err, ErrUnknownTable) {
		t.Errorf("Rows() error = %v, want ErrUnknownTable", err)
	}
}

func TestDB_AsObservanceSource(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if _, err := db.Import(ctx, sampleTables()); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	tables, err := observance.LoadTables(ctx, db, nil)
	if err != nil {
		t.Fatalf("LoadTables() error = %v", err)
	}

	got := tables.Options(calendar.Date(2024, time.December, 1))
	if len(got) != 2 {
		t.Fatalf("Options() returned %d, want 2", len(got))
	}
	if got[0].Handle != "AdventI" || got[0].Subcycle != "Year C" {
		t.Errorf("top option = %s / %s", got[0].Handle, got[0].Subcycle)
	}
	if want := []string{"CollectAdventI", "LessonAdventI", "Wreath"}; !slices.Equal(got[0].Propers(), want) {
		t.Errorf("propers = %v, want %v", got[0].Propers(), want)
	}
	if got[1].Priority != observance.DefaultPriority || got[1].Title() != "Alt only" {
		t.Errorf("second option = %+v", got[1])
	}
}
