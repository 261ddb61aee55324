package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

const (
	DailyRecordsTable   = "daily_records"
	DailyRecordsUserDay = "daily_records_user_date_key"
)

const createDailyRecords = `
CREATE TABLE IF NOT EXISTS daily_records (
    id                UUID PRIMARY KEY,
    user_id           TEXT NOT NULL,
    date              DATE NOT NULL,
    handle            TEXT NOT NULL,
    level             INTEGER NOT NULL,
    algorithm_version TEXT NOT NULL DEFAULT '',
    problems          JSONB NOT NULL DEFAULT '[]'::jsonb,
    is_fully_solved   BOOLEAN NOT NULL DEFAULT FALSE,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const createUserDayIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ` + DailyRecordsUserDay +
	` ON daily_records (user_id, date)`

// EnsureSchema creates the daily_records table and its (user_id, date) unique index.
// It does not remove legacy indexes; see MigrateUniqueIndex.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createDailyRecords); err != nil {
		return fmt.Errorf("database.EnsureSchema: create table: %w", err)
	}
	if _, err := db.ExecContext(ctx, createUserDayIndex); err != nil {
		return fmt.Errorf("database.EnsureSchema: create index: %w", err)
	}
	return nil
}

type IndexInfo struct {
	Name       string
	Definition string
	Unique     bool
	Columns    []string
}

// Legacy reports a unique index other than the expected (user_id, date) one.
func (i IndexInfo) Legacy() bool {
	if !i.Unique || strings.HasSuffix(i.Name, "_pkey") {
		return false
	}
	return !(len(i.Columns) == 2 && i.Columns[0] == "user_id" && i.Columns[1] == "date")
}

var indexColumns = regexp.MustCompile(`\(([^)]*)\)\s*$`)

func parseIndexColumns(def string) []string {
	m := indexColumns.FindStringSubmatch(def)
	if m == nil {
		return nil
	}
	var cols []string
	for _, c := range strings.Split(m[1], ",") {
		c = strings.Trim(strings.TrimSpace(c), `"`)
		if f := strings.Fields(c); len(f) > 0 {
			cols = append(cols, f[0])
		}
	}
	return cols
}

// listIndexesQuery is scoped to current_schema(), the schema the unqualified
// daily_records name and the unqualified DROP statements resolve to.
const listIndexesQuery = `SELECT indexname, indexdef FROM pg_indexes
WHERE schemaname = current_schema() AND tablename = $1
ORDER BY indexname`

// ListIndexes returns the indexes of daily_records in the current schema.
func ListIndexes(ctx context.Context, db *sql.DB) ([]IndexInfo, error) {
	rows, err := db.QueryContext(ctx, listIndexesQuery, DailyRecordsTable)
	if err != nil {
		return nil, fmt.Errorf("database.ListIndexes: %w", err)
	}
	defer rows.Close()

	var out []IndexInfo
	for rows.Next() {
		var info IndexInfo
		if err := rows.Scan(&info.Name, &info.Definition); err != nil {
			return nil, fmt.Errorf("database.ListIndexes: scan: %w", err)
		}
		info.Unique = strings.Contains(strings.ToUpper(info.Definition), "UNIQUE INDEX")
		info.Columns = parseIndexColumns(info.Definition)
		out = append(out, info)
	}
	return out, rows.Err()
}

// MigrateUniqueIndex drops every legacy unique index on daily_records and
// makes sure the (user_id, date) one exists. It runs in one transaction and
// returns the names of the dropped indexes.
func MigrateUniqueIndex(ctx context.Context, db *sql.DB) ([]string, error) {
	indexes, err := ListIndexes(ctx, db)
	if err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("database.MigrateUniqueIndex: begin: %w", err)
	}
	defer tx.Rollback()

	var dropped []string
	for _, idx := range indexes {
		if !idx.Legacy() {
			continue
		}
		// unique constraints own their index and must be dropped as constraints
		var isConstraint bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = $1 AND conrelid = 'daily_records'::regclass)`,
			idx.Name).Scan(&isConstraint); err != nil {
			return nil, fmt.Errorf("database.MigrateUniqueIndex: lookup %s: %w", idx.Name, err)
		}
		stmt := `DROP INDEX IF EXISTS ` + quoteIdent(idx.Name)
		if isConstraint {
			stmt = `ALTER TABLE daily_records DROP CONSTRAINT ` + quoteIdent(idx.Name)
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("database.MigrateUniqueIndex: drop %s: %w", idx.Name, err)
		}
		dropped = append(dropped, idx.Name)
	}
	if _, err := tx.ExecContext(ctx, createUserDayIndex); err != nil {
		return nil, fmt.Errorf("database.MigrateUniqueIndex: create index: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("database.MigrateUniqueIndex: commit: %w", err)
	}
	return dropped, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
