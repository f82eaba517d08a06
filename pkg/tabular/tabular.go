package tabular

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"
	_ "modernc.org/sqlite"

	"github.com/insighter-ai/insighter/pkg/types"
	"github.com/insighter-ai/insighter/pkg/utils"
)

// Backend is a disposable in-memory relational view over a set of dataset
// files. One Backend per pipeline run; the caller must Close it on every
// exit path.
type Backend struct {
	db *sqlx.DB
}

// Load builds a fresh in-memory database and loads each file into its own
// table. The table name is the file name with dots and spaces replaced by
// underscores; when two files normalize to the same name the later one
// replaces the earlier table. Files that cannot be read or parsed are
// skipped with a warning; Load fails only when no database can be created
// at all.
func Load(ctx context.Context, files []string) (*Backend, error) {
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database, %w", err)
	}
	// A :memory: DSN is per-connection; a second pooled connection would
	// see an empty database.
	db.SetMaxOpenConns(1)

	b := &Backend{db: db}
	for _, file := range files {
		headers, rows, err := readTable(file)
		if err != nil {
			slog.Warn("skipping unreadable dataset file",
				slog.String("file", file),
				slog.String("error", err.Error()))
			continue
		}
		table := utils.NormalizeTableName(filepath.Base(file))
		if err = b.createTable(ctx, table, headers, rows); err != nil {
			slog.Warn("skipping dataset file, table load failed",
				slog.String("file", file),
				slog.String("table", table),
				slog.String("error", err.Error()))
		}
	}

	return b, nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}

// Introspect returns the loaded schema, one column list per table.
// An empty map means nothing loaded; callers decide whether that matters.
func (b *Backend) Introspect(ctx context.Context) (types.TableMeta, error) {
	var tables []string
	err := b.db.SelectContext(ctx, &tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables, %w", err)
	}

	meta := make(types.TableMeta, len(tables))
	for _, table := range tables {
		rows, err := b.db.QueryxContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
		if err != nil {
			return nil, fmt.Errorf("failed to introspect table %s, %w", table, err)
		}

		var cols []types.TableColumn
		for rows.Next() {
			var (
				cid        int
				col        types.TableColumn
				defaultVal sql.NullString
			)
			if err = rows.Scan(&cid, &col.Name, &col.Type, &col.NotNull, &defaultVal, &col.PrimaryKey); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan table_info of %s, %w", table, err)
			}
			col.DefaultValue = defaultVal.String
			cols = append(cols, col)
		}
		rows.Close()
		meta[table] = cols
	}

	return meta, nil
}

// Execute runs one read query and materializes the full result. Errors are
// returned to the caller, which usually degrades (drops the record or
// answers with the error) rather than aborting a pipeline.
func (b *Backend) Execute(ctx context.Context, query string) (types.QueryResult, error) {
	var result types.QueryResult

	rows, err := b.db.QueryxContext(ctx, query)
	if err != nil {
		return result, fmt.Errorf("query failed, %w", err)
	}
	defer rows.Close()

	result.Columns, err = rows.Columns()
	if err != nil {
		return result, fmt.Errorf("failed to read result columns, %w", err)
	}

	for rows.Next() {
		row, err := rows.SliceScan()
		if err != nil {
			return result, fmt.Errorf("failed to scan result row, %w", err)
		}
		for i, v := range row {
			if raw, ok := v.([]byte); ok {
				row[i] = string(raw)
			}
		}
		result.Rows = append(result.Rows, row)
	}

	return result, rows.Err()
}

func (b *Backend) createTable(ctx context.Context, table string, headers []string, rows [][]string) error {
	if len(headers) == 0 {
		return fmt.Errorf("no header row")
	}

	colTypes := inferColumnTypes(headers, rows)

	defs := make([]string, len(headers))
	for i, h := range headers {
		defs[i] = fmt.Sprintf("%q %s", h, colTypes[i])
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(headers)), ",")
	insertStmt := fmt.Sprintf("INSERT INTO %q VALUES (%s)", table, placeholders)

	// Drop, create and insert run in one transaction: a later file with the
	// same normalized name replaces the earlier table, and a failed load
	// rolls back without leaving a partial table behind.
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %q", table)); err != nil {
		tx.Rollback()
		return err
	}
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %q (%s)", table, strings.Join(defs, ", "))); err != nil {
		tx.Rollback()
		return err
	}
	for _, row := range rows {
		args := make([]any, len(headers))
		for i := range headers {
			if i >= len(row) || row[i] == "" {
				args[i] = nil
				continue
			}
			args[i] = coerceValue(row[i], colTypes[i])
		}
		if _, err = tx.ExecContext(ctx, insertStmt, args...); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// inferColumnTypes picks INTEGER/REAL/TEXT per column by scanning the
// values, so aggregates and comparisons behave numerically where the data
// is numeric.
func inferColumnTypes(headers []string, rows [][]string) []string {
	colTypes := make([]string, len(headers))
	for i := range headers {
		isInt, isReal, seen := true, true, false
		for _, row := range rows {
			if i >= len(row) || row[i] == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseInt(row[i], 10, 64); err != nil {
				isInt = false
			}
			if _, err := strconv.ParseFloat(row[i], 64); err != nil {
				isReal = false
				break
			}
		}
		switch {
		case seen && isInt:
			colTypes[i] = "INTEGER"
		case seen && isReal:
			colTypes[i] = "REAL"
		default:
			colTypes[i] = "TEXT"
		}
	}
	return colTypes
}

func coerceValue(raw, colType string) any {
	switch colType {
	case "INTEGER":
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return v
		}
	case "REAL":
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return raw
}

func readTable(file string) (headers []string, rows [][]string, err error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".xlsx":
		return readXLSX(file)
	default:
		return readCSV(file)
	}
}

func readCSV(file string) ([]string, [][]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty file")
	}
	return records[0], records[1:], nil
}

// readXLSX loads the first sheet; the first row is the header.
func readXLSX(file string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(file)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty sheet")
	}
	return records[0], records[1:], nil
}
