package tabular

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeSalesCSV(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "sales report.csv")
	data := "region,sales,month\nnorth,100,jan\nsouth,250,jan\nnorth,175,feb\n"
	if err := os.WriteFile(file, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return file
}

func TestLoadAndIntrospect(t *testing.T) {
	ctx := context.Background()

	backend, err := Load(ctx, []string{writeSalesCSV(t)})
	if err != nil {
		t.Fatal(err)
	}
	defer backend.Close()

	meta, err := backend.Introspect(ctx)
	if err != nil {
		t.Fatal(err)
	}

	cols, ok := meta["sales_report_csv"]
	if !ok {
		t.Fatalf("expected table sales_report_csv, got %v", meta)
	}
	if len(cols) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(cols))
	}
	byName := map[string]string{}
	for _, c := range cols {
		byName[c.Name] = c.Type
	}
	if byName["sales"] != "INTEGER" {
		t.Errorf("sales column type = %q, want INTEGER", byName["sales"])
	}
	if byName["region"] != "TEXT" {
		t.Errorf("region column type = %q, want TEXT", byName["region"])
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	backend, err := Load(ctx, []string{writeSalesCSV(t)})
	if err != nil {
		t.Fatal(err)
	}
	defer backend.Close()

	result, err := backend.Execute(ctx, "SELECT region, SUM(sales) AS total FROM sales_report_csv GROUP BY region ORDER BY region")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	if result.Rows[0][0] != "north" {
		t.Errorf("first group = %v, want north", result.Rows[0][0])
	}
	if total, ok := result.Rows[0][1].(int64); !ok || total != 275 {
		t.Errorf("north total = %v, want 275", result.Rows[0][1])
	}
}

func TestExecuteBadQuery(t *testing.T) {
	ctx := context.Background()

	backend, err := Load(ctx, []string{writeSalesCSV(t)})
	if err != nil {
		t.Fatal(err)
	}
	defer backend.Close()

	if _, err = backend.Execute(ctx, "SELECT nope FROM missing_table"); err == nil {
		t.Fatal("expected error for query against missing table")
	}
}

func TestLoadSkipsUnreadableFiles(t *testing.T) {
	ctx := context.Background()

	backend, err := Load(ctx, []string{filepath.Join(t.TempDir(), "ghost.csv"), writeSalesCSV(t)})
	if err != nil {
		t.Fatal(err)
	}
	defer backend.Close()

	meta, err := backend.Introspect(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(meta) != 1 {
		t.Fatalf("expected the readable file only, got %v", meta)
	}
}

func TestLoadReplacesSameTableName(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	// "sales.csv" and "sales csv" both normalize to sales_csv.
	first := filepath.Join(dir, "sales.csv")
	if err := os.WriteFile(first, []byte("region,amount\nnorth,1\nsouth,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	second := filepath.Join(dir, "sales csv")
	if err := os.WriteFile(second, []byte("region,amount\neast,10\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	backend, err := Load(ctx, []string{first, second})
	if err != nil {
		t.Fatal(err)
	}
	defer backend.Close()

	meta, err := backend.Introspect(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(meta) != 1 {
		t.Fatalf("expected one table after the name collision, got %v", meta)
	}

	result, err := backend.Execute(ctx, "SELECT region, amount FROM sales_csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Rows) != 1 || result.Rows[0][0] != "east" {
		t.Errorf("expected the later file's rows to win, got %v", result.Rows)
	}
}

func TestLoadFailedTableLeavesNoResidue(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	// Duplicate column names make the table statement fail mid-load; the
	// transaction must roll the whole table back, not leave a shell behind.
	bad := filepath.Join(dir, "dup.csv")
	if err := os.WriteFile(bad, []byte("a,a\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	backend, err := Load(ctx, []string{bad, writeSalesCSV(t)})
	if err != nil {
		t.Fatal(err)
	}
	defer backend.Close()

	meta, err := backend.Introspect(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := meta["dup_csv"]; ok {
		t.Error("failed load left an empty dup_csv table behind")
	}
	if len(meta) != 1 {
		t.Fatalf("expected the good file only, got %v", meta)
	}
}

func TestIntrospectEmptyBackend(t *testing.T) {
	ctx := context.Background()

	backend, err := Load(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer backend.Close()

	meta, err := backend.Introspect(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(meta) != 0 {
		t.Fatalf("expected empty schema, got %v", meta)
	}
}
