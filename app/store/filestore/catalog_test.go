package filestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insighter-ai/insighter/pkg/types"
)

func TestCatalogPath(t *testing.T) {
	s := NewCatalogStore()
	assert.Equal(t, "/projects/demo/sales.json", s.CatalogPath("/projects/demo/sales.csv"))
	assert.Equal(t, "/projects/demo/report.json", s.CatalogPath("/projects/demo/report.xlsx"))
}

func TestCatalogRoundTrip(t *testing.T) {
	s := NewCatalogStore()
	dataset := filepath.Join(t.TempDir(), "sales.csv")

	catalog := types.NewInsightCatalog()
	catalog.SQLQueries["question_1"] = &types.InsightRecord{
		InsightQuestion: "What is total sales?",
		SQLQuery:        "SELECT SUM(sales) FROM sales_csv",
		Result:          [][]any{{float64(525)}},
		InsightSummary:  "Total sales amount to 525.",
	}

	require.NoError(t, s.Write(dataset, catalog))

	got, err := s.Read(dataset)
	require.NoError(t, err)
	rec, ok := got.SQLQueries["question_1"]
	require.True(t, ok, "question_1 missing after round trip")
	assert.Equal(t, "Total sales amount to 525.", rec.InsightSummary)
}

func TestCatalogReadMissing(t *testing.T) {
	s := NewCatalogStore()

	catalog, err := s.Read(filepath.Join(t.TempDir(), "ghost.csv"))
	require.NoError(t, err)
	assert.Empty(t, catalog.SQLQueries)
}

func TestCatalogReadCorrupt(t *testing.T) {
	s := NewCatalogStore()
	dataset := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(s.CatalogPath(dataset), []byte("{not json"), 0o644))

	catalog, err := s.Read(dataset)
	require.NoError(t, err)
	assert.Empty(t, catalog.SQLQueries)
}

func TestCatalogDelete(t *testing.T) {
	s := NewCatalogStore()
	dataset := filepath.Join(t.TempDir(), "sales.csv")

	require.NoError(t, s.Write(dataset, types.NewInsightCatalog()))
	require.NoError(t, s.Delete(dataset))
	// deleting again is not an error
	require.NoError(t, s.Delete(dataset))
}
