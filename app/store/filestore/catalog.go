package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/insighter-ai/insighter/pkg/types"
)

// CatalogStore keeps each dataset's insight catalog as a JSON document next
// to the dataset file, extension swapped to .json. The catalog is small and
// rewritten whole on every generation run.
type CatalogStore struct{}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{}
}

// CatalogPath derives the catalog location from the dataset path.
func (s *CatalogStore) CatalogPath(datasetPath string) string {
	ext := filepath.Ext(datasetPath)
	return strings.TrimSuffix(datasetPath, ext) + ".json"
}

// Read loads the catalog beside the dataset. A missing file yields an empty
// catalog; a corrupt file is tolerated the same way, with a warning, so one
// bad document never blocks browsing the project.
func (s *CatalogStore) Read(datasetPath string) (*types.InsightCatalog, error) {
	path := s.CatalogPath(datasetPath)

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return types.NewInsightCatalog(), nil
		}
		return nil, fmt.Errorf("failed to read insight catalog %s, %w", path, err)
	}

	catalog := types.NewInsightCatalog()
	if err = json.Unmarshal(raw, catalog); err != nil {
		slog.Warn("insight catalog is corrupt, treating as empty",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return types.NewInsightCatalog(), nil
	}
	if catalog.SQLQueries == nil {
		catalog.SQLQueries = make(map[string]*types.InsightRecord)
	}
	return catalog, nil
}

// Write replaces the whole catalog document.
func (s *CatalogStore) Write(datasetPath string, catalog *types.InsightCatalog) error {
	path := s.CatalogPath(datasetPath)

	raw, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("failed to encode insight catalog, %w", err)
	}
	if err = os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write insight catalog %s, %w", path, err)
	}
	return nil
}

// Delete removes the catalog document if present.
func (s *CatalogStore) Delete(datasetPath string) error {
	err := os.Remove(s.CatalogPath(datasetPath))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
