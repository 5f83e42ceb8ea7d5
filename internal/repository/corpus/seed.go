package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SeedEntry is one document in a YAML seed file.
type SeedEntry struct {
	Text     string `yaml:"text"`
	Category string `yaml:"category"`
}

// LoadSeed reads a YAML list of seed entries and inserts them into the
// repository. Entries without text are skipped. Returns the number inserted.
func LoadSeed(path string, repo *Repository) (int, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("read seed file %s: %w", path, err)
	}

	var entries []SeedEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	added := 0
	ctx := context.Background()
	for _, e := range entries {
		if e.Text == "" {
			continue
		}
		if _, err := repo.Insert(ctx, e.Text, e.Category); err != nil {
			return added, fmt.Errorf("insert seed document: %w", err)
		}
		added++
	}
	return added, nil
}
