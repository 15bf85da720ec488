// internal/search/fields/loader.go
package fields

import (
	"encoding/json"
	"fmt"
	"os"

	"trial-search/internal/models"
)

// LoadFromFile builds a registry from a JSON catalog file, used by
// deployments that override the built-in field set.
func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read field catalog: %w", err)
	}

	var catalog []models.FieldDescriptor
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse field catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("field catalog %s is empty", path)
	}

	seen := make(map[string]bool, len(catalog))
	for i, f := range catalog {
		if f.ID == "" {
			return nil, fmt.Errorf("field catalog entry %d has no id", i)
		}
		if seen[f.ID] {
			return nil, fmt.Errorf("field catalog has duplicate id %s", f.ID)
		}
		seen[f.ID] = true
		switch f.Type {
		case models.SemanticText, models.SemanticNumber, models.SemanticDate,
			models.SemanticDropdown, models.SemanticBinary, models.SemanticIdentifier:
		default:
			return nil, fmt.Errorf("field %s has unknown semantic type %q", f.ID, f.Type)
		}
	}

	return NewRegistry(catalog), nil
}
