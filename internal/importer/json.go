package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/BoxPack/internal/model"
)

// LoadInstance reads an instance stored as JSON. Rectangles are renumbered
// and reset to their unplaced default orientation.
func LoadInstance(path string) (model.Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Instance{}, fmt.Errorf("failed to read instance: %w", err)
	}
	var inst model.Instance
	if err := json.Unmarshal(data, &inst); err != nil {
		return model.Instance{}, fmt.Errorf("failed to parse instance: %w", err)
	}
	if len(inst.Rectangles) == 0 {
		return model.Instance{}, ErrNoRectangles
	}
	inst.Normalize()
	return inst, nil
}

// SaveInstance writes inst as indented JSON, creating parent directories.
func SaveInstance(path string, inst model.Instance) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.MarshalIndent(inst, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal instance: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write instance: %w", err)
	}
	return nil
}
