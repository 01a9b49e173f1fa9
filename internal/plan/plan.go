// Package plan loads the value plan for a grid fill run: one entry per
// logical row, in the order the grid renders them, with null marking rows
// that should be skipped.
package plan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML sequence of numbers from path. A null entry becomes a
// nil pointer, which the grid writer treats as "consume the row, write
// nothing".
func Load(path string) ([]*float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}

	var values []*float64
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing plan %s: %w", path, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("plan %s is empty", path)
	}
	return values, nil
}
