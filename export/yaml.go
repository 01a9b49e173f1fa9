package export

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"sku-traverser/sku"
)

// WriteYAML dumps the result rows to path as a YAML document, the format
// downstream plan tooling reads back.
func WriteYAML(path string, res *sku.Result) error {
	doc := struct {
		Dimensions []string    `yaml:"dimensions"`
		Rows       interface{} `yaml:"rows"`
		Succeeded  int         `yaml:"succeeded"`
		Total      int         `yaml:"total"`
	}{
		Dimensions: make([]string, len(res.Dimensions)),
		Rows:       res.Rows,
		Succeeded:  res.Succeeded,
		Total:      res.Total,
	}
	for i, d := range res.Dimensions {
		doc.Dimensions[i] = d.Name
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
