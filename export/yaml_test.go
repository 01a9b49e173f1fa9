package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.yaml")

	require.NoError(t, WriteYAML(path, sampleResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Dimensions []string `yaml:"dimensions"`
		Rows       []struct {
			Options []string `yaml:"options"`
			Price   string   `yaml:"price"`
		} `yaml:"rows"`
		Succeeded int `yaml:"succeeded"`
		Total     int `yaml:"total"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))

	assert.Equal(t, []string{"Color", "Size"}, doc.Dimensions)
	require.Len(t, doc.Rows, 2)
	assert.Equal(t, []string{"Red", "M"}, doc.Rows[0].Options)
	assert.Equal(t, "￥123.45", doc.Rows[0].Price)
	assert.Equal(t, 2, doc.Succeeded)
	assert.Equal(t, 2, doc.Total)
}
