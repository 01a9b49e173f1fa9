package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ParsesValuesAndNulls(t *testing.T) {
	path := writePlan(t, "- 12.5\n- null\n- 10\n- ~\n- 0.99\n")

	values, err := Load(path)

	require.NoError(t, err)
	require.Len(t, values, 5)
	assert.Equal(t, 12.5, *values[0])
	assert.Nil(t, values[1])
	assert.Equal(t, 10.0, *values[2])
	assert.Nil(t, values[3])
	assert.Equal(t, 0.99, *values[4])
}

func TestLoad_EmptyPlan(t *testing.T) {
	path := writePlan(t, "")

	_, err := Load(path)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_NotASequence(t *testing.T) {
	path := writePlan(t, "foo: bar\n")

	_, err := Load(path)
	assert.Error(t, err)
}
