package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sku-traverser/internal/types"
	"sku-traverser/sku"
	"sku-traverser/utils"
)

func TestDownloadImages_DeduplicatesURLs(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("img"))
	}))
	defer server.Close()

	res := &sku.Result{Rows: []types.ResultRow{
		{ImageURL: server.URL + "/a.jpg"},
		{ImageURL: server.URL + "/a.jpg"}, // same image, different combination
		{ImageURL: server.URL + "/b.png"},
		{ImageURL: ""}, // extraction timed out for this row
	}}

	logger := logrus.New()
	client := utils.NewHTTPClient(types.DefaultConfig(), logger)
	defer client.Close()

	dir := filepath.Join(t.TempDir(), "images")
	saved, err := DownloadImages(context.Background(), client, res, dir, logger)

	require.NoError(t, err)
	assert.Equal(t, 2, saved)
	assert.Equal(t, 2, hits)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestImageFileName(t *testing.T) {
	a := imageFileName("https://img.example.com/a.jpg")
	b := imageFileName("https://img.example.com/b.webp?x=1")

	assert.Equal(t, ".jpg", filepath.Ext(a))
	assert.Equal(t, ".webp", filepath.Ext(b))
	assert.NotEqual(t, a, b)
	// Stable across calls so re-runs overwrite.
	assert.Equal(t, a, imageFileName("https://img.example.com/a.jpg"))
}
