package export

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sku-traverser/internal/types"
	"sku-traverser/sku"
	"sku-traverser/utils"
)

// DownloadImages fetches every distinct image referenced by the result rows
// into dir and returns how many files it wrote. A failed download is logged
// and skipped; the export as a whole keeps going.
func DownloadImages(ctx context.Context, client *utils.HTTPClient, res *sku.Result, dir string, logger types.Logger) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating image dir: %w", err)
	}

	seen := make(map[string]bool)
	saved := 0
	for _, row := range res.Rows {
		url := row.ImageURL
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true

		if err := ctx.Err(); err != nil {
			return saved, err
		}

		data, err := client.Get(ctx, url)
		if err != nil {
			logger.Warnf("Skipping image %s: %v", url, err)
			continue
		}
		path := filepath.Join(dir, imageFileName(url))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return saved, fmt.Errorf("writing %s: %w", path, err)
		}
		saved++
		logger.Debugf("Saved image %s (%d bytes)", path, len(data))
	}
	logger.Infof("Downloaded %d images into %s", saved, dir)
	return saved, nil
}

// imageFileName derives a stable name from the URL so re-runs overwrite
// instead of accumulating duplicates. The extension is kept when the URL
// carries a recognizable one.
func imageFileName(url string) string {
	sum := sha1.Sum([]byte(url))
	name := hex.EncodeToString(sum[:8])

	base := url
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	switch ext := strings.ToLower(filepath.Ext(base)); ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif", ".avif":
		return name + ext
	default:
		return name + ".jpg"
	}
}
