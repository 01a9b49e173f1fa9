package sku

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sku-traverser/internal/types"
	"sku-traverser/utils"
)

// Discover inspects the rendered page once and returns the typed option
// space. Disabled options are excluded, and a dimension left with no enabled
// option is omitted entirely. The option-space root is awaited with a
// bounded poll; if it never appears the whole traversal is off, so the
// returned *DiscoveryError is fatal.
func Discover(ctx context.Context, page types.Page, loc types.Locators, cfg *types.Config, logger types.Logger) ([]types.Dimension, error) {
	if err := waitForRoot(ctx, page, loc, cfg); err != nil {
		return nil, &DiscoveryError{Selector: loc.DimensionContainer, Err: err}
	}

	doc, err := snapshot(ctx, page, loc)
	if err != nil {
		return nil, &DiscoveryError{Selector: loc.OptionSpaceRoot, Err: err}
	}

	var dims []types.Dimension
	doc.Find(loc.DimensionContainer).Each(func(i int, item *goquery.Selection) {
		name := dimensionName(item, loc, i)

		var opts []types.Option
		item.Find(loc.OptionItem).Each(func(_ int, el *goquery.Selection) {
			if strings.EqualFold(el.AttrOr(loc.DisabledAttr, ""), "true") {
				return
			}
			id := strings.TrimSpace(el.AttrOr(loc.OptionIDAttr, ""))
			text := optionText(el, loc)
			if id != "" && text != "" {
				opts = append(opts, types.Option{ID: id, Text: text})
			}
		})

		if len(opts) > 0 {
			dims = append(dims, types.Dimension{Name: name, Options: opts})
		}
	})

	if len(dims) == 0 {
		return nil, &DiscoveryError{Selector: loc.DimensionContainer, Err: fmt.Errorf("no dimensions with enabled options")}
	}

	logger.Infof("Discovered %d dimensions, %d combinations total", len(dims), TotalCombinations(dims))
	for i, d := range dims {
		logger.Debugf("  dimension %d: %s (%d options)", i+1, d.Name, len(d.Options))
	}
	return dims, nil
}

// waitForRoot polls until at least one dimension container is rendered.
func waitForRoot(ctx context.Context, page types.Page, loc types.Locators, cfg *types.Config) error {
	return utils.Poll(ctx, cfg.RootWait, 250*time.Millisecond, func() (bool, error) {
		_, err := page.HTML(ctx, loc.DimensionContainer)
		if err != nil {
			return false, err
		}
		return true, nil
	})
}

// snapshot captures the option-space markup once and parses it offline. The
// wrapping root is preferred; the full body is the fallback when the site
// has no distinct wrapper element.
func snapshot(ctx context.Context, page types.Page, loc types.Locators) (*goquery.Document, error) {
	html, err := page.HTML(ctx, loc.OptionSpaceRoot)
	if err != nil {
		html, err = page.HTML(ctx, "body")
		if err != nil {
			return nil, fmt.Errorf("failed to snapshot option space: %w", err)
		}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse option-space HTML: %w", err)
	}
	return doc, nil
}

func dimensionName(item *goquery.Selection, loc types.Locators, index int) string {
	label := item.Find(loc.DimensionLabel).First()
	name := strings.TrimSpace(label.AttrOr("title", ""))
	if name == "" {
		name = strings.TrimSpace(label.Text())
	}
	if name == "" {
		name = fmt.Sprintf("Dimension %d", index+1)
	}
	return name
}

func optionText(el *goquery.Selection, loc types.Locators) string {
	span := el.Find(loc.OptionText).First()
	text := strings.TrimSpace(span.AttrOr("title", ""))
	if text == "" {
		text = strings.TrimSpace(span.Text())
	}
	if text == "" {
		text = strings.TrimSpace(el.Text())
	}
	return text
}
