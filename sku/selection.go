package sku

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sku-traverser/internal/types"
)

// ReadSelection reports which option id (if any) the live page shows as
// selected per dimension. The result always has length dimCount; any
// per-dimension lookup failure degrades that slot to "" instead of failing
// the whole read. It is diff input only and is never persisted.
func ReadSelection(ctx context.Context, page types.Page, loc types.Locators, dimCount int) types.SelectionState {
	state := make(types.SelectionState, dimCount)

	doc, err := snapshot(ctx, page, loc)
	if err != nil {
		return state
	}

	doc.Find(loc.DimensionContainer).Each(func(i int, item *goquery.Selection) {
		if i >= dimCount {
			return
		}
		item.Find(loc.OptionItem).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if !isSelected(el, loc) {
				return true
			}
			if id := strings.TrimSpace(el.AttrOr(loc.OptionIDAttr, "")); id != "" {
				state[i] = id
				return false
			}
			return true
		})
	})

	return state
}

// isSelected applies the selected-state heuristics the page is known to use:
// a marker class, aria-checked, or an explicit selected attribute.
func isSelected(el *goquery.Selection, loc types.Locators) bool {
	cls := el.AttrOr("class", "")
	if strings.Contains(cls, "selected") || strings.Contains(cls, "Selected") ||
		strings.Contains(cls, "active") || strings.Contains(cls, "checked") {
		return true
	}
	if strings.EqualFold(el.AttrOr("aria-checked", ""), "true") {
		return true
	}
	return strings.EqualFold(el.AttrOr(loc.SelectedAttr, ""), "true")
}
