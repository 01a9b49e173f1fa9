package types

import (
	"context"
	"time"
)

// Dimension is one axis of the SKU configuration space, e.g. "Color".
// The option order is significant: it defines the column order of the
// traversal output.
type Dimension struct {
	Name    string   `json:"name"`
	Options []Option `json:"options"`
}

// Option is one selectable value inside a dimension. ID is the stable DOM
// value-id used for click targeting; Text is the display label used for
// result rows. Two options in the same dimension never share an ID.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Combination is exactly one option per dimension, index-aligned to the
// dimension list. Immutable once generated.
type Combination []Option

// SelectionState holds the option ID currently selected per dimension, ""
// where no selection could be resolved. It is transient diff input, never
// persisted.
type SelectionState []string

// ResultRow is the outcome of one successfully reconciled combination.
type ResultRow struct {
	Options  []string `json:"options" yaml:"options"`
	ImageURL string   `json:"image_url" yaml:"image_url"`
	Price    string   `json:"price" yaml:"price"`
}

// Page is the surface the traversal core consumes from the browser layer.
// A single page is driven strictly sequentially; there are no concurrent
// callers.
type Page interface {
	// HTML returns the outer HTML of the first element matching the CSS
	// selector, or an error if no such element exists.
	HTML(ctx context.Context, selector string) (string, error)
	// Evaluate runs a script in the page and unmarshals its JSON result
	// into res. res may be nil when the result is not needed.
	Evaluate(ctx context.Context, script string, res interface{}) error
}

// GridPage adds the scroll control the virtualized grid writer needs on top
// of script evaluation.
type GridPage interface {
	Evaluate(ctx context.Context, script string, res interface{}) error
	// Scroll scrolls the scrollable region matching selector by dy pixels,
	// or the window when selector is empty.
	Scroll(ctx context.Context, selector string, dy int) error
}

// Locators maps semantic page roles to CSS selectors and attribute names.
// Site markup details live here, not in the logic; the defaults use
// attribute-substring selectors so they survive hashed class suffixes.
type Locators struct {
	// Option-space roles.
	OptionSpaceRoot    string // container wrapping every dimension block
	DimensionContainer string // container of one dimension's options
	DimensionLabel     string // dimension name node, scoped to the container
	OptionItem         string // one option element, scoped to the container
	OptionText         string // option label node, scoped to the option
	OptionIDAttr       string // attribute carrying the stable option id
	DisabledAttr       string // attribute flagging an unavailable option
	SelectedAttr       string // attribute flagging a selected option

	// Derived-value roles.
	PriceText      string   // primary price text node
	PriceSymbol    string   // currency symbol node next to the price
	PriceFallbacks []string // fallback price selectors, tried in order
	MainImage      string   // main product image element
	ImageWrap      string   // main image wrapper (lazy-load scroll target)
	ZoomImage      string   // zoom overlay whose background holds the image

	// Grid roles.
	GridRow      string // one rendered data row of the virtualized table
	GridInput    string // price input cell, scoped to the row
	RowKeyAttr   string // attribute carrying the stable row identity
	GridViewport string // scrollable viewport of the virtualized table
}

// DefaultLocators returns the generic attribute-substring locator table.
func DefaultLocators() Locators {
	return Locators{
		OptionSpaceRoot:    "[class*='skuWrapper'], [class*='skuCore']",
		DimensionContainer: "[class*='skuItem']",
		DimensionLabel:     "[class*='ItemLabel'] span",
		OptionItem:         "[class*='valueItem']:not([class*='ImgWrap'])",
		OptionText:         "span[class*='els']",
		OptionIDAttr:       "data-vid",
		DisabledAttr:       "data-disabled",
		SelectedAttr:       "data-selected",
		PriceText:          "[class*='highlightPrice'] [class*='text']",
		PriceSymbol:        "[class*='highlightPrice'] [class*='symbol']",
		PriceFallbacks: []string{
			"[class*='beltPrice'] [class*='text']",
			"[class*='priceWrap'] [class*='text']",
			"[class*='price'] [class*='number']",
		},
		MainImage:    "img[class*='mainPic']",
		ImageWrap:    "[class*='mainPicWrap']",
		ZoomImage:    ".js-image-zoom__zoomed-image",
		GridRow:      "[class*='table-row']",
		GridInput:    "input[type='text']",
		RowKeyAttr:   "data-row-key",
		GridViewport: "[class*='table-body']",
	}
}

// Config holds all tunables for a traversal session. It is built once in
// cmd and passed in; the core never reads the environment.
type Config struct {
	// Browser session.
	Headless    bool
	UserDataDir string // reuse an existing profile (logged-in state)
	ProfileDir  string
	UserAgent   string
	Timeout     time.Duration // per browser operation

	// Traversal.
	RootWait    time.Duration // bounded wait for the option-space root
	SettleDelay time.Duration // pause after a click before re-querying
	MaxCombos   int           // 0 = no limit; >0 caps traversal for dry runs

	// Extraction budgets.
	PriceBudget time.Duration
	PriceStep   time.Duration
	ImageBudget time.Duration
	ImageStep   time.Duration

	// Grid writer.
	ScrollStep    int           // pixels per incremental reveal
	ScrollSettle  time.Duration // budget for newly rendered rows to appear
	WindowPasses  int           // injection passes per window before scrolling
	StallRounds   int           // rounds without progress before giving up
	MinValidValue float64       // plan values below this are skipped
}

// DefaultConfig returns the tuned defaults. The extraction budgets follow
// the observed page behavior: price settles well inside 300ms, the main
// image swap lags and needs up to 800ms.
func DefaultConfig() *Config {
	return &Config{
		Headless:      false,
		ProfileDir:    "Default",
		UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Timeout:       30 * time.Second,
		RootWait:      30 * time.Second,
		SettleDelay:   30 * time.Millisecond,
		PriceBudget:   300 * time.Millisecond,
		PriceStep:     60 * time.Millisecond,
		ImageBudget:   800 * time.Millisecond,
		ImageStep:     50 * time.Millisecond,
		ScrollStep:    320,
		ScrollSettle:  500 * time.Millisecond,
		WindowPasses:  3,
		StallRounds:   3,
		MinValidValue: 0.01,
	}
}

// Logger defines the logging interface consumed by every component, so the
// core stays testable without a concrete logrus instance.
type Logger interface {
	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}
