package sku

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"sku-traverser/internal/types"
)

// testConfig returns the default tunables with the settle/poll budgets
// shrunk so timeout paths resolve in milliseconds.
func testConfig() *types.Config {
	cfg := types.DefaultConfig()
	cfg.RootWait = 50 * time.Millisecond
	cfg.SettleDelay = 0
	cfg.PriceBudget = 20 * time.Millisecond
	cfg.PriceStep = 2 * time.Millisecond
	cfg.ImageBudget = 20 * time.Millisecond
	cfg.ImageStep = 2 * time.Millisecond
	return cfg
}

func testLogger() types.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// renderSKUHTML builds option-space markup matching the default locators.
// selected marks one option id per dimension ("" = none), disabled flags
// option ids rendered as unavailable.
func renderSKUHTML(dims []types.Dimension, selected types.SelectionState, disabled map[string]bool) string {
	var b strings.Builder
	b.WriteString(`<div class="skuWrapper--x1">`)
	for i, d := range dims {
		b.WriteString(`<div class="skuItem--x2">`)
		fmt.Fprintf(&b, `<div class="ItemLabel--x3"><span title=%q>%s</span></div>`, d.Name, d.Name)
		for _, o := range d.Options {
			attrs := fmt.Sprintf(` data-vid=%q`, o.ID)
			if disabled[o.ID] {
				attrs += ` data-disabled="true"`
			}
			if i < len(selected) && selected[i] == o.ID {
				attrs += ` data-selected="true"`
			}
			fmt.Fprintf(&b, `<div class="valueItem--x4"%s><span class="els--x5">%s</span></div>`, attrs, o.Text)
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// fakePage is a minimal Page: canned HTML per selector plus a scripted
// Evaluate handler.
type fakePage struct {
	html    map[string]string
	eval    func(script string) (string, error)
	scripts []string
}

func (f *fakePage) HTML(_ context.Context, selector string) (string, error) {
	if h, ok := f.html[selector]; ok {
		return h, nil
	}
	return "", fmt.Errorf("no element matches %q", selector)
}

func (f *fakePage) Evaluate(_ context.Context, script string, res interface{}) error {
	f.scripts = append(f.scripts, script)
	if f.eval == nil {
		return fmt.Errorf("unexpected Evaluate")
	}
	out, err := f.eval(script)
	if err != nil {
		return err
	}
	if p, ok := res.(*string); ok && p != nil {
		*p = out
	}
	return nil
}

type clickRec struct {
	dim int
	id  string
}

// skuSite simulates the live product page: it renders its current selection
// through renderSKUHTML and applies click scripts to its own state, so the
// reconciler and traverser run against realistic feedback.
type skuSite struct {
	loc      types.Locators
	dims     []types.Dimension
	current  types.SelectionState
	disabled map[string]bool

	clicks      []clickRec
	beforeClick func(dim int, id string) // may panic to simulate a dead page
	sideEffect  func(dim int)            // runs after a click lands, mutates current
	price       func() string
	image       func() string
}

func newSKUSite(dims []types.Dimension) *skuSite {
	return &skuSite{
		loc:     types.DefaultLocators(),
		dims:    dims,
		current: make(types.SelectionState, len(dims)),
	}
}

func (s *skuSite) HTML(_ context.Context, selector string) (string, error) {
	switch selector {
	case s.loc.DimensionContainer, s.loc.OptionSpaceRoot, "body":
		return renderSKUHTML(s.dims, s.current, s.disabled), nil
	}
	return "", fmt.Errorf("no element matches %q", selector)
}

func (s *skuSite) Evaluate(_ context.Context, script string, res interface{}) error {
	set := func(v string) {
		if p, ok := res.(*string); ok && p != nil {
			*p = v
		}
	}

	switch script {
	case scrollImageIntoViewScript(s.loc):
		return nil
	case priceScript(s.loc):
		if s.price != nil {
			set(s.price())
		} else {
			set("")
		}
		return nil
	case imageScript(s.loc):
		if s.image != nil {
			set(s.image())
		} else {
			set("")
		}
		return nil
	}

	for di, d := range s.dims {
		for _, o := range d.Options {
			if script != clickOptionScript(s.loc, di, o.ID) {
				continue
			}
			set(s.click(di, o))
			return nil
		}
	}
	return fmt.Errorf("unexpected script")
}

func (s *skuSite) click(dim int, o types.Option) string {
	s.clicks = append(s.clicks, clickRec{dim: dim, id: o.ID})
	if s.beforeClick != nil {
		s.beforeClick(dim, o.ID)
	}
	if s.current[dim] == o.ID {
		return clickOutcomeSelected
	}
	s.current[dim] = o.ID
	if s.sideEffect != nil {
		s.sideEffect(dim)
	}
	return clickOutcomeClicked
}

func twoByThree() []types.Dimension {
	return []types.Dimension{
		{Name: "Color", Options: []types.Option{{ID: "c1", Text: "Red"}, {ID: "c2", Text: "Blue"}}},
		{Name: "Size", Options: []types.Option{{ID: "s1", Text: "S"}, {ID: "s2", Text: "M"}, {ID: "s3", Text: "L"}}},
	}
}
