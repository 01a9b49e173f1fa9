package sku

import (
	"context"
	"fmt"
	"time"

	"sku-traverser/internal/types"
)

// Result is everything a traversal produced. Rows are ordered by traversal
// position; Succeeded counts combinations that yielded a row.
type Result struct {
	Dimensions []types.Dimension `json:"dimensions"`
	Rows       []types.ResultRow `json:"rows"`
	Succeeded  int               `json:"succeeded"`
	Total      int               `json:"total"`
}

// Traverser sequences the full enumeration: discovery, combination
// generation, per-combination reconciliation and extraction. One page, one
// linear pass, no backtracking.
type Traverser struct {
	page   types.Page
	loc    types.Locators
	cfg    *types.Config
	logger types.Logger

	reconciler *Reconciler
	extractor  *Extractor
}

// NewTraverser wires a traverser and its reconciler/extractor onto one page.
func NewTraverser(page types.Page, loc types.Locators, cfg *types.Config, logger types.Logger) *Traverser {
	return &Traverser{
		page:       page,
		loc:        loc,
		cfg:        cfg,
		logger:     logger,
		reconciler: NewReconciler(page, loc, cfg, logger),
		extractor:  NewExtractor(page, loc, cfg, logger),
	}
}

// Run enumerates every combination and collects a row per success. The only
// fatal failure is discovery (*DiscoveryError); a single combination's
// failure is wrapped, logged and skipped, so total traversal time stays
// bounded by N times the per-combination maximum. Run always returns the
// rows collected so far together with the success count, even when the
// context is cancelled mid-traversal.
func (t *Traverser) Run(ctx context.Context) (*Result, error) {
	dims, err := Discover(ctx, t.page, t.loc, t.cfg, t.logger)
	if err != nil {
		return nil, err
	}

	combos := Combinations(dims)

	// Visit the page's current live selection first when it maps onto a
	// known combination; its reconcile is then a no-op and one transition
	// is saved.
	selection := ReadSelection(ctx, t.page, t.loc, len(dims))
	combos, lastApplied := ReorderFront(combos, selection, dims)
	if lastApplied != nil {
		t.logger.Debug("Live selection moved to traversal position 0")
	}

	if t.cfg.MaxCombos > 0 && t.cfg.MaxCombos < len(combos) {
		t.logger.Infof("Limiting traversal to the first %d of %d combinations", t.cfg.MaxCombos, len(combos))
		combos = combos[:t.cfg.MaxCombos]
	}

	result := &Result{Dimensions: dims, Total: len(combos)}

	for i, combo := range combos {
		if ctx.Err() != nil {
			t.logger.Warnf("Traversal interrupted after %d/%d combinations", i, len(combos))
			break
		}

		start := time.Now()
		t.logger.Infof("Combination %d/%d: %s", i+1, len(combos), describe(dims, combo))

		row, next, err := t.processOne(ctx, combo, lastApplied)
		if err != nil {
			t.logger.Warnf("%v", &CombinationError{Index: i + 1, Err: err})
			// The page state is unknown now; force a full reapply next time.
			lastApplied = nil
			continue
		}
		lastApplied = next

		result.Rows = append(result.Rows, row)
		result.Succeeded++
		t.logger.Infof("  price=%s image=%s (%s)", row.Price, orEmpty(row.ImageURL), time.Since(start).Round(time.Millisecond))
	}

	t.logger.Infof("Traversal finished: %d/%d combinations succeeded", result.Succeeded, result.Total)
	return result, nil
}

// processOne reconciles one combination and extracts its derived values.
// Panics from the page layer are converted into plain errors so a single
// bad combination can never take down the batch.
func (t *Traverser) processOne(ctx context.Context, combo types.Combination, lastApplied types.SelectionState) (row types.ResultRow, next types.SelectionState, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	next, err = t.reconciler.Apply(ctx, combo, lastApplied)
	if err != nil {
		return types.ResultRow{}, nil, err
	}

	// Extraction never fails the combination: a timed-out price degrades
	// to the sentinel, a timed-out image to "". If a dimension click was
	// skipped above, the captured price may still be stale; the row
	// records it as-is.
	price := t.extractor.Price(ctx)
	image := t.extractor.Image(ctx)

	texts := make([]string, len(combo))
	for i, o := range combo {
		texts[i] = o.Text
	}
	return types.ResultRow{Options: texts, ImageURL: image, Price: price}, next, nil
}

func describe(dims []types.Dimension, combo types.Combination) string {
	s := ""
	for i, o := range combo {
		if i > 0 {
			s += " | "
		}
		s += dims[i].Name + ": " + o.Text
	}
	return s
}

func orEmpty(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
