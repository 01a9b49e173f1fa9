package sku

import (
	"context"
	"fmt"
	"time"

	"sku-traverser/internal/types"
)

// Click outcomes reported by the in-page click script.
const (
	clickOutcomeClicked     = "clicked"
	clickOutcomeSelected    = "already-selected"
	clickOutcomeNoDimension = "missing-dimension"
	clickOutcomeNoOption    = "missing-option"
)

// Reconciler drives the live page from one applied combination to the next
// with the fewest clicks. The diff against the previous combination is the
// dominant cost saver of the whole traversal: a naive click-every-dimension
// loop would multiply every transition by the dimension count.
type Reconciler struct {
	page   types.Page
	loc    types.Locators
	cfg    *types.Config
	logger types.Logger
}

// NewReconciler creates a reconciler bound to one page.
func NewReconciler(page types.Page, loc types.Locators, cfg *types.Config, logger types.Logger) *Reconciler {
	return &Reconciler{page: page, loc: loc, cfg: cfg, logger: logger}
}

// Apply transforms the page from lastApplied to target and returns target's
// selection state as the next iteration's baseline.
//
// Phase one clicks only the dimensions whose option differs from
// lastApplied; a stale baseline is harmless because the click script no-ops
// on options the page already marks selected. Phase two re-verifies all
// dimensions and repairs any that a side-effecting click silently reset;
// which dimension interactions reset others is a property of the site's
// markup, so the repair pass always runs rather than special-casing
// dimension indices.
//
// A per-dimension click failure is logged and skipped; it never aborts the
// batch. The returned error is reserved for page-transport failures that
// make every further query pointless.
func (r *Reconciler) Apply(ctx context.Context, target types.Combination, lastApplied types.SelectionState) (types.SelectionState, error) {
	changed := diffIndices(target, lastApplied)
	if len(changed) == 0 {
		r.logger.Debugf("Reconcile: no dimension changed, skipping clicks")
		return IDs(target), nil
	}

	// Targeted phase: only the differing dimensions.
	for _, dim := range changed {
		if err := r.clickOption(ctx, dim, target[dim].ID); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Warnf("Reconcile: %v", err)
		}
	}

	// Repair phase: verify every dimension, not just the changed ones.
	live := ReadSelection(ctx, r.page, r.loc, len(target))
	for dim, opt := range target {
		if live[dim] == opt.ID {
			continue
		}
		if err := r.clickOption(ctx, dim, opt.ID); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Warnf("Reconcile repair: %v", err)
		}
	}

	return IDs(target), nil
}

// clickOption clicks one option scoped to its dimension container, skipping
// the click when the page already marks it selected. After a real click the
// page's reactive update gets a short fixed settle delay; the page exposes
// no completion signal to wait on.
func (r *Reconciler) clickOption(ctx context.Context, dim int, optionID string) error {
	var outcome string
	if err := r.page.Evaluate(ctx, clickOptionScript(r.loc, dim, optionID), &outcome); err != nil {
		return &ReconcileStepError{Dimension: dim, OptionID: optionID, Reason: err.Error()}
	}

	switch outcome {
	case clickOutcomeClicked:
		r.settle(ctx)
		return nil
	case clickOutcomeSelected:
		return nil
	default:
		return &ReconcileStepError{Dimension: dim, OptionID: optionID, Reason: outcome}
	}
}

func (r *Reconciler) settle(ctx context.Context) {
	select {
	case <-time.After(r.cfg.SettleDelay):
	case <-ctx.Done():
	}
}

// diffIndices returns the dimensions whose target option differs from the
// baseline. A missing or mis-sized baseline means every dimension changes.
func diffIndices(target types.Combination, lastApplied types.SelectionState) []int {
	if len(lastApplied) != len(target) {
		all := make([]int, len(target))
		for i := range all {
			all[i] = i
		}
		return all
	}
	var changed []int
	for i, opt := range target {
		if lastApplied[i] != opt.ID {
			changed = append(changed, i)
		}
	}
	return changed
}

// clickOptionScript locates the option inside the dim-th dimension
// container and clicks it unless it is already selected. Scripted clicks
// are used instead of synthetic mouse input because overlay elements
// routinely cover the option grid.
func clickOptionScript(loc types.Locators, dim int, optionID string) string {
	return fmt.Sprintf(`(function(){
  var items = document.querySelectorAll(%q);
  if (%d >= items.length) return %q;
  var el = items[%d].querySelector(%q + "[" + %q + "=" + JSON.stringify(%q) + "]");
  if (!el) return %q;
  var cls = el.getAttribute('class') || '';
  if (/selected|active|checked/i.test(cls) ||
      (el.getAttribute('aria-checked') || '').toLowerCase() === 'true' ||
      (el.getAttribute(%q) || '').toLowerCase() === 'true') {
    return %q;
  }
  el.click();
  return %q;
})()`,
		loc.DimensionContainer,
		dim, clickOutcomeNoDimension,
		dim, loc.OptionItem, loc.OptionIDAttr, optionID,
		clickOutcomeNoOption,
		loc.SelectedAttr,
		clickOutcomeSelected,
		clickOutcomeClicked,
	)
}
