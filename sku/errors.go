// Package sku implements discovery and exhaustive traversal of a product's
// variant configuration space on a live, dynamically-rendered page: option
// discovery, cartesian combination generation, minimal-diff state
// reconciliation, and polling extraction of the derived price and image.
package sku

import "fmt"

// DiscoveryError reports that the option-space root never appeared or that
// no usable dimension was found. It is fatal for the whole traversal.
type DiscoveryError struct {
	Selector string
	Err      error
}

func (e *DiscoveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("option-space discovery failed (%s): %v", e.Selector, e.Err)
	}
	return fmt.Sprintf("option-space discovery failed (%s)", e.Selector)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// ReconcileStepError reports a failed click on a single dimension. It is
// logged and skipped; reconciliation continues with the remaining
// dimensions.
type ReconcileStepError struct {
	Dimension int
	OptionID  string
	Reason    string
}

func (e *ReconcileStepError) Error() string {
	return fmt.Sprintf("dimension %d: could not select option %q: %s", e.Dimension, e.OptionID, e.Reason)
}

// ExtractionTimeout reports that a derived-value poll budget expired without
// a well-formed result. Non-fatal: the caller substitutes a sentinel value
// and the row is still recorded.
type ExtractionTimeout struct {
	Kind string // "price" or "image"
	Err  error
}

func (e *ExtractionTimeout) Error() string {
	return fmt.Sprintf("%s extraction timed out: %v", e.Kind, e.Err)
}

func (e *ExtractionTimeout) Unwrap() error { return e.Err }

// CombinationError wraps any failure while processing one combination. The
// traverser logs it and advances; the combination contributes no row.
type CombinationError struct {
	Index int
	Err   error
}

func (e *CombinationError) Error() string {
	return fmt.Sprintf("combination %d failed: %v", e.Index, e.Err)
}

func (e *CombinationError) Unwrap() error { return e.Err }
