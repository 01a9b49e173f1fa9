package grid

import (
	"context"
	"encoding/json"
	"fmt"

	"sku-traverser/internal/types"
	"sku-traverser/utils"
)

// Write outcomes reported by the in-page script.
const (
	writeOutcomeWritten      = "written"
	writeOutcomeOccupied     = "occupied"
	writeOutcomeMissingRow   = "missing-row"
	writeOutcomeMissingInput = "missing-input"
)

// visibleRow is one rendered row of the grid's current window.
type visibleRow struct {
	Key    string `json:"key"`
	Pos    int    `json:"pos"`
	Filled bool   `json:"filled"`
}

// Writer types values into a virtualized grid. The grid only keeps the
// visible window in the DOM and recycles row elements on scroll, so row
// identity comes from a stable key attribute, never from the element. Each
// logical row consumes exactly one plan value the first time it is seen and
// is never revisited, no matter how many times the virtualizer re-renders it.
type Writer struct {
	page   types.GridPage
	loc    types.Locators
	cfg    *types.Config
	logger types.Logger

	processed map[string]bool
	warnedPos bool
}

func NewWriter(page types.GridPage, loc types.Locators, cfg *types.Config, logger types.Logger) *Writer {
	return &Writer{
		page:      page,
		loc:       loc,
		cfg:       cfg,
		logger:    logger,
		processed: make(map[string]bool),
	}
}

// Fill walks the grid top to bottom and assigns values to rows in render
// order: the i-th previously unseen row consumes values[i]. A nil entry or
// a value below the validity floor consumes its slot without touching the
// cell, and a cell that already holds text is left as-is. Fill returns how
// many values were consumed out of the total plan.
func (w *Writer) Fill(ctx context.Context, values []*float64) (int, int, error) {
	total := len(values)
	next := 0
	stalls := 0

	for next < total {
		if err := ctx.Err(); err != nil {
			return next, total, err
		}

		// The grid may shuffle rows while reacting to input events, so
		// each window gets several passes; later passes pick up rows
		// that re-rendered mid-pass.
		consumed := 0
		for pass := 0; pass < w.cfg.WindowPasses && next < total; pass++ {
			n, err := w.fillWindow(ctx, values, &next)
			if err != nil {
				return next, total, err
			}
			consumed += n
			if n == 0 {
				break
			}
		}
		if next >= total {
			break
		}

		if consumed == 0 {
			stalls++
			if stalls >= w.cfg.StallRounds {
				w.logger.Warnf("Grid stalled: no new rows after %d scroll rounds, %d/%d values placed", stalls, next, total)
				break
			}
		} else {
			stalls = 0
		}

		if err := w.advance(ctx); err != nil {
			return next, total, err
		}
	}

	w.logger.Infof("Grid fill: processed %d of %d values", next, total)
	return next, total, nil
}

// fillWindow processes every unseen row currently rendered, in order.
// Returns how many values it consumed.
func (w *Writer) fillWindow(ctx context.Context, values []*float64, next *int) (int, error) {
	rows, err := w.visibleRows(ctx)
	if err != nil {
		return 0, err
	}

	consumed := 0
	for _, row := range rows {
		if *next >= len(values) {
			break
		}
		key := w.rowKey(row)
		if w.processed[key] {
			continue
		}

		v := values[*next]
		*next++
		consumed++
		w.processed[key] = true

		if v == nil {
			w.logger.Debugf("Row %s: no value planned, skipping", key)
			continue
		}
		text, ok := FormatValue(*v, w.cfg.MinValidValue)
		if !ok {
			w.logger.Debugf("Row %s: value %v below floor, skipping", key, *v)
			continue
		}
		if row.Filled {
			w.logger.Debugf("Row %s: cell already populated, keeping existing value", key)
			continue
		}

		if err := w.writeCell(ctx, row, text); err != nil {
			return consumed, err
		}
	}
	return consumed, nil
}

func (w *Writer) visibleRows(ctx context.Context) ([]visibleRow, error) {
	var raw string
	if err := w.page.Evaluate(ctx, enumerateRowsScript(w.loc), &raw); err != nil {
		return nil, fmt.Errorf("enumerating grid rows: %w", err)
	}
	var rows []visibleRow
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, fmt.Errorf("decoding grid rows: %w", err)
	}
	return rows, nil
}

// rowKey prefers the page's stable key attribute. Rows without one fall
// back to their window position, which is only stable until the next
// scroll; a single warning flags the degraded run.
func (w *Writer) rowKey(row visibleRow) string {
	if row.Key != "" {
		return row.Key
	}
	if !w.warnedPos {
		w.warnedPos = true
		w.logger.Warnf("Grid rows carry no %q attribute; falling back to positional keys, re-rendered rows may be double-counted", w.loc.RowKeyAttr)
	}
	return fmt.Sprintf("pos:%d", row.Pos)
}

func (w *Writer) writeCell(ctx context.Context, row visibleRow, text string) error {
	var outcome string
	if err := w.page.Evaluate(ctx, writeCellScript(w.loc, row, text), &outcome); err != nil {
		return fmt.Errorf("writing cell %s: %w", w.rowKey(row), err)
	}
	switch outcome {
	case writeOutcomeWritten:
		w.logger.Debugf("Row %s: wrote %q", w.rowKey(row), text)
	case writeOutcomeOccupied:
		w.logger.Debugf("Row %s: cell filled between passes, keeping existing value", w.rowKey(row))
	default:
		w.logger.Warnf("Row %s: write failed (%s)", w.rowKey(row), outcome)
	}
	return nil
}

// advance scrolls the viewport one step and waits for a row key it has not
// processed to show up. Running out the settle budget is not an error here;
// the stall counter in Fill decides when to give up.
func (w *Writer) advance(ctx context.Context) error {
	if err := w.page.Scroll(ctx, w.loc.GridViewport, w.cfg.ScrollStep); err != nil {
		return fmt.Errorf("scrolling grid: %w", err)
	}

	err := utils.Poll(ctx, w.cfg.ScrollSettle, w.cfg.ScrollSettle/5, func() (bool, error) {
		rows, err := w.visibleRows(ctx)
		if err != nil {
			return false, err
		}
		for _, row := range rows {
			if !w.processed[w.rowKey(row)] {
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}

// enumerateRowsScript lists the rendered rows in document order with their
// stable key and whether the target input already holds text.
func enumerateRowsScript(loc types.Locators) string {
	return fmt.Sprintf(`/*rows*/(function() {
	var out = [];
	var rows = document.querySelectorAll(%s);
	for (var i = 0; i < rows.length; i++) {
		var input = rows[i].querySelector(%s);
		if (!input) { continue; }
		out.push({
			key: rows[i].getAttribute(%s) || "",
			pos: i,
			filled: input.value !== ""
		});
	}
	return JSON.stringify(out);
})()`, jsStr(loc.GridRow), jsStr(loc.GridInput), jsStr(loc.RowKeyAttr))
}

// writeCellScript sets the input through the native value setter so the
// framework's own change tracking observes the write, then fires the event
// sequence a real keyboard entry would produce. An already populated cell
// is reported, not overwritten.
func writeCellScript(loc types.Locators, row visibleRow, text string) string {
	return fmt.Sprintf(`/*write*/(function() {
	var rows = document.querySelectorAll(%s);
	var row = null;
	var key = %s;
	if (key !== "") {
		for (var i = 0; i < rows.length; i++) {
			if (rows[i].getAttribute(%s) === key) { row = rows[i]; break; }
		}
	} else if (%d < rows.length) {
		row = rows[%d];
	}
	if (!row) { return %q; }
	var input = row.querySelector(%s);
	if (!input) { return %q; }
	if (input.value !== "") { return %q; }
	var setter = Object.getOwnPropertyDescriptor(window.HTMLInputElement.prototype, 'value').set;
	setter.call(input, %s);
	input.dispatchEvent(new Event('input', { bubbles: true }));
	input.dispatchEvent(new Event('change', { bubbles: true }));
	input.dispatchEvent(new KeyboardEvent('keydown', { key: 'Enter', bubbles: true }));
	return %q;
})()`,
		jsStr(loc.GridRow), jsStr(row.Key), jsStr(loc.RowKeyAttr),
		row.Pos, row.Pos,
		writeOutcomeMissingRow,
		jsStr(loc.GridInput), writeOutcomeMissingInput,
		writeOutcomeOccupied,
		jsStr(text),
		writeOutcomeWritten)
}

func jsStr(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
