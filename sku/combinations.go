package sku

import "sku-traverser/internal/types"

// Combinations computes the cartesian product of all dimensions' options in
// odometer order: the first dimension is the most significant digit, the
// last dimension rolls over fastest. Pure and deterministic; the result size
// is the product of the option counts.
func Combinations(dims []types.Dimension) []types.Combination {
	if len(dims) == 0 {
		return nil
	}
	total := 1
	for _, d := range dims {
		total *= len(d.Options)
	}
	if total == 0 {
		return nil
	}

	combos := make([]types.Combination, 0, total)
	idx := make([]int, len(dims))
	for {
		combo := make(types.Combination, len(dims))
		for i, d := range dims {
			combo[i] = d.Options[idx[i]]
		}
		combos = append(combos, combo)

		// Advance the odometer from the least significant (last) dimension.
		pos := len(dims) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < len(dims[pos].Options) {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			return combos
		}
	}
}

// TotalCombinations returns the size of the configuration space.
func TotalCombinations(dims []types.Dimension) int {
	if len(dims) == 0 {
		return 0
	}
	total := 1
	for _, d := range dims {
		total *= len(d.Options)
	}
	return total
}

// IDs returns the ordered option IDs of a combination, the shape used as
// the rolling lastApplied baseline for diffing.
func IDs(c types.Combination) types.SelectionState {
	ids := make(types.SelectionState, len(c))
	for i, o := range c {
		ids[i] = o.ID
	}
	return ids
}

// ReorderFront moves the combination matching the live selection to
// traversal position 0, saving one full transition at the start. When the
// selection does not map onto a known combination the order is unchanged and
// the returned baseline is nil.
func ReorderFront(combos []types.Combination, sel types.SelectionState, dims []types.Dimension) ([]types.Combination, types.SelectionState) {
	if len(sel) != len(dims) || len(dims) == 0 {
		return combos, nil
	}
	current := make(types.Combination, len(dims))
	for i, d := range dims {
		if sel[i] == "" {
			return combos, nil
		}
		found := false
		for _, o := range d.Options {
			if o.ID == sel[i] {
				current[i] = o
				found = true
				break
			}
		}
		if !found {
			return combos, nil
		}
	}

	for pos, c := range combos {
		if sameIDs(c, current) {
			if pos > 0 {
				reordered := make([]types.Combination, 0, len(combos))
				reordered = append(reordered, combos[pos])
				reordered = append(reordered, combos[:pos]...)
				reordered = append(reordered, combos[pos+1:]...)
				combos = reordered
			}
			return combos, append(types.SelectionState(nil), sel...)
		}
	}
	return combos, nil
}

func sameIDs(a, b types.Combination) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
