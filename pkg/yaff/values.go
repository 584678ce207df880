package yaff

// Snapshot returns an independent copy of values. A nil or empty input yields
// an empty, non-nil slice.
func Snapshot(values []any) []any {
	out := make([]any, len(values))
	copy(out, values)
	return out
}

// Unwrap folds the results of one parallel item into a single slot value:
// nothing for no results, the value itself for one, the whole list otherwise.
func Unwrap(results []any) any {
	switch len(results) {
	case 0:
		return nil
	case 1:
		return results[0]
	default:
		return Snapshot(results)
	}
}

// Merge writes the unwrapped results into values at position, growing the
// slice when needed, and returns the updated slice.
func Merge(values []any, position int, results []any) []any {
	if position < 0 {
		return values
	}
	for len(values) <= position {
		values = append(values, nil)
	}
	values[position] = Unwrap(results)
	return values
}

// DropFront removes the first value, if any.
func DropFront(values []any) []any {
	if len(values) == 0 {
		return values
	}
	return values[1:]
}
