package mapping

// Bias selects which neighbour a search returns when there is no exact match.
type Bias int

const (
	// GreatestLowerBound selects the largest element less than the needle.
	GreatestLowerBound Bias = iota
	// LeastUpperBound selects the smallest element greater than the needle.
	LeastUpperBound
)

func (b Bias) String() string {
	switch b {
	case GreatestLowerBound:
		return "greatest-lower-bound"
	case LeastUpperBound:
		return "least-upper-bound"
	default:
		return "unknown-bias"
	}
}

// Search looks for the needle in a haystack sorted by compare and returns the
// index of the matching element. If there is no exact match, the neighbour
// chosen by bias is returned instead, or -1 if there is none.
//
// When several elements compare equal to the result, the lowest index among
// them is returned.
func Search[T any](needle T, haystack []T, compare func(a, b T) int, bias Bias) int {
	lo, hi := 0, len(haystack)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if compare(needle, haystack[mid]) > 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	// lo is the first element not less than the needle.
	if lo < len(haystack) && compare(needle, haystack[lo]) == 0 {
		return lo
	}

	if bias == LeastUpperBound {
		if lo == len(haystack) {
			return -1
		}
		return lo
	}
	idx := lo - 1
	if idx < 0 {
		return -1
	}
	for idx > 0 && compare(haystack[idx], haystack[idx-1]) == 0 {
		idx--
	}
	return idx
}
