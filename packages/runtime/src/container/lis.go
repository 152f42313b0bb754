package container

// longestIncreasing returns a longest subsequence of sources whose output
// indices increase. Ties keep the earliest candidate.
func longestIncreasing(sources []*Source) []*Source {
	if len(sources) == 0 {
		return nil
	}
	// tails[k] is the position in sources of the smallest tail of an
	// increasing run of length k+1
	tails := make([]int, 0, len(sources))
	prev := make([]int, len(sources))
	for i, s := range sources {
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if sources[tails[mid]].index < s.index {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			prev[i] = tails[lo-1]
		} else {
			prev[i] = -1
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}

	out := make([]*Source, len(tails))
	for i, k := len(tails)-1, tails[len(tails)-1]; i >= 0; i, k = i-1, prev[k] {
		out[i] = sources[k]
	}
	return out
}
