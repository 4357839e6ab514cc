package core

// ClampConfig enforces the shared configuration invariants from the spec:
// n_min >= 1, n_max >= n_min, max_results >= 1 (values <= 0 clamp to the
// package default of 10). Used at construction and on Load for all four
// engines so the invariant can never be violated, silently, per the
// InvalidConfig error kind.
func ClampConfig(nMin, nMax, maxResults int) (int, int, int) {
	if nMin < 1 {
		nMin = 1
	}
	if nMax < nMin {
		nMax = nMin
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	return nMin, nMax, maxResults
}

// CoalesceConfig resolves a Load's incoming (possibly absent, i.e. zero
// valued) config fields against the engine's current values, then clamps.
// A field counts as absent when it is <= 0, matching spec.md §4.7's "absent
// fields fall back to current values."
func CoalesceConfig(newNMin, newNMax, newMaxResults, curNMin, curNMax, curMaxResults int) (int, int, int) {
	nMin, nMax, maxResults := curNMin, curNMax, curMaxResults
	if newNMin > 0 {
		nMin = newNMin
	}
	if newNMax > 0 {
		nMax = newNMax
	}
	if newMaxResults > 0 {
		maxResults = newMaxResults
	}
	return ClampConfig(nMin, nMax, maxResults)
}
