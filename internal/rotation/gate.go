package rotation

// ShouldApply reports whether a selected candidate may be applied.
//
// With alwaysChange disabled every candidate passes. Otherwise the candidate must differ
// from the last applied path, unless its bucket has at most one image; a single-image
// bucket would never produce anything else.
func ShouldApply(alwaysChange bool, candidate, last string, candidates int) bool {
	if !alwaysChange || candidates <= 1 {
		return true
	}
	return candidate != last
}
