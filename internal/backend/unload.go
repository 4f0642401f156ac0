package backend

// UnloadCandidate decides which preloaded image, if any, can be released
// after tail[len(tail)-1] has been displayed.
//
// With more than two entries, the image three positions back from the current
// one is unloaded unless it is the current image. The entry directly before
// the current one stays loaded so "previous" does not need a fresh preload.
func UnloadCandidate(tail []string) (string, bool) {
	n := len(tail)
	if n <= 2 {
		return "", false
	}
	current := tail[n-1]
	old := tail[n-3]
	if old == current {
		return "", false
	}
	return old, true
}
