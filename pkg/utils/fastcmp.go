package utils

// FastEqual compares two byte slices without the preliminaries of
// bytes.Equal; the hot paths here compare short, equal-length ids and
// pubkeys.
func FastEqual(a, b []byte) (same bool) {
	if len(a) != len(b) {
		return
	}
	for i, v := range a {
		if v != b[i] {
			return
		}
	}
	return true
}
