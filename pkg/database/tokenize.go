package database

// contentWords extracts the unique lowercase words of an event's content
// for the word index. Single characters are skipped.
func contentWords(content []byte) (words [][]byte) {
	seen := map[string]struct{}{}
	var w []byte
	flush := func() {
		if len(w) > 1 {
			if _, ok := seen[string(w)]; !ok {
				seen[string(w)] = struct{}{}
				words = append(words, append([]byte(nil), w...))
			}
		}
		w = w[:0]
	}
	for _, c := range content {
		switch {
		case c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			w = append(w, c)
		case c >= 'A' && c <= 'Z':
			w = append(w, c+('a'-'A'))
		case c >= 0x80:
			w = append(w, c)
		default:
			flush()
		}
	}
	flush()
	return
}
