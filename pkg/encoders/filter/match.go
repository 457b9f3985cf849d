package filter

import (
	"bytes"

	"lore.lol/pkg/encoders/event"
	"lore.lol/pkg/encoders/hex"
)

func matchHex(entries [][]byte, raw []byte) bool {
	h := []byte(hex.Enc(raw))
	for _, e := range entries {
		if len(e) <= len(h) && bytes.HasPrefix(h, e) {
			return true
		}
	}
	return false
}

// Matches reports whether the event satisfies every active clause of the
// filter. Ids and authors entries match by hex prefix.
func (f *F) Matches(ev *event.E) bool {
	if ev == nil {
		return false
	}
	if f.Ids.Len() > 0 && !matchHex(f.Ids.T, ev.ID) {
		return false
	}
	if f.Authors.Len() > 0 && !matchHex(f.Authors.T, ev.Pubkey) {
		return false
	}
	if f.Kinds.Len() > 0 && !f.Kinds.Contains(ev.Kind) {
		return false
	}
	if f.Since != 0 && ev.CreatedAt < f.Since {
		return false
	}
	if f.Until != 0 && ev.CreatedAt > f.Until {
		return false
	}
	if f.Tags != nil {
		for _, t := range f.Tags.T {
			if t.Len() < 2 {
				continue
			}
			// strip the '#' to get the event tag key
			if !ev.Tags.ContainsAny(t.Key()[1:], t.T[1:]) {
				return false
			}
		}
	}
	if len(f.Search) > 0 {
		if !searchMatch(f.Search, ev.Content) {
			return false
		}
	}
	return true
}

// Tokenize sanitizes a search query: lowercase, whitespace split, with
// extension tokens containing ':' dropped. Single-character tokens are
// dropped too, matching the word index, which only records words of two
// or more characters. An empty result means the search clause is inert.
func Tokenize(q []byte) (tokens [][]byte) {
	lower := bytes.ToLower(q)
	for _, w := range bytes.Fields(lower) {
		if bytes.ContainsRune(w, ':') {
			continue
		}
		w = bytes.Trim(w, `"'`)
		if len(w) <= 1 {
			continue
		}
		tokens = append(tokens, w)
	}
	return
}

func searchMatch(q, content []byte) bool {
	tokens := Tokenize(q)
	if len(tokens) == 0 {
		return true
	}
	lower := bytes.ToLower(content)
	for _, t := range tokens {
		if !bytes.Contains(lower, t) {
			return false
		}
	}
	return true
}
