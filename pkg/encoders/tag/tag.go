// Package tag implements the event tag list: a tag is an array of strings
// whose first element is the key, and a tag list is an ordered collection
// of tags.
package tag

import (
	"lore.lol/pkg/encoders/text"
	"lore.lol/pkg/utils"
)

// T is a single tag: key, value, and any further fields.
type T struct {
	T [][]byte
}

// New builds a tag from string or []byte fields.
func New[V string | []byte](fields ...V) (t *T) {
	t = &T{T: make([][]byte, len(fields))}
	for i, f := range fields {
		t.T[i] = []byte(f)
	}
	return
}

// NewFromBytesSlice wraps existing fields without copying.
func NewFromBytesSlice(fields ...[]byte) (t *T) { return &T{T: fields} }

func (t *T) Len() int {
	if t == nil {
		return 0
	}
	return len(t.T)
}

// Key returns the first field, or nil.
func (t *T) Key() []byte {
	if t.Len() < 1 {
		return nil
	}
	return t.T[0]
}

// Value returns the second field, or nil.
func (t *T) Value() []byte {
	if t.Len() < 2 {
		return nil
	}
	return t.T[1]
}

// Relay returns the third field, by convention a relay hint.
func (t *T) Relay() []byte {
	if t.Len() < 3 {
		return nil
	}
	return t.T[2]
}

// Contains reports whether any field beyond the key equals v.
func (t *T) Contains(v []byte) bool {
	if t == nil {
		return false
	}
	for i := 1; i < len(t.T); i++ {
		if utils.FastEqual(t.T[i], v) {
			return true
		}
	}
	return false
}

// Marshal appends the tag as a JSON array of escaped strings.
func (t *T) Marshal(dst []byte) (b []byte) {
	b = append(dst, '[')
	for i, f := range t.T {
		if i > 0 {
			b = append(b, ',')
		}
		b = text.AppendQuote(b, f, text.NostrEscape)
	}
	b = append(b, ']')
	return
}

// Unmarshal parses a JSON string array from b.
func (t *T) Unmarshal(b []byte) (r []byte, err error) {
	var fields [][]byte
	if fields, r, err = text.UnmarshalStringArray(b); err != nil {
		return
	}
	t.T = fields
	return
}
