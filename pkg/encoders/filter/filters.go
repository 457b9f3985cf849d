package filter

import (
	"lol.mleku.dev/errorf"

	"lore.lol/pkg/encoders/event"
)

// S is the filter list of a REQ or COUNT.
type S []*F

// Match reports whether any filter in the list matches the event.
func (s S) Match(ev *event.E) bool {
	for _, f := range s {
		if f.Matches(ev) {
			return true
		}
	}
	return false
}

// PureIdLookup reports whether every filter selects by ids alone.
func (s S) PureIdLookup() bool {
	if len(s) == 0 {
		return false
	}
	for _, f := range s {
		if !f.PureIdLookup() {
			return false
		}
	}
	return true
}

// Limit returns the smallest declared limit across the filters, with
// present reporting whether any filter declared one.
func (s S) Limit() (limit uint, present bool) {
	for _, f := range s {
		if f.Limit == nil {
			continue
		}
		if !present || *f.Limit < limit {
			limit = *f.Limit
			present = true
		}
	}
	return
}

// Marshal appends the filters as consecutive JSON objects separated by
// commas, as they appear inside a REQ envelope.
func (s S) Marshal(dst []byte) (b []byte) {
	b = dst
	for i, f := range s {
		if i > 0 {
			b = append(b, ',')
		}
		b = f.Marshal(b)
	}
	return
}

// UnmarshalSequence parses comma-separated filter objects from b until a
// closing ']' is seen; the ']' is not consumed.
func UnmarshalSequence(b []byte) (s S, rem []byte, err error) {
	rem = b
	for {
		rem = skipWs(rem)
		if len(rem) == 0 {
			err = errorf.E("filter: unterminated sequence")
			return
		}
		switch rem[0] {
		case ',':
			rem = rem[1:]
		case ']':
			return
		case '{':
			f := New()
			if rem, err = f.Unmarshal(rem); err != nil {
				return
			}
			s = append(s, f)
		default:
			err = errorf.E("filter: expected '{', got %q", rem[0])
			return
		}
	}
}
