package tag

import (
	"lol.mleku.dev/errorf"
	"lore.lol/pkg/utils"
)

// S is a tag list.
type S struct {
	T []*T
}

func NewS(tags ...*T) *S { return &S{T: tags} }

func (s *S) Len() int {
	if s == nil {
		return 0
	}
	return len(s.T)
}

func (s *S) Append(t *T) { s.T = append(s.T, t) }

// GetFirst returns the first tag with the given key, or nil.
func (s *S) GetFirst(key []byte) *T {
	if s == nil {
		return nil
	}
	for _, t := range s.T {
		if utils.FastEqual(t.Key(), key) {
			return t
		}
	}
	return nil
}

// GetAll returns every tag with the given key.
func (s *S) GetAll(key []byte) (tags []*T) {
	if s == nil {
		return
	}
	for _, t := range s.T {
		if utils.FastEqual(t.Key(), key) {
			tags = append(tags, t)
		}
	}
	return
}

// ContainsAny reports whether any tag with the given key carries one of
// the values.
func (s *S) ContainsAny(key []byte, values [][]byte) bool {
	if s == nil {
		return false
	}
	for _, t := range s.T {
		if !utils.FastEqual(t.Key(), key) {
			continue
		}
		for _, v := range values {
			if utils.FastEqual(t.Value(), v) {
				return true
			}
		}
	}
	return false
}

// Marshal appends the tag list as a JSON array of arrays.
func (s *S) Marshal(dst []byte) (b []byte) {
	b = append(dst, '[')
	for i, t := range s.T {
		if i > 0 {
			b = append(b, ',')
		}
		b = t.Marshal(b)
	}
	b = append(b, ']')
	return
}

// Unmarshal parses a JSON array of string arrays from b.
func (s *S) Unmarshal(b []byte) (r []byte, err error) {
	r = b
	for len(r) > 0 {
		switch r[0] {
		case ' ', '\t', '\n', '\r':
			r = r[1:]
		case '[':
			r = r[1:]
			goto elements
		default:
			err = errorf.E("expected '[', got %q", r[0])
			return
		}
	}
	err = errorf.E("empty tag list input")
	return
elements:
	for len(r) > 0 {
		switch r[0] {
		case ' ', '\t', '\n', '\r', ',':
			r = r[1:]
		case ']':
			r = r[1:]
			return
		case '[':
			t := &T{}
			if r, err = t.Unmarshal(r); err != nil {
				return
			}
			s.T = append(s.T, t)
		default:
			err = errorf.E("expected tag array, got %q", r[0])
			return
		}
	}
	err = errorf.E("unterminated tag list")
	return
}
