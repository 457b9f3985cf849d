package kind

import (
	"lore.lol/pkg/encoders/ints"
)

// S is the set of kinds in a filter.
type S struct {
	K []uint16
}

func NewS(ks ...uint16) *S { return &S{K: ks} }

func (s *S) Len() int {
	if s == nil {
		return 0
	}
	return len(s.K)
}

func (s *S) Contains(k uint16) bool {
	if s == nil {
		return false
	}
	for _, v := range s.K {
		if v == k {
			return true
		}
	}
	return false
}

// Marshal appends the kinds as a JSON array of integers.
func (s *S) Marshal(dst []byte) (b []byte) {
	b = append(dst, '[')
	for i, k := range s.K {
		if i > 0 {
			b = append(b, ',')
		}
		b = ints.New(k).Marshal(b)
	}
	b = append(b, ']')
	return
}

// Unmarshal parses a JSON array of integers from b.
func (s *S) Unmarshal(b []byte) (r []byte, err error) {
	r = b
	for len(r) > 0 && r[0] != '[' {
		r = r[1:]
	}
	if len(r) == 0 {
		return
	}
	r = r[1:]
	for len(r) > 0 {
		switch r[0] {
		case ' ', '\t', '\n', '\r', ',':
			r = r[1:]
		case ']':
			r = r[1:]
			return
		default:
			n := ints.New(0)
			if r, err = n.Unmarshal(r); err != nil {
				return
			}
			s.K = append(s.K, n.Uint16())
		}
	}
	return
}
