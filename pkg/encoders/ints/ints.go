// Package ints is a fast, allocation-averse codec for the unsigned decimal
// integers that appear in nostr JSON (kinds, timestamps, limits).
package ints

import (
	"golang.org/x/exp/constraints"
	"lol.mleku.dev/errorf"
)

// T wraps a uint64 parsed from or rendered to ASCII decimal.
type T struct {
	N uint64
}

func New[V constraints.Integer](n V) *T { return &T{N: uint64(n)} }

func (n *T) Uint64() uint64 { return n.N }
func (n *T) Uint16() uint16 { return uint16(n.N) }
func (n *T) Int64() int64   { return int64(n.N) }
func (n *T) Uint() uint     { return uint(n.N) }

// Marshal appends the decimal rendering of the value to dst.
func (n *T) Marshal(dst []byte) (b []byte) {
	b = dst
	if n.N == 0 {
		return append(b, '0')
	}
	var digits [20]byte
	i := len(digits)
	for v := n.N; v > 0; v /= 10 {
		i--
		digits[i] = byte('0' + v%10)
	}
	return append(b, digits[i:]...)
}

// Unmarshal parses a run of leading decimal digits from b, returning the
// remainder after the last digit.
func (n *T) Unmarshal(b []byte) (r []byte, err error) {
	r = b
	if len(r) == 0 {
		err = errorf.E("ints: empty input")
		return
	}
	if r[0] < '0' || r[0] > '9' {
		err = errorf.E("ints: not a digit: '%c'", r[0])
		return
	}
	n.N = 0
	for len(r) > 0 && r[0] >= '0' && r[0] <= '9' {
		n.N = n.N*10 + uint64(r[0]-'0')
		r = r[1:]
	}
	return
}
