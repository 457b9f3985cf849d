// Package hex wraps templexxx/xhex with the append-style helpers the
// encoders use. All nostr hex is lowercase.
package hex

import (
	"github.com/templexxx/xhex"
	"lol.mleku.dev/errorf"
)

// Enc encodes a byte slice to a lowercase hex string.
func Enc(b []byte) (s string) {
	return string(EncAppend(nil, b))
}

// EncAppend appends the lowercase hex encoding of src to dst.
func EncAppend(dst, src []byte) (b []byte) {
	l := len(dst)
	b = append(dst, make([]byte, len(src)*2)...)
	xhex.Encode(b[l:], src)
	return
}

// Dec decodes a hex string into a fresh byte slice.
func Dec(s string) (b []byte, err error) {
	return DecAppend(nil, []byte(s))
}

// DecAppend appends the decoded bytes of hex-encoded src to dst.
func DecAppend(dst, src []byte) (b []byte, err error) {
	if len(src)%2 != 0 {
		err = errorf.E("hex: odd length input %d", len(src))
		return
	}
	l := len(dst)
	b = append(dst, make([]byte, len(src)/2)...)
	if err = xhex.Decode(b[l:], src); err != nil {
		b = dst
		return
	}
	return
}

// DecBytes decodes hex-encoded src into dst, which must be exactly half the
// length of src.
func DecBytes(dst, src []byte) (b []byte, err error) {
	if len(src) != len(dst)*2 {
		err = errorf.E("hex: have %d chars, need %d", len(src), len(dst)*2)
		return
	}
	if err = xhex.Decode(dst, src); err != nil {
		return
	}
	b = dst
	return
}
