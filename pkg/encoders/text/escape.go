// Package text implements the NIP-01 flavor of JSON string handling: a
// minimal escape set on the way out, and a strict unescaper that
// distinguishes escapes outside that set from raw control characters, so
// callers can report each as its own protocol error.
package text

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"
)

var (
	// ErrUnsupportedEscape marks a backslash escape outside the JSON set,
	// or a \u escape that decodes to a disallowed code point.
	ErrUnsupportedEscape = errors.New("unsupported JSON escape")
	// ErrUnsupportedLiteral marks a raw control character (0x00-0x1f)
	// embedded unescaped in a string.
	ErrUnsupportedLiteral = errors.New("unsupported JSON literal control")
)

// NostrEscape appends src to dst with the canonical escaping: quote,
// backslash, and the named control escapes; remaining control characters
// become \uXXXX. Everything else passes through byte for byte.
func NostrEscape(dst, src []byte) []byte {
	for _, c := range src {
		switch {
		case c == '"':
			dst = append(dst, '\\', '"')
		case c == '\\':
			dst = append(dst, '\\', '\\')
		case c == '\n':
			dst = append(dst, '\\', 'n')
		case c == '\r':
			dst = append(dst, '\\', 'r')
		case c == '\t':
			dst = append(dst, '\\', 't')
		case c == '\b':
			dst = append(dst, '\\', 'b')
		case c == '\f':
			dst = append(dst, '\\', 'f')
		case c < 0x20:
			const hx = "0123456789abcdef"
			dst = append(dst, '\\', 'u', '0', '0', hx[c>>4], hx[c&0xf])
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

func hexVal(c byte) (v byte, ok bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return
}

func readU(b []byte) (r rune, ok bool) {
	if len(b) < 4 {
		return
	}
	for i := 0; i < 4; i++ {
		v, valid := hexVal(b[i])
		if !valid {
			return
		}
		r = r<<4 | rune(v)
	}
	return r, true
}

// unescape decodes the contents of a JSON string (between the quotes),
// appending to dst, enforcing the strict escape rules.
func unescape(dst, src []byte) (b []byte, err error) {
	b = dst
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c < 0x20 {
			err = ErrUnsupportedLiteral
			return
		}
		if c != '\\' {
			b = append(b, c)
			continue
		}
		i++
		if i >= len(src) {
			err = ErrUnsupportedEscape
			return
		}
		switch src[i] {
		case '"':
			b = append(b, '"')
		case '\\':
			b = append(b, '\\')
		case '/':
			b = append(b, '/')
		case 'n':
			b = append(b, '\n')
		case 'r':
			b = append(b, '\r')
		case 't':
			b = append(b, '\t')
		case 'b':
			b = append(b, '\b')
		case 'f':
			b = append(b, '\f')
		case 'u':
			r, ok := readU(src[i+1:])
			if !ok {
				err = ErrUnsupportedEscape
				return
			}
			i += 4
			if utf16.IsSurrogate(r) {
				if i+6 <= len(src)-1 && src[i+1] == '\\' && src[i+2] == 'u' {
					if r2, ok2 := readU(src[i+3:]); ok2 {
						if dec := utf16.DecodeRune(r, r2); dec != utf8.RuneError {
							r = dec
							i += 6
						}
					}
				}
				if utf16.IsSurrogate(r) {
					r = utf8.RuneError
				}
			}
			var buf [utf8.UTFMax]byte
			n := utf8.EncodeRune(buf[:], r)
			b = append(b, buf[:n]...)
		default:
			err = ErrUnsupportedEscape
			return
		}
	}
	return
}

// NostrUnescape decodes escapes in place of a fresh buffer, without the
// strict checks; used where the bytes were already validated.
func NostrUnescape(src []byte) (b []byte) {
	b, _ = unescape(nil, src)
	return
}
