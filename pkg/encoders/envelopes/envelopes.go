// Package envelopes implements the outer layer of the wire protocol: a
// JSON array whose first element is a label string. Identify peels the
// label so dispatch can hand the remainder to the right envelope codec.
package envelopes

import (
	"lol.mleku.dev/errorf"
)

func skipWs(b []byte) []byte {
	for len(b) > 0 {
		switch b[0] {
		case ' ', '\t', '\n', '\r':
			b = b[1:]
		default:
			return b
		}
	}
	return b
}

// Identify parses the label of an envelope, returning the remainder
// positioned at the first byte after the comma (or at the closing
// bracket for a bare label).
func Identify(b []byte) (label string, rem []byte, err error) {
	rem = skipWs(b)
	if len(rem) == 0 || rem[0] != '[' {
		err = errorf.E("envelope: expected '['")
		return
	}
	rem = skipWs(rem[1:])
	if len(rem) == 0 || rem[0] != '"' {
		err = errorf.E("envelope: expected label string")
		return
	}
	rem = rem[1:]
	for i := 0; i < len(rem); i++ {
		if rem[i] == '"' {
			label = string(rem[:i])
			rem = skipWs(rem[i+1:])
			if len(rem) == 0 {
				err = errorf.E("envelope: truncated after label")
				return
			}
			switch rem[0] {
			case ',':
				rem = skipWs(rem[1:])
				return
			case ']':
				return
			}
			err = errorf.E("envelope: expected ',' after label")
			return
		}
		if rem[i] < 0x20 || rem[i] == '\\' {
			err = errorf.E("envelope: malformed label")
			return
		}
	}
	err = errorf.E("envelope: unterminated label")
	return
}

// Marshal wraps a payload-marshaling function in the array envelope for
// the given label.
func Marshal(dst []byte, label string, f func(dst []byte) []byte) (b []byte) {
	b = append(dst, '[', '"')
	b = append(b, label...)
	b = append(b, '"')
	if f != nil {
		b = append(b, ',')
		b = f(b)
	}
	b = append(b, ']')
	return
}

// SkipToTheEnd consumes trailing whitespace and the closing bracket of an
// envelope.
func SkipToTheEnd(b []byte) (rem []byte, err error) {
	rem = skipWs(b)
	if len(rem) == 0 || rem[0] != ']' {
		err = errorf.E("envelope: expected ']'")
		return
	}
	rem = skipWs(rem[1:])
	return
}
