package text

import (
	"lol.mleku.dev/errorf"

	"lore.lol/pkg/encoders/hex"
)

// JSONKey appends `"key":` to dst.
func JSONKey(dst []byte, key string) (b []byte) {
	b = append(dst, '"')
	b = append(b, key...)
	b = append(b, '"', ':')
	return
}

// AppendQuote appends src to dst wrapped in double quotes, transformed by
// enc (pass NostrEscape, hex.EncAppend, or nil for verbatim).
func AppendQuote(dst, src []byte, enc func(dst, src []byte) []byte) (b []byte) {
	b = append(dst, '"')
	if enc != nil {
		b = enc(b, src)
	} else {
		b = append(b, src...)
	}
	b = append(b, '"')
	return
}

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

// UnmarshalQuoted parses a leading JSON string from b, returning the
// unescaped content and the remainder after the closing quote. Escape
// violations surface as ErrUnsupportedEscape / ErrUnsupportedLiteral.
func UnmarshalQuoted(b []byte) (content, rem []byte, err error) {
	rem = skipWs(b)
	if len(rem) == 0 || rem[0] != '"' {
		err = errorf.E("expected quote, got %q", firstByte(rem))
		return
	}
	rem = rem[1:]
	for i := 0; i < len(rem); i++ {
		switch rem[i] {
		case '\\':
			i++
		case '"':
			if content, err = unescape(nil, rem[:i]); err != nil {
				return
			}
			rem = rem[i+1:]
			return
		}
	}
	err = errorf.E("unterminated string")
	return
}

// UnmarshalHex parses a quoted hex string and decodes it to bytes.
func UnmarshalHex(b []byte) (decoded, rem []byte, err error) {
	var content []byte
	if content, rem, err = UnmarshalQuoted(b); err != nil {
		return
	}
	if decoded, err = hex.DecAppend(nil, content); err != nil {
		return
	}
	return
}

// UnmarshalHexArray parses a JSON array of quoted hex strings, each
// decoding to exactly size bytes.
func UnmarshalHexArray(b []byte, size int) (decoded [][]byte, rem []byte, err error) {
	if rem, err = openBracket(b); err != nil {
		return
	}
	for {
		rem = skipWs(rem)
		if len(rem) > 0 && rem[0] == ']' {
			rem = rem[1:]
			return
		}
		var d []byte
		if d, rem, err = UnmarshalHex(rem); err != nil {
			return
		}
		if len(d) != size {
			err = errorf.E("hex element is %d bytes, need %d", len(d), size)
			return
		}
		decoded = append(decoded, d)
		if rem, err = commaOrClose(rem); err != nil {
			return
		}
		if rem == nil {
			return
		}
		if rem[0] == ']' {
			rem = rem[1:]
			return
		}
	}
}

// UnmarshalStringArray parses a JSON array of strings.
func UnmarshalStringArray(b []byte) (fields [][]byte, rem []byte, err error) {
	if rem, err = openBracket(b); err != nil {
		return
	}
	for {
		rem = skipWs(rem)
		if len(rem) > 0 && rem[0] == ']' {
			rem = rem[1:]
			return
		}
		var f []byte
		if f, rem, err = UnmarshalQuoted(rem); err != nil {
			return
		}
		fields = append(fields, f)
		rem = skipWs(rem)
		if len(rem) == 0 {
			err = errorf.E("unterminated array")
			return
		}
		switch rem[0] {
		case ',':
			rem = rem[1:]
		case ']':
			rem = rem[1:]
			return
		default:
			err = errorf.E("expected ',' or ']', got %q", rem[0])
			return
		}
	}
}

// MarshalHexArray appends a JSON array of quoted hex encodings of each
// element to dst.
func MarshalHexArray(dst []byte, src [][]byte) (b []byte) {
	b = append(dst, '[')
	for i, s := range src {
		if i > 0 {
			b = append(b, ',')
		}
		b = AppendQuote(b, s, hex.EncAppend)
	}
	b = append(b, ']')
	return
}

// Comma consumes an expected comma (and whitespace) from the front of b.
func Comma(b []byte) (rem []byte, err error) {
	rem = skipWs(b)
	if len(rem) == 0 || rem[0] != ',' {
		err = errorf.E("expected comma, got %q", firstByte(rem))
		return
	}
	rem = rem[1:]
	return
}

func openBracket(b []byte) (rem []byte, err error) {
	rem = skipWs(b)
	if len(rem) == 0 || rem[0] != '[' {
		err = errorf.E("expected '[', got %q", firstByte(rem))
		return
	}
	rem = rem[1:]
	return
}

func commaOrClose(b []byte) (rem []byte, err error) {
	rem = skipWs(b)
	if len(rem) == 0 {
		err = errorf.E("unterminated array")
		return
	}
	switch rem[0] {
	case ',':
		rem = rem[1:]
		rem = skipWs(rem)
		return
	case ']':
		return
	}
	err = errorf.E("expected ',' or ']', got %q", rem[0])
	return
}

func firstByte(b []byte) byte {
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
