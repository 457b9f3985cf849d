// Package filter implements the nostr subscription filter: wire codec and
// the matching predicate shared by queries and live fan-out.
package filter

import (
	"bytes"

	"lol.mleku.dev/errorf"

	"lore.lol/pkg/encoders/ints"
	"lore.lol/pkg/encoders/kind"
	"lore.lol/pkg/encoders/tag"
	"lore.lol/pkg/encoders/text"
)

// F is a single filter. Ids and Authors hold hex strings as they appeared
// on the wire; entries shorter than 64 characters are prefixes.
type F struct {
	Ids     *tag.T
	Authors *tag.T
	Kinds   *kind.S
	// Tags holds one entry per "#x" key; each entry's key retains the '#'.
	Tags   *tag.S
	Since  int64
	Until  int64
	Search []byte
	Limit  *uint
}

func New() *F {
	return &F{
		Ids:     tag.NewFromBytesSlice(),
		Authors: tag.NewFromBytesSlice(),
		Kinds:   kind.NewS(),
		Tags:    tag.NewS(),
	}
}

// PureIdLookup reports whether the filter selects by ids alone, with no
// other clause active.
func (f *F) PureIdLookup() bool {
	return f.Ids.Len() > 0 && f.Authors.Len() == 0 && f.Kinds.Len() == 0 &&
		f.Tags.Len() == 0 && f.Since == 0 && f.Until == 0 &&
		len(f.Search) == 0
}

// ShortestPrefix returns the length in hex characters of the shortest
// ids/authors entry, or 64 when both are empty.
func (f *F) ShortestPrefix() (n int) {
	n = 64
	if f.Ids != nil {
		for _, v := range f.Ids.T {
			if len(v) < n {
				n = len(v)
			}
		}
	}
	if f.Authors != nil {
		for _, v := range f.Authors.T {
			if len(v) < n {
				n = len(v)
			}
		}
	}
	return
}

// Marshal appends the filter as a JSON object, emitting only the active
// clauses.
func (f *F) Marshal(dst []byte) (b []byte) {
	b = append(dst, '{')
	first := true
	comma := func() {
		if !first {
			b = append(b, ',')
		}
		first = false
	}
	if f.Ids.Len() > 0 {
		comma()
		b = text.JSONKey(b, "ids")
		b = marshalStrings(b, f.Ids.T)
	}
	if f.Authors.Len() > 0 {
		comma()
		b = text.JSONKey(b, "authors")
		b = marshalStrings(b, f.Authors.T)
	}
	if f.Kinds.Len() > 0 {
		comma()
		b = text.JSONKey(b, "kinds")
		b = f.Kinds.Marshal(b)
	}
	if f.Tags != nil {
		for _, t := range f.Tags.T {
			comma()
			b = text.JSONKey(b, string(t.Key()))
			b = marshalStrings(b, t.T[1:])
		}
	}
	if f.Since != 0 {
		comma()
		b = text.JSONKey(b, "since")
		b = ints.New(f.Since).Marshal(b)
	}
	if f.Until != 0 {
		comma()
		b = text.JSONKey(b, "until")
		b = ints.New(f.Until).Marshal(b)
	}
	if len(f.Search) > 0 {
		comma()
		b = text.JSONKey(b, "search")
		b = text.AppendQuote(b, f.Search, text.NostrEscape)
	}
	if f.Limit != nil {
		comma()
		b = text.JSONKey(b, "limit")
		b = ints.New(*f.Limit).Marshal(b)
	}
	b = append(b, '}')
	return
}

func marshalStrings(dst []byte, ss [][]byte) (b []byte) {
	b = append(dst, '[')
	for i, s := range ss {
		if i > 0 {
			b = append(b, ',')
		}
		b = text.AppendQuote(b, s, text.NostrEscape)
	}
	b = append(b, ']')
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

// Unmarshal parses a JSON filter object from b, returning the remainder
// after the closing brace.
func (f *F) Unmarshal(b []byte) (r []byte, err error) {
	r = skipWs(b)
	if len(r) == 0 || r[0] != '{' {
		err = errorf.E("filter: expected '{'")
		return
	}
	r = r[1:]
	if f.Ids == nil {
		f.Ids = tag.NewFromBytesSlice()
	}
	if f.Authors == nil {
		f.Authors = tag.NewFromBytesSlice()
	}
	if f.Kinds == nil {
		f.Kinds = kind.NewS()
	}
	if f.Tags == nil {
		f.Tags = tag.NewS()
	}
	for {
		r = skipWs(r)
		if len(r) == 0 {
			err = errorf.E("filter: unterminated object")
			return
		}
		if r[0] == '}' {
			r = r[1:]
			return
		}
		if r[0] == ',' {
			r = r[1:]
			continue
		}
		var key []byte
		if key, r, err = text.UnmarshalQuoted(r); err != nil {
			return
		}
		r = skipWs(r)
		if len(r) == 0 || r[0] != ':' {
			err = errorf.E("filter: expected ':' after key %q", key)
			return
		}
		r = skipWs(r[1:])
		switch {
		case bytes.Equal(key, []byte("ids")):
			if f.Ids.T, r, err = text.UnmarshalStringArray(r); err != nil {
				return
			}
		case bytes.Equal(key, []byte("authors")):
			if f.Authors.T, r, err = text.UnmarshalStringArray(r); err != nil {
				return
			}
		case bytes.Equal(key, []byte("kinds")):
			if r, err = f.Kinds.Unmarshal(r); err != nil {
				return
			}
		case bytes.Equal(key, []byte("since")):
			n := ints.New(0)
			if r, err = n.Unmarshal(r); err != nil {
				return
			}
			f.Since = n.Int64()
		case bytes.Equal(key, []byte("until")):
			n := ints.New(0)
			if r, err = n.Unmarshal(r); err != nil {
				return
			}
			f.Until = n.Int64()
		case bytes.Equal(key, []byte("limit")):
			n := ints.New(0)
			if r, err = n.Unmarshal(r); err != nil {
				return
			}
			l := n.Uint()
			f.Limit = &l
		case bytes.Equal(key, []byte("search")):
			if f.Search, r, err = text.UnmarshalQuoted(r); err != nil {
				return
			}
		case len(key) == 2 && key[0] == '#':
			var values [][]byte
			if values, r, err = text.UnmarshalStringArray(r); err != nil {
				return
			}
			entry := tag.NewFromBytesSlice(append([][]byte{key}, values...)...)
			f.Tags.Append(entry)
		default:
			err = errorf.E("filter: unknown key %q", key)
			return
		}
	}
}
