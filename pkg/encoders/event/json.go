package event

import (
	"bytes"

	"lol.mleku.dev/errorf"

	"lore.lol/pkg/encoders/hex"
	"lore.lol/pkg/encoders/ints"
	"lore.lol/pkg/encoders/tag"
	"lore.lol/pkg/encoders/text"
)

// Field names of the wire form.
var (
	jId        = []byte("id")
	jPubkey    = []byte("pubkey")
	jCreatedAt = []byte("created_at")
	jKind      = []byte("kind")
	jTags      = []byte("tags")
	jContent   = []byte("content")
	jSig       = []byte("sig")
)

// Marshal appends the wire JSON form of the event to dst.
func (ev *E) Marshal(dst []byte) (b []byte) {
	b = append(dst, '{')
	b = text.JSONKey(b, "id")
	b = text.AppendQuote(b, ev.ID, hex.EncAppend)
	b = append(b, ',')
	b = text.JSONKey(b, "pubkey")
	b = text.AppendQuote(b, ev.Pubkey, hex.EncAppend)
	b = append(b, ',')
	b = text.JSONKey(b, "created_at")
	b = ints.New(ev.CreatedAt).Marshal(b)
	b = append(b, ',')
	b = text.JSONKey(b, "kind")
	b = ints.New(ev.Kind).Marshal(b)
	b = append(b, ',')
	b = text.JSONKey(b, "tags")
	b = ev.Tags.Marshal(b)
	b = append(b, ',')
	b = text.JSONKey(b, "content")
	b = text.AppendQuote(b, ev.Content, text.NostrEscape)
	b = append(b, ',')
	b = text.JSONKey(b, "sig")
	b = text.AppendQuote(b, ev.Sig, hex.EncAppend)
	b = append(b, '}')
	return
}

// Serialize returns the wire JSON form in a fresh buffer.
func (ev *E) Serialize() []byte { return ev.Marshal(nil) }

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

// Unmarshal parses a JSON event object from b, accepting fields in any
// order, returning the remainder after the closing brace. String escape
// violations propagate from the text package so the caller can classify
// them.
func (ev *E) Unmarshal(b []byte) (r []byte, err error) {
	r = skipWs(b)
	if len(r) == 0 || r[0] != '{' {
		err = errorf.E("event: expected '{'")
		return
	}
	r = r[1:]
	if ev.Tags == nil {
		ev.Tags = tag.NewS()
	}
	for {
		r = skipWs(r)
		if len(r) == 0 {
			err = errorf.E("event: unterminated object")
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
			err = errorf.E("event: expected ':' after key %q", key)
			return
		}
		r = skipWs(r[1:])
		switch {
		case bytes.Equal(key, jId):
			if ev.ID, r, err = text.UnmarshalHex(r); err != nil {
				return
			}
			if len(ev.ID) != 32 {
				err = errorf.E("event: id is %d bytes, require 32", len(ev.ID))
				return
			}
		case bytes.Equal(key, jPubkey):
			if ev.Pubkey, r, err = text.UnmarshalHex(r); err != nil {
				return
			}
			if len(ev.Pubkey) != 32 {
				err = errorf.E("event: pubkey is %d bytes, require 32",
					len(ev.Pubkey))
				return
			}
		case bytes.Equal(key, jCreatedAt):
			n := ints.New(0)
			if r, err = n.Unmarshal(r); err != nil {
				return
			}
			ev.CreatedAt = n.Int64()
		case bytes.Equal(key, jKind):
			n := ints.New(0)
			if r, err = n.Unmarshal(r); err != nil {
				return
			}
			ev.Kind = n.Uint16()
		case bytes.Equal(key, jTags):
			ev.Tags = tag.NewS()
			if r, err = ev.Tags.Unmarshal(r); err != nil {
				return
			}
		case bytes.Equal(key, jContent):
			if ev.Content, r, err = text.UnmarshalQuoted(r); err != nil {
				return
			}
		case bytes.Equal(key, jSig):
			if ev.Sig, r, err = text.UnmarshalHex(r); err != nil {
				return
			}
			if len(ev.Sig) != 64 {
				err = errorf.E("event: sig is %d bytes, require 64", len(ev.Sig))
				return
			}
		default:
			err = errorf.E("event: unknown key %q", key)
			return
		}
	}
}

// NewFromJSON parses a complete event from b.
func NewFromJSON(b []byte) (ev *E, err error) {
	ev = New()
	if _, err = ev.Unmarshal(b); err != nil {
		return nil, err
	}
	return
}
