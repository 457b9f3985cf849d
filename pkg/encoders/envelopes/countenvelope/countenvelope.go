// Package countenvelope implements NIP-45 counts: the request reuses the
// REQ shape and the response carries {"count": n} with an optional
// approximate flag.
package countenvelope

import (
	"io"

	"lol.mleku.dev/errorf"

	"lore.lol/pkg/encoders/envelopes"
	"lore.lol/pkg/encoders/filter"
	"lore.lol/pkg/encoders/ints"
	"lore.lol/pkg/encoders/text"
	"lore.lol/pkg/utils/bufpool"
)

const L = "COUNT"

type Request struct {
	Subscription []byte
	Filters      filter.S
}

func NewRequest(sub []byte, ff filter.S) *Request {
	return &Request{Subscription: sub, Filters: ff}
}

func (en *Request) Label() string { return L }

func (en *Request) Marshal(dst []byte) (b []byte) {
	return envelopes.Marshal(dst, L, func(b []byte) []byte {
		b = text.AppendQuote(b, en.Subscription, text.NostrEscape)
		if len(en.Filters) > 0 {
			b = append(b, ',')
			b = en.Filters.Marshal(b)
		}
		return b
	})
}

func (en *Request) Write(w io.Writer) (err error) {
	buf := bufpool.Get()
	defer bufpool.Put(buf)
	_, err = w.Write(en.Marshal(buf))
	return
}

func (en *Request) Unmarshal(b []byte) (r []byte, err error) {
	if en.Subscription, r, err = text.UnmarshalQuoted(b); err != nil {
		return
	}
	for len(r) > 0 {
		switch r[0] {
		case ' ', '\t', '\n', '\r', ',':
			r = r[1:]
			continue
		}
		break
	}
	if en.Filters, r, err = filter.UnmarshalSequence(r); err != nil {
		return
	}
	r, err = envelopes.SkipToTheEnd(r)
	return
}

type Response struct {
	Subscription []byte
	Count        int
	Approximate  bool
}

func NewResponse(sub []byte, count int, approximate bool) *Response {
	return &Response{Subscription: sub, Count: count, Approximate: approximate}
}

func (en *Response) Label() string { return L }

func (en *Response) Marshal(dst []byte) (b []byte) {
	return envelopes.Marshal(dst, L, func(b []byte) []byte {
		b = text.AppendQuote(b, en.Subscription, text.NostrEscape)
		b = append(b, ',', '{')
		b = text.JSONKey(b, "count")
		b = ints.New(en.Count).Marshal(b)
		if en.Approximate {
			b = append(b, ',')
			b = text.JSONKey(b, "approximate")
			b = append(b, "true"...)
		}
		b = append(b, '}')
		return b
	})
}

func (en *Response) Write(w io.Writer) (err error) {
	buf := bufpool.Get()
	defer bufpool.Put(buf)
	_, err = w.Write(en.Marshal(buf))
	return
}

func (en *Response) Unmarshal(b []byte) (r []byte, err error) {
	if en.Subscription, r, err = text.UnmarshalQuoted(b); err != nil {
		return
	}
	if r, err = text.Comma(r); err != nil {
		return
	}
	for len(r) > 0 && r[0] != '{' {
		r = r[1:]
	}
	if len(r) == 0 {
		err = errorf.E("count envelope: expected object")
		return
	}
	r = r[1:]
	for {
		for len(r) > 0 {
			switch r[0] {
			case ' ', '\t', '\n', '\r', ',':
				r = r[1:]
				continue
			}
			break
		}
		if len(r) == 0 {
			err = errorf.E("count envelope: unterminated object")
			return
		}
		if r[0] == '}' {
			r = r[1:]
			break
		}
		var key []byte
		if key, r, err = text.UnmarshalQuoted(r); err != nil {
			return
		}
		for len(r) > 0 && (r[0] == ' ' || r[0] == ':') {
			r = r[1:]
		}
		switch string(key) {
		case "count":
			n := ints.New(0)
			if r, err = n.Unmarshal(r); err != nil {
				return
			}
			en.Count = int(n.Uint64())
		case "approximate":
			if len(r) >= 4 && string(r[:4]) == "true" {
				en.Approximate = true
				r = r[4:]
			} else if len(r) >= 5 && string(r[:5]) == "false" {
				en.Approximate = false
				r = r[5:]
			} else {
				err = errorf.E("count envelope: expected boolean")
				return
			}
		default:
			err = errorf.E("count envelope: unknown key %q", key)
			return
		}
	}
	r, err = envelopes.SkipToTheEnd(r)
	return
}
