// Package reqenvelope implements the subscription request:
// ["REQ", <subscription id>, <filter>...].
package reqenvelope

import (
	"io"

	"lore.lol/pkg/encoders/envelopes"
	"lore.lol/pkg/encoders/filter"
	"lore.lol/pkg/encoders/text"
	"lore.lol/pkg/utils/bufpool"
)

const L = "REQ"

type T struct {
	Subscription []byte
	Filters      filter.S
}

func New(sub []byte, ff filter.S) *T { return &T{Subscription: sub, Filters: ff} }

func (en *T) Label() string { return L }

func (en *T) Marshal(dst []byte) (b []byte) {
	return envelopes.Marshal(dst, L, func(b []byte) []byte {
		b = text.AppendQuote(b, en.Subscription, text.NostrEscape)
		if len(en.Filters) > 0 {
			b = append(b, ',')
			b = en.Filters.Marshal(b)
		}
		return b
	})
}

func (en *T) Write(w io.Writer) (err error) {
	buf := bufpool.Get()
	defer bufpool.Put(buf)
	_, err = w.Write(en.Marshal(buf))
	return
}

func (en *T) Unmarshal(b []byte) (r []byte, err error) {
	if en.Subscription, r, err = text.UnmarshalQuoted(b); err != nil {
		return
	}
	// the filters run to the closing bracket
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
