// Package closedenvelope implements the relay-side subscription
// termination: ["CLOSED", <subscription id>, <reason>].
package closedenvelope

import (
	"io"

	"lore.lol/pkg/encoders/envelopes"
	"lore.lol/pkg/encoders/text"
	"lore.lol/pkg/utils/bufpool"
)

const L = "CLOSED"

type T struct {
	Subscription []byte
	Reason       []byte
}

func New(sub, reason []byte) *T { return &T{Subscription: sub, Reason: reason} }

func (en *T) Label() string { return L }

func (en *T) Marshal(dst []byte) (b []byte) {
	return envelopes.Marshal(dst, L, func(b []byte) []byte {
		b = text.AppendQuote(b, en.Subscription, text.NostrEscape)
		b = append(b, ',')
		b = text.AppendQuote(b, en.Reason, text.NostrEscape)
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
	if r, err = text.Comma(r); err != nil {
		return
	}
	if en.Reason, r, err = text.UnmarshalQuoted(r); err != nil {
		return
	}
	r, err = envelopes.SkipToTheEnd(r)
	return
}
