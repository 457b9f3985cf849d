// Package eoseenvelope implements the end-of-stored-events marker:
// ["EOSE", <subscription id>].
package eoseenvelope

import (
	"io"

	"lore.lol/pkg/encoders/envelopes"
	"lore.lol/pkg/encoders/text"
	"lore.lol/pkg/utils/bufpool"
)

const L = "EOSE"

type T struct {
	Subscription []byte
}

func New(sub []byte) *T { return &T{Subscription: sub} }

func (en *T) Label() string { return L }

func (en *T) Marshal(dst []byte) (b []byte) {
	return envelopes.Marshal(dst, L, func(b []byte) []byte {
		return text.AppendQuote(b, en.Subscription, text.NostrEscape)
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
	r, err = envelopes.SkipToTheEnd(r)
	return
}
