// Package noticeenvelope implements the NOTICE envelope carrying
// human-readable relay messages: ["NOTICE", <message>].
package noticeenvelope

import (
	"io"

	"lore.lol/pkg/encoders/envelopes"
	"lore.lol/pkg/encoders/text"
	"lore.lol/pkg/utils/bufpool"
)

const L = "NOTICE"

type T struct {
	Message []byte
}

func New(msg []byte) *T { return &T{Message: msg} }

func (en *T) Label() string { return L }

func (en *T) Marshal(dst []byte) (b []byte) {
	return envelopes.Marshal(dst, L, func(b []byte) []byte {
		return text.AppendQuote(b, en.Message, text.NostrEscape)
	})
}

func (en *T) Write(w io.Writer) (err error) {
	buf := bufpool.Get()
	defer bufpool.Put(buf)
	_, err = w.Write(en.Marshal(buf))
	return
}

func (en *T) Unmarshal(b []byte) (r []byte, err error) {
	if en.Message, r, err = text.UnmarshalQuoted(b); err != nil {
		return
	}
	r, err = envelopes.SkipToTheEnd(r)
	return
}
