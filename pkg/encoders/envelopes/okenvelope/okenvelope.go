// Package okenvelope implements the OK acknowledgement for submitted
// events: ["OK", <id hex>, <bool>, <reason>].
package okenvelope

import (
	"io"

	"lol.mleku.dev/errorf"

	"lore.lol/pkg/encoders/envelopes"
	"lore.lol/pkg/encoders/hex"
	"lore.lol/pkg/encoders/text"
	"lore.lol/pkg/utils/bufpool"
)

const L = "OK"

type T struct {
	EventID []byte
	OK      bool
	Reason  []byte
}

func New(id []byte, ok bool, reason []byte) *T {
	return &T{EventID: id, OK: ok, Reason: reason}
}

func (en *T) Label() string { return L }

func (en *T) Marshal(dst []byte) (b []byte) {
	return envelopes.Marshal(dst, L, func(b []byte) []byte {
		b = text.AppendQuote(b, en.EventID, hex.EncAppend)
		b = append(b, ',')
		if en.OK {
			b = append(b, "true"...)
		} else {
			b = append(b, "false"...)
		}
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

// Unmarshal parses the payload after the label comma.
func (en *T) Unmarshal(b []byte) (r []byte, err error) {
	if en.EventID, r, err = text.UnmarshalHex(b); err != nil {
		return
	}
	if r, err = text.Comma(r); err != nil {
		return
	}
	switch {
	case len(r) >= 4 && string(r[:4]) == "true":
		en.OK = true
		r = r[4:]
	case len(r) >= 5 && string(r[:5]) == "false":
		en.OK = false
		r = r[5:]
	default:
		err = errorf.E("ok envelope: expected boolean")
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
