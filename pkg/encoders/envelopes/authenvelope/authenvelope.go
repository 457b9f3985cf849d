// Package authenvelope implements NIP-42 authentication: the relay's
// Challenge (["AUTH", <challenge string>]) and the client's Response
// (["AUTH", <signed kind 22242 event>]).
package authenvelope

import (
	"io"

	"lore.lol/pkg/encoders/envelopes"
	"lore.lol/pkg/encoders/event"
	"lore.lol/pkg/encoders/text"
	"lore.lol/pkg/utils/bufpool"
)

const L = "AUTH"

type Challenge struct {
	Challenge []byte
}

func NewChallenge(c []byte) *Challenge { return &Challenge{Challenge: c} }

func (en *Challenge) Label() string { return L }

func (en *Challenge) Marshal(dst []byte) (b []byte) {
	return envelopes.Marshal(dst, L, func(b []byte) []byte {
		return text.AppendQuote(b, en.Challenge, text.NostrEscape)
	})
}

func (en *Challenge) Write(w io.Writer) (err error) {
	buf := bufpool.Get()
	defer bufpool.Put(buf)
	_, err = w.Write(en.Marshal(buf))
	return
}

func (en *Challenge) Unmarshal(b []byte) (r []byte, err error) {
	if en.Challenge, r, err = text.UnmarshalQuoted(b); err != nil {
		return
	}
	r, err = envelopes.SkipToTheEnd(r)
	return
}

type Response struct {
	Event *event.E
}

func NewResponse(ev *event.E) *Response { return &Response{Event: ev} }

func (en *Response) Label() string { return L }

func (en *Response) Marshal(dst []byte) (b []byte) {
	return envelopes.Marshal(dst, L, en.Event.Marshal)
}

func (en *Response) Write(w io.Writer) (err error) {
	buf := bufpool.Get()
	defer bufpool.Put(buf)
	_, err = w.Write(en.Marshal(buf))
	return
}

func (en *Response) Unmarshal(b []byte) (r []byte, err error) {
	if en.Event == nil {
		en.Event = event.New()
	}
	if r, err = en.Event.Unmarshal(b); err != nil {
		return
	}
	r, err = envelopes.SkipToTheEnd(r)
	return
}
