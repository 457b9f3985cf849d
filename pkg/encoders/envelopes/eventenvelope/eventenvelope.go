// Package eventenvelope implements both directions of the EVENT envelope:
// Submission from a client (["EVENT", <event>]) and Result to a client
// (["EVENT", <subscription id>, <event>]).
package eventenvelope

import (
	"io"

	"lore.lol/pkg/encoders/envelopes"
	"lore.lol/pkg/encoders/event"
	"lore.lol/pkg/encoders/text"
	"lore.lol/pkg/utils/bufpool"
)

const L = "EVENT"

// Submission is a client-submitted event.
type Submission struct {
	T *event.E
}

func NewSubmission() *Submission { return &Submission{T: event.New()} }

func NewSubmissionWith(ev *event.E) *Submission { return &Submission{T: ev} }

func (en *Submission) Label() string { return L }

func (en *Submission) Marshal(dst []byte) (b []byte) {
	return envelopes.Marshal(dst, L, en.T.Marshal)
}

func (en *Submission) Write(w io.Writer) (err error) {
	buf := bufpool.Get()
	defer bufpool.Put(buf)
	_, err = w.Write(en.Marshal(buf))
	return
}

func (en *Submission) Unmarshal(b []byte) (r []byte, err error) {
	if en.T == nil {
		en.T = event.New()
	}
	if r, err = en.T.Unmarshal(b); err != nil {
		return
	}
	r, err = envelopes.SkipToTheEnd(r)
	return
}

// Result is a stored or live event delivered on a subscription.
type Result struct {
	Subscription []byte
	Event        *event.E
}

func NewResult() *Result { return &Result{Event: event.New()} }

func NewResultWith(sub []byte, ev *event.E) *Result {
	return &Result{Subscription: sub, Event: ev}
}

func (en *Result) Label() string { return L }

func (en *Result) Marshal(dst []byte) (b []byte) {
	return envelopes.Marshal(dst, L, func(b []byte) []byte {
		b = text.AppendQuote(b, en.Subscription, text.NostrEscape)
		b = append(b, ',')
		b = en.Event.Marshal(b)
		return b
	})
}

func (en *Result) Write(w io.Writer) (err error) {
	buf := bufpool.Get()
	defer bufpool.Put(buf)
	_, err = w.Write(en.Marshal(buf))
	return
}

func (en *Result) Unmarshal(b []byte) (r []byte, err error) {
	if en.Subscription, r, err = text.UnmarshalQuoted(b); err != nil {
		return
	}
	if r, err = text.Comma(r); err != nil {
		return
	}
	if en.Event == nil {
		en.Event = event.New()
	}
	if r, err = en.Event.Unmarshal(r); err != nil {
		return
	}
	r, err = envelopes.SkipToTheEnd(r)
	return
}
