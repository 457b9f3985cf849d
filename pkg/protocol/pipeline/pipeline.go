// Package pipeline processes each inbound frame through an ordered list
// of validation stages. A stage either passes the frame along, possibly
// queueing reply frames, or halts the run with an error. Finalization
// writes the queued frames, or renders the halt reason as a NOTICE from a
// stable vocabulary.
package pipeline

import (
	"context"
	"time"

	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"

	"lore.lol/pkg/app/relay/publish"
	"lore.lol/pkg/encoders/envelopes/noticeenvelope"
	"lore.lol/pkg/interfaces/codec"
	"lore.lol/pkg/interfaces/listener"
	"lore.lol/pkg/interfaces/store"
)

// Options carries relay policy knobs into the stages.
type Options struct {
	ServiceURL          string
	AuthRequired        bool
	Whitelist           [][]byte
	Denylist            [][]byte
	MaxMessageLength    int
	MaxSubscriptions    int
	MaxSubidLength      int
	MaxContentLength    int
	MaxEventTags        int
	MinPowDifficulty    int
	MinPrefixLength     int
	CreatedAtLowerLimit time.Duration
	CreatedAtUpperLimit time.Duration
	DefaultLimit        uint
	MaxLimit            uint
}

// PubkeyAllowed applies the whitelist or denylist to an author pubkey.
func (o *Options) PubkeyAllowed(pk []byte) bool {
	if len(o.Whitelist) > 0 {
		for _, w := range o.Whitelist {
			if string(w) == string(pk) {
				return true
			}
		}
		return false
	}
	for _, d := range o.Denylist {
		if string(d) == string(pk) {
			return false
		}
	}
	return true
}

// C is the per-frame context threaded through the stages.
type C struct {
	T        context.Context
	Raw      []byte
	Listener listener.I
	// Msg holds the parsed envelope once ProtocolValidator has run.
	Msg codec.Envelope
	// Replies are frames queued for the client, written at finalization
	// in order.
	Replies [][]byte
}

// Queue marshals an envelope onto the reply list.
func (c *C) Queue(env codec.Envelope) {
	c.Replies = append(c.Replies, env.Marshal(nil))
}

// Stage is one step of the pipeline.
type Stage interface {
	Name() string
	Serve(c *C) (err error)
}

// Line is a configured pipeline bound to a store and the subscription
// registry.
type Line struct {
	Stages   []Stage
	Store    store.I
	Registry *publish.P
	Opts     *Options
}

// New assembles the standard stage order.
func New(sto store.I, registry *publish.P, opts *Options) (l *Line) {
	l = &Line{Store: sto, Registry: registry, Opts: opts}
	l.Stages = []Stage{
		&ProtocolValidator{l},
		&AuthEnforcer{l},
		&MessageValidator{l},
		&EventValidator{l},
		&RelayPolicyValidator{l},
		&StorePolicy{l},
		&MessageHandler{l},
	}
	return
}

// Handle runs the frame through the stages and finalizes: a halt with
// queued frames flushes them, a halt without any renders the reason as a
// NOTICE, and a clean run flushes whatever the stages queued.
func (l *Line) Handle(c *C) {
	var err error
	for _, s := range l.Stages {
		if err = s.Serve(c); err != nil {
			if err != Halt {
				log.D.F("%s from %s halted at %s: %v",
					label(c), c.Listener.Remote(), s.Name(), err)
			}
			break
		}
	}
	if err != nil && len(c.Replies) == 0 {
		n := noticeenvelope.New(Notice(err))
		chk.E(n.Write(c.Listener))
		return
	}
	for _, b := range c.Replies {
		if _, err = c.Listener.Write(b); chk.E(err) {
			return
		}
	}
}

func label(c *C) string {
	if c.Msg == nil {
		return "frame"
	}
	return c.Msg.Label()
}
