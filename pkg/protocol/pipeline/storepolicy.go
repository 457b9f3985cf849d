package pipeline

import (
	"lol.mleku.dev/chk"

	"lore.lol/pkg/encoders/envelopes/eventenvelope"
	"lore.lol/pkg/encoders/envelopes/okenvelope"
	"lore.lol/pkg/encoders/reason"
)

// StorePolicy short-circuits resubmissions of already persisted events
// with a positive duplicate acknowledgement, sparing the insert
// transaction. Deletion masks and replacement staleness are deliberately
// left to the insert itself, where they run under the same transaction
// that persists the event.
type StorePolicy struct {
	*Line
}

func (s *StorePolicy) Name() string { return "store-policy" }

func (s *StorePolicy) Serve(c *C) (err error) {
	env, ok := c.Msg.(*eventenvelope.Submission)
	if !ok {
		return nil
	}
	var have bool
	if have, err = s.Store.HasEvent(c.T, env.T.ID); chk.E(err) {
		c.Queue(okenvelope.New(env.T.ID, false,
			reason.Error.F("could not store event")))
		return Halt
	}
	if have {
		c.Queue(okenvelope.New(env.T.ID, true,
			reason.Duplicate.F("already have this event")))
		return Halt
	}
	return nil
}
