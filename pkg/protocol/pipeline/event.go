package pipeline

import (
	"time"

	"lol.mleku.dev/chk"

	"lore.lol/pkg/encoders/envelopes/authenvelope"
	"lore.lol/pkg/encoders/envelopes/eventenvelope"
	"lore.lol/pkg/encoders/envelopes/okenvelope"
	"lore.lol/pkg/encoders/event"
	"lore.lol/pkg/encoders/reason"
)

// EventValidator verifies the cryptographic identity of submitted and
// AUTH events: canonical id, created_at drift (submissions only; AUTH
// freshness has its own window), and the BIP-340 signature.
type EventValidator struct {
	*Line
}

func (s *EventValidator) Name() string { return "event-validator" }

func (s *EventValidator) Serve(c *C) (err error) {
	var ev *event.E
	var submission bool
	switch env := c.Msg.(type) {
	case *eventenvelope.Submission:
		ev, submission = env.T, true
	case *authenvelope.Response:
		ev = env.Event
	default:
		return nil
	}
	fail := func(r []byte) error {
		c.Queue(okenvelope.New(ev.ID, false, r))
		return Halt
	}
	if !ev.CheckID() {
		return fail(reason.Invalid.F("event ID does not match hash"))
	}
	if submission {
		now := time.Now().Unix()
		if s.Opts.CreatedAtUpperLimit > 0 &&
			ev.CreatedAt > now+int64(s.Opts.CreatedAtUpperLimit/time.Second) {
			return fail(reason.Invalid.F("invalid created_at"))
		}
		if s.Opts.CreatedAtLowerLimit > 0 &&
			ev.CreatedAt < now-int64(s.Opts.CreatedAtLowerLimit/time.Second) {
			return fail(reason.Invalid.F("invalid created_at"))
		}
	}
	var valid bool
	if valid, err = ev.Verify(); chk.D(err) || !valid {
		err = nil
		return fail(reason.Invalid.F("event signature verification failed"))
	}
	return nil
}
