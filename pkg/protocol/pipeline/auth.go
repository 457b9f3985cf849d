package pipeline

import (
	"lore.lol/pkg/encoders/envelopes/closedenvelope"
	"lore.lol/pkg/encoders/envelopes/countenvelope"
	"lore.lol/pkg/encoders/envelopes/eventenvelope"
	"lore.lol/pkg/encoders/envelopes/okenvelope"
	"lore.lol/pkg/encoders/envelopes/reqenvelope"
	"lore.lol/pkg/encoders/reason"
)

// AuthEnforcer gates EVENT, REQ and COUNT behind NIP-42 when the relay
// requires authentication. AUTH and CLOSE always pass.
type AuthEnforcer struct {
	*Line
}

func (s *AuthEnforcer) Name() string { return "auth-enforcer" }

func (s *AuthEnforcer) Serve(c *C) (err error) {
	if !s.Opts.AuthRequired || c.Listener.IsAuthed() {
		return nil
	}
	switch env := c.Msg.(type) {
	case *eventenvelope.Submission:
		c.Queue(okenvelope.New(env.T.ID, false,
			reason.AuthRequired.F("please authenticate")))
		return Halt
	case *reqenvelope.T:
		c.Queue(closedenvelope.New(env.Subscription,
			reason.AuthRequired.F("please authenticate")))
		return Halt
	case *countenvelope.Request:
		c.Queue(closedenvelope.New(env.Subscription,
			reason.AuthRequired.F("please authenticate")))
		return Halt
	}
	return nil
}
