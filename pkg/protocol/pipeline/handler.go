package pipeline

import (
	"errors"

	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"

	"lore.lol/pkg/app/relay/publish"
	"lore.lol/pkg/encoders/envelopes/authenvelope"
	"lore.lol/pkg/encoders/envelopes/closedenvelope"
	"lore.lol/pkg/encoders/envelopes/closeenvelope"
	"lore.lol/pkg/encoders/envelopes/countenvelope"
	"lore.lol/pkg/encoders/envelopes/eoseenvelope"
	"lore.lol/pkg/encoders/envelopes/eventenvelope"
	"lore.lol/pkg/encoders/envelopes/okenvelope"
	"lore.lol/pkg/encoders/envelopes/reqenvelope"
	"lore.lol/pkg/encoders/reason"
	"lore.lol/pkg/interfaces/store"
	"lore.lol/pkg/protocol/auth"
)

// MessageHandler is the terminal stage: it executes the validated message
// against the store and the subscription registry.
type MessageHandler struct {
	*Line
}

func (s *MessageHandler) Name() string { return "message-handler" }

func (s *MessageHandler) Serve(c *C) (err error) {
	switch env := c.Msg.(type) {
	case *eventenvelope.Submission:
		return s.handleEvent(c, env)
	case *reqenvelope.T:
		return s.handleReq(c, env)
	case *countenvelope.Request:
		return s.handleCount(c, env)
	case *closeenvelope.T:
		s.Registry.Receive(&publish.W{
			Listener: c.Listener,
			Cancel:   true,
			Id:       string(env.Subscription),
		})
		return nil
	case *authenvelope.Response:
		return s.handleAuth(c, env)
	}
	return ErrUnsupportedType
}

func (s *MessageHandler) handleEvent(c *C, env *eventenvelope.Submission) (err error) {
	var res *store.Result
	if res, err = s.Store.SaveEvent(c.T, env.T); chk.E(err) {
		c.Queue(okenvelope.New(env.T.ID, false,
			reason.Error.F("could not store event")))
		return Halt
	}
	switch res.Ack {
	case store.Accepted:
		c.Queue(okenvelope.New(env.T.ID, true, nil))
		s.Registry.Deliver(env.T)
	case store.Duplicate:
		c.Queue(okenvelope.New(env.T.ID, true, res.Reason))
	case store.Rejected:
		c.Queue(okenvelope.New(env.T.ID, false, res.Reason))
	}
	return nil
}

// handleReq streams the stored matches, marks the end of them, and only
// then registers the subscription for live delivery, so EOSE always
// follows the full replay.
func (s *MessageHandler) handleReq(c *C, env *reqenvelope.T) (err error) {
	evs, qerr := s.Store.QueryEvents(c.T, env.Filters)
	if chk.E(qerr) {
		c.Queue(closedenvelope.New(env.Subscription,
			reason.Error.F("could not query events")))
		return Halt
	}
	for _, ev := range evs {
		res := eventenvelope.NewResultWith(env.Subscription, ev)
		if err = res.Write(c.Listener); chk.E(err) {
			return Halt
		}
	}
	if err = eoseenvelope.New(env.Subscription).Write(c.Listener); chk.E(err) {
		return Halt
	}
	s.Registry.Receive(&publish.W{
		Listener: c.Listener,
		Id:       string(env.Subscription),
		Filters:  env.Filters,
	})
	log.T.F("subscription %q from %s replayed %d events",
		env.Subscription, c.Listener.Remote(), len(evs))
	return nil
}

func (s *MessageHandler) handleCount(c *C, env *countenvelope.Request) (err error) {
	count, approx, qerr := s.Store.CountEvents(c.T, env.Filters)
	if chk.E(qerr) {
		c.Queue(closedenvelope.New(env.Subscription,
			reason.Error.F("could not query events")))
		return Halt
	}
	c.Queue(countenvelope.NewResponse(env.Subscription, count, approx))
	return nil
}

func (s *MessageHandler) handleAuth(c *C, env *authenvelope.Response) (err error) {
	ev := env.Event
	ok, verr := auth.Validate(ev, c.Listener.Challenge(), s.Opts.ServiceURL)
	if verr != nil || !ok {
		r := reason.AuthRequired.F("authentication failed")
		switch {
		case errors.Is(verr, auth.ErrWrongKind):
			r = reason.AuthRequired.F("invalid auth event kind")
		case errors.Is(verr, auth.ErrChallengeMismatch):
			r = reason.AuthRequired.F("challenge mismatch")
		}
		c.Queue(okenvelope.New(ev.ID, false, r))
		return Halt
	}
	c.Listener.AddAuthed(ev.Pubkey)
	log.D.F("%s authenticated as %s", c.Listener.Remote(), ev.PubHex())
	c.Queue(okenvelope.New(ev.ID, true, nil))
	return nil
}
