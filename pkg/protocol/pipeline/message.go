package pipeline

import (
	"lore.lol/pkg/encoders/envelopes/closedenvelope"
	"lore.lol/pkg/encoders/envelopes/closeenvelope"
	"lore.lol/pkg/encoders/envelopes/countenvelope"
	"lore.lol/pkg/encoders/envelopes/reqenvelope"
	"lore.lol/pkg/encoders/filter"
	"lore.lol/pkg/encoders/reason"
)

// MessageValidator checks message-level constraints: subscription id
// shape, filter presence, subscription budget, and clamps filter limits
// to the relay's defaults.
type MessageValidator struct {
	*Line
}

func (s *MessageValidator) Name() string { return "message-validator" }

func (s *MessageValidator) checkSub(c *C, sub []byte, ff filter.S) (err error) {
	if len(sub) == 0 {
		return ErrInvalidFormat
	}
	if s.Opts.MaxSubidLength > 0 && len(sub) > s.Opts.MaxSubidLength {
		c.Queue(closedenvelope.New(sub,
			reason.Restricted.F("subscription id too long")))
		return Halt
	}
	if len(ff) == 0 {
		c.Queue(closedenvelope.New(sub,
			reason.Invalid.F("no filters specified")))
		return Halt
	}
	if s.Opts.MaxSubscriptions > 0 &&
		s.Registry.CountFor(c.Listener) >= s.Opts.MaxSubscriptions {
		c.Queue(closedenvelope.New(sub,
			reason.Restricted.F("too many subscriptions")))
		return Halt
	}
	for _, f := range ff {
		if f.Limit == nil {
			l := s.Opts.DefaultLimit
			f.Limit = &l
		} else if s.Opts.MaxLimit > 0 && *f.Limit > s.Opts.MaxLimit {
			l := s.Opts.MaxLimit
			f.Limit = &l
		}
	}
	return nil
}

func (s *MessageValidator) Serve(c *C) (err error) {
	switch env := c.Msg.(type) {
	case *reqenvelope.T:
		return s.checkSub(c, env.Subscription, env.Filters)
	case *countenvelope.Request:
		return s.checkSub(c, env.Subscription, env.Filters)
	case *closeenvelope.T:
		if len(env.Subscription) == 0 {
			return ErrInvalidFormat
		}
	}
	return nil
}
