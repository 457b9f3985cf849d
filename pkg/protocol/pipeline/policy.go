package pipeline

import (
	"math/bits"

	"lore.lol/pkg/encoders/envelopes/closedenvelope"
	"lore.lol/pkg/encoders/envelopes/countenvelope"
	"lore.lol/pkg/encoders/envelopes/eventenvelope"
	"lore.lol/pkg/encoders/envelopes/okenvelope"
	"lore.lol/pkg/encoders/envelopes/reqenvelope"
	"lore.lol/pkg/encoders/event"
	"lore.lol/pkg/encoders/filter"
	"lore.lol/pkg/encoders/kind"
	"lore.lol/pkg/encoders/reason"
)

// RelayPolicyValidator applies the relay's configurable acceptance rules:
// author allow/deny lists, content and tag budgets, proof of work,
// NIP-70 protected events, gift wrap addressing, and minimum filter
// prefix lengths.
type RelayPolicyValidator struct {
	*Line
}

func (s *RelayPolicyValidator) Name() string { return "relay-policy-validator" }

// leadingZeroBits counts the NIP-13 difficulty of an event id.
func leadingZeroBits(id []byte) (n int) {
	for _, b := range id {
		if b == 0 {
			n += 8
			continue
		}
		n += bits.LeadingZeros8(b)
		break
	}
	return
}

func (s *RelayPolicyValidator) checkEvent(c *C, ev *event.E) (err error) {
	fail := func(r []byte) error {
		c.Queue(okenvelope.New(ev.ID, false, r))
		return Halt
	}
	if !s.Opts.PubkeyAllowed(ev.Pubkey) {
		return fail(reason.Blocked.F("pubkey not allowed"))
	}
	if s.Opts.MaxContentLength > 0 && len(ev.Content) > s.Opts.MaxContentLength {
		return fail(reason.Restricted.F("max content length exceeded"))
	}
	if s.Opts.MaxEventTags > 0 && ev.Tags.Len() > s.Opts.MaxEventTags {
		return fail(reason.Restricted.F("too many tags"))
	}
	if s.Opts.MinPowDifficulty > 0 &&
		leadingZeroBits(ev.ID) < s.Opts.MinPowDifficulty {
		return fail(reason.Pow.F("difficulty %d below required %d",
			leadingZeroBits(ev.ID), s.Opts.MinPowDifficulty))
	}
	if ev.IsProtected() && !c.Listener.Authed(ev.Pubkey) {
		return fail(reason.AuthRequired.F(
			"protected event requires matching authenticated pubkey"))
	}
	if ev.Kind == kind.GiftWrap {
		recipients := ev.Tags.GetAll([]byte("p"))
		if len(recipients) == 0 {
			return fail(reason.Invalid.F("gift wrap requires a recipient"))
		}
		if s.Opts.AuthRequired {
			allowed := c.Listener.Authed(ev.Pubkey)
			for _, t := range recipients {
				if allowed {
					break
				}
				for _, pk := range c.Listener.AuthedPubkeys() {
					if string(pk) == string(t.Value()) {
						allowed = true
						break
					}
				}
			}
			if !allowed {
				return fail(reason.AuthRequired.F(
					"gift wrap requires authenticated recipient or author"))
			}
		}
	}
	return nil
}

func (s *RelayPolicyValidator) checkFilters(c *C, sub []byte, ff filter.S) (err error) {
	if s.Opts.MinPrefixLength <= 0 {
		return nil
	}
	for _, f := range ff {
		if f.ShortestPrefix() < s.Opts.MinPrefixLength {
			c.Queue(closedenvelope.New(sub,
				reason.Restricted.F("filter prefix too short")))
			return Halt
		}
	}
	return nil
}

func (s *RelayPolicyValidator) Serve(c *C) (err error) {
	switch env := c.Msg.(type) {
	case *eventenvelope.Submission:
		return s.checkEvent(c, env.T)
	case *reqenvelope.T:
		return s.checkFilters(c, env.Subscription, env.Filters)
	case *countenvelope.Request:
		return s.checkFilters(c, env.Subscription, env.Filters)
	}
	return nil
}
