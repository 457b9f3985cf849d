package pipeline

import (
	"errors"

	"lore.lol/pkg/encoders/envelopes"
	"lore.lol/pkg/encoders/envelopes/authenvelope"
	"lore.lol/pkg/encoders/envelopes/closeenvelope"
	"lore.lol/pkg/encoders/envelopes/countenvelope"
	"lore.lol/pkg/encoders/envelopes/eventenvelope"
	"lore.lol/pkg/encoders/envelopes/reqenvelope"
	"lore.lol/pkg/encoders/text"
)

// ProtocolValidator parses the raw frame into a typed envelope,
// classifying malformed JSON, illegal string escapes, raw control
// characters and unknown labels.
type ProtocolValidator struct {
	*Line
}

func (s *ProtocolValidator) Name() string { return "protocol-validator" }

func classify(err error) error {
	switch {
	case errors.Is(err, text.ErrUnsupportedEscape):
		return ErrUnsupportedEscape
	case errors.Is(err, text.ErrUnsupportedLiteral):
		return ErrUnsupportedLiteral
	}
	return ErrInvalidFormat
}

func (s *ProtocolValidator) Serve(c *C) (err error) {
	if s.Opts.MaxMessageLength > 0 && len(c.Raw) > s.Opts.MaxMessageLength {
		return ErrTooLarge
	}
	var label string
	var rem []byte
	if label, rem, err = envelopes.Identify(c.Raw); err != nil {
		return ErrInvalidFormat
	}
	switch label {
	case eventenvelope.L:
		env := eventenvelope.NewSubmission()
		if _, err = env.Unmarshal(rem); err != nil {
			return classify(err)
		}
		c.Msg = env
	case reqenvelope.L:
		env := &reqenvelope.T{}
		if _, err = env.Unmarshal(rem); err != nil {
			return classify(err)
		}
		c.Msg = env
	case countenvelope.L:
		env := &countenvelope.Request{}
		if _, err = env.Unmarshal(rem); err != nil {
			return classify(err)
		}
		c.Msg = env
	case closeenvelope.L:
		env := &closeenvelope.T{}
		if _, err = env.Unmarshal(rem); err != nil {
			return classify(err)
		}
		c.Msg = env
	case authenvelope.L:
		env := &authenvelope.Response{}
		if _, err = env.Unmarshal(rem); err != nil {
			return classify(err)
		}
		c.Msg = env
	default:
		return ErrUnsupportedType
	}
	return nil
}
