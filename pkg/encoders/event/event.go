// Package event implements the nostr event: wire codec, canonical form,
// identity hashing and BIP-340 signing and verification.
package event

import (
	"bytes"

	"lore.lol/pkg/encoders/hex"
	"lore.lol/pkg/encoders/tag"
)

// E is a nostr event. ID, Pubkey and Sig are raw bytes; their hex forms
// exist only on the wire.
type E struct {
	ID        []byte
	Pubkey    []byte
	CreatedAt int64
	Kind      uint16
	Tags      *tag.S
	Content   []byte
	Sig       []byte
}

func New() *E { return &E{Tags: tag.NewS()} }

// IdHex returns the event id in its 64 character wire form.
func (ev *E) IdHex() string { return hex.Enc(ev.ID) }

// PubHex returns the author pubkey in its 64 character wire form.
func (ev *E) PubHex() string { return hex.Enc(ev.Pubkey) }

// DTag returns the value of the first "d" tag, or nil.
func (ev *E) DTag() []byte {
	if t := ev.Tags.GetFirst([]byte("d")); t != nil {
		return t.Value()
	}
	return nil
}

// IsProtected reports whether the event carries the NIP-70 "-" tag.
func (ev *E) IsProtected() bool {
	return ev.Tags.GetFirst([]byte("-")) != nil
}

// S is a sortable event slice ordered newest first, ties broken by
// ascending id.
type S []*E

func (s S) Len() int      { return len(s) }
func (s S) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s S) Less(i, j int) bool {
	if s[i].CreatedAt != s[j].CreatedAt {
		return s[i].CreatedAt > s[j].CreatedAt
	}
	return bytes.Compare(s[i].ID, s[j].ID) < 0
}

// C is a channel of events.
type C chan *E
