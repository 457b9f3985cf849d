// Package relayinfo renders the NIP-11 relay information document. The
// document is config-shaped and read by humans and clients alike, so it
// uses plain json struct tags.
package relayinfo

import (
	"encoding/json"
	"io"
)

// Limits is the NIP-11 limitation object.
type Limits struct {
	MaxMessageLength int  `json:"max_message_length,omitempty"`
	MaxSubscriptions int  `json:"max_subscriptions,omitempty"`
	MaxSubidLength   int  `json:"max_subid_length,omitempty"`
	MaxLimit         int  `json:"max_limit,omitempty"`
	MaxEventTags     int  `json:"max_event_tags,omitempty"`
	MaxContentLength int  `json:"max_content_length,omitempty"`
	MinPowDifficulty int  `json:"min_pow_difficulty,omitempty"`
	AuthRequired     bool `json:"auth_required"`
	PaymentRequired  bool `json:"payment_required"`
	RestrictedWrites bool `json:"restricted_writes"`
}

// T is the relay information document.
type T struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Pubkey        string  `json:"pubkey,omitempty"`
	Contact       string  `json:"contact,omitempty"`
	SupportedNIPs []int   `json:"supported_nips"`
	Software      string  `json:"software"`
	Version       string  `json:"version"`
	Limitation    *Limits `json:"limitation,omitempty"`
	Icon          string  `json:"icon,omitempty"`
}

// NIPs implemented by this relay.
var Supported = []int{1, 9, 11, 13, 42, 45, 50, 70}

// Write renders the document as JSON.
func (t *T) Write(w io.Writer) (err error) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}
