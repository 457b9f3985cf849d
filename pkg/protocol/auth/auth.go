// Package auth implements NIP-42 connection authentication: challenge
// generation and validation of the signed kind 22242 response event.
package auth

import (
	"net/url"
	"strings"
	"time"

	"lol.mleku.dev/errorf"
	"lukechampine.com/frand"

	"lore.lol/pkg/encoders/event"
	"lore.lol/pkg/encoders/hex"
	"lore.lol/pkg/encoders/kind"
	"lore.lol/pkg/utils"
)

// Tolerance is how far an auth event's created_at may drift from the
// relay clock.
const Tolerance = 10 * time.Minute

// GenerateChallenge returns a fresh 32 byte random challenge in hex form.
func GenerateChallenge() []byte {
	return []byte(hex.Enc(frand.Bytes(32)))
}

var (
	ErrWrongKind         = errorf.E("auth event has wrong kind")
	ErrChallengeMismatch = errorf.E("auth event challenge does not match")
)

// normalizeURL reduces a relay URL to scheme-insensitive host+path form so
// ws/wss and trailing slashes don't defeat the relay tag check.
func normalizeURL(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return s
	}
	if !strings.Contains(s, "://") {
		s = "wss://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	host := u.Host
	host = strings.TrimSuffix(host, ":80")
	host = strings.TrimSuffix(host, ":443")
	return host + strings.TrimSuffix(u.Path, "/")
}

// Validate checks a NIP-42 response event against the challenge issued on
// this connection and the relay's own URL: kind 22242, matching challenge
// tag, matching relay tag, fresh created_at, valid id and signature.
func Validate(ev *event.E, challenge []byte, relayURL string) (ok bool, err error) {
	if ev.Kind != kind.ClientAuthentication {
		err = ErrWrongKind
		return
	}
	ct := ev.Tags.GetFirst([]byte("challenge"))
	if ct == nil || !utils.FastEqual(ct.Value(), challenge) {
		err = ErrChallengeMismatch
		return
	}
	rt := ev.Tags.GetFirst([]byte("relay"))
	if rt == nil {
		err = errorf.E("auth event is missing relay tag")
		return
	}
	if relayURL != "" &&
		normalizeURL(string(rt.Value())) != normalizeURL(relayURL) {
		err = errorf.E("auth event relay tag %q does not match %q",
			rt.Value(), relayURL)
		return
	}
	now := time.Now().Unix()
	drift := now - ev.CreatedAt
	if drift < 0 {
		drift = -drift
	}
	if drift > int64(Tolerance/time.Second) {
		err = errorf.E("auth event created_at %d outside tolerance", ev.CreatedAt)
		return
	}
	if !ev.CheckID() {
		err = errorf.E("auth event id does not match canonical hash")
		return
	}
	return ev.Verify()
}
