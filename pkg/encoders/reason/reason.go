// Package reason builds the machine-readable reason strings carried by OK
// and CLOSED envelopes: a stable prefix, a colon, and human-readable
// detail.
package reason

import "fmt"

type R struct {
	prefix string
}

var (
	Duplicate    = R{"duplicate"}
	Pow          = R{"pow"}
	Blocked      = R{"blocked"}
	RateLimited  = R{"rate-limited"}
	Invalid      = R{"invalid"}
	Rejected     = R{"rejected"}
	Restricted   = R{"restricted"}
	Mute         = R{"mute"}
	AuthRequired = R{"auth-required"}
	Error        = R{"error"}
)

// F renders "prefix: detail" with the detail formatted printf-style.
func (r R) F(format string, a ...any) []byte {
	if len(a) > 0 {
		format = fmt.Sprintf(format, a...)
	}
	return []byte(r.prefix + ": " + format)
}

// Is reports whether the reason string carries this prefix.
func (r R) Is(reason []byte) bool {
	p := r.prefix + ":"
	return len(reason) >= len(p) && string(reason[:len(p)]) == p
}
