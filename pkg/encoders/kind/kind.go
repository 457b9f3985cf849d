// Package kind classifies nostr event kinds into the behavior classes that
// drive storage semantics: regular, replaceable, ephemeral, and
// parameterized-replaceable (addressable).
package kind

const (
	ProfileMetadata      uint16 = 0
	TextNote             uint16 = 1
	FollowList           uint16 = 3
	EventDeletion        uint16 = 5
	Repost               uint16 = 6
	Reaction             uint16 = 7
	GiftWrap             uint16 = 1059
	RelayListMetadata    uint16 = 10002
	ClientAuthentication uint16 = 22242
	LongFormContent      uint16 = 30023
)

const (
	replaceableStart   uint16 = 10000
	replaceableEnd     uint16 = 20000
	ephemeralStart     uint16 = 20000
	ephemeralEnd       uint16 = 30000
	parameterizedStart uint16 = 30000
	parameterizedEnd   uint16 = 40000
)

// IsReplaceable reports whether only the newest event per (pubkey, kind)
// is visible for this kind.
func IsReplaceable(k uint16) bool {
	return k == ProfileMetadata || k == FollowList ||
		(k >= replaceableStart && k < replaceableEnd)
}

// IsEphemeral reports whether events of this kind are never returned from
// queries.
func IsEphemeral(k uint16) bool {
	return k >= ephemeralStart && k < ephemeralEnd
}

// IsParameterizedReplaceable reports whether visibility collapses per
// (pubkey, kind, d-tag) for this kind.
func IsParameterizedReplaceable(k uint16) bool {
	return k >= parameterizedStart && k < parameterizedEnd
}

// IsRegular reports whether events of this kind accumulate without
// collapse.
func IsRegular(k uint16) bool {
	return !IsReplaceable(k) && !IsEphemeral(k) && !IsParameterizedReplaceable(k)
}
