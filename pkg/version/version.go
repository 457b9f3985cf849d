// Package version carries the release identity of the lore relay, stamped
// into the NIP-11 document and the startup banner.
package version

var (
	// Name is the canonical name of the application.
	Name = "lore"
	// V is the current release tag.
	V = "v0.3.1"
	// Description is a short text for the NIP-11 relay information document.
	Description = "lore: a nostr relay with a staged validation pipeline"
	// URL points at the source repository.
	URL = "https://lore.lol/source"
)
