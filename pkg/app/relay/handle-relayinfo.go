package relay

import (
	"net/http"

	"lol.mleku.dev/chk"
)

// handleRelayinfo serves the NIP-11 document. It answers any plain GET on
// the root, not only those with the nostr+json accept header, which is
// harmless and helps debugging from a browser.
func (s *Server) handleRelayinfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/nostr+json")
	chk.E(s.info.Write(w))
}
