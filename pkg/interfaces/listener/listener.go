// Package listener defines the view of a client connection seen by the
// message pipeline: an ordered frame writer plus the per-connection
// protocol state.
package listener

import "io"

type I interface {
	// Write sends one complete protocol frame; writes are serialized so
	// concurrent replay and live delivery interleave whole frames.
	io.Writer
	// Remote is the client address, for logs.
	Remote() string
	// Challenge is the AUTH challenge issued when the socket opened.
	Challenge() []byte
	// AddAuthed records a pubkey that completed AUTH on this socket.
	AddAuthed(pubkey []byte)
	// Authed reports whether the pubkey completed AUTH on this socket.
	Authed(pubkey []byte) bool
	// AuthedPubkeys lists every pubkey authenticated on this socket.
	AuthedPubkeys() [][]byte
	// IsAuthed reports whether any AUTH completed.
	IsAuthed() bool
}
