// Package codec defines the envelope contract shared by every message
// type.
package codec

import "io"

// Envelope is a wire message that knows its label and codec.
type Envelope interface {
	Label() string
	Write(w io.Writer) (err error)
	Marshal(dst []byte) (b []byte)
	Unmarshal(b []byte) (r []byte, err error)
}
