package pipeline

import "errors"

// Halt stops the pipeline with the stage's queued frames as the complete
// response.
var Halt = errors.New("halt")

// The notice vocabulary. Halt reasons outside this list render as
// "request rejected" so internal details never reach clients.
var (
	ErrInvalidFormat      = errors.New("invalid message format")
	ErrUnsupportedEscape  = errors.New("invalid message: unsupported JSON escape")
	ErrUnsupportedLiteral = errors.New("invalid message: unsupported JSON literal control")
	ErrUnsupportedType    = errors.New("unsupported message type")
	ErrTooLarge           = errors.New("invalid: message exceeds size limit")
)

var vocabulary = []error{
	ErrInvalidFormat,
	ErrUnsupportedEscape,
	ErrUnsupportedLiteral,
	ErrUnsupportedType,
	ErrTooLarge,
}

// Notice maps a halt reason to its stable client-visible string.
func Notice(err error) []byte {
	for _, v := range vocabulary {
		if errors.Is(err, v) {
			return []byte(v.Error())
		}
	}
	return []byte("request rejected")
}
