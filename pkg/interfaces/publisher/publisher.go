// Package publisher defines the fan-out contract: subsystems register an
// interest in message types and receive every accepted event for
// delivery.
package publisher

import (
	"lore.lol/pkg/encoders/event"
	"lore.lol/pkg/interfaces/typer"
)

type I interface {
	Type() string
	// Receive accepts a subscription registration or cancellation.
	Receive(msg typer.T)
	// Deliver fans an accepted event out to matching subscribers.
	Deliver(ev *event.E)
}

// S broadcasts to a set of publishers.
type S []I

func (s S) Deliver(ev *event.E) {
	for _, p := range s {
		p.Deliver(ev)
	}
}

func (s S) Receive(msg typer.T) {
	for _, p := range s {
		p.Receive(msg)
	}
}
