// Package store defines the event storage contract: transactional insert
// with policy outcomes, filter queries with collapse and masking, counts,
// and lifecycle.
package store

import (
	"context"
	"io"

	"lore.lol/pkg/encoders/event"
	"lore.lol/pkg/encoders/filter"
)

// Ack is the outcome class of an insert.
type Ack int

const (
	// Accepted means the event was persisted and should fan out.
	Accepted Ack = iota
	// Duplicate means the event was already present; acknowledge without
	// fan-out.
	Duplicate
	// Rejected means policy refused the event; Reason says why. Deleted
	// and stale events are still persisted for pure-id retrieval.
	Rejected
)

// Result reports how an insert was resolved.
type Result struct {
	Ack    Ack
	Reason []byte
}

// I is the storage interface.
type I interface {
	io.Closer
	// Path returns the storage directory.
	Path() string
	// SaveEvent runs the full insert policy in one transaction:
	// duplicate detection, deletion processing, deletion masks,
	// replaceable staleness.
	SaveEvent(c context.Context, ev *event.E) (res *Result, err error)
	// QueryEvents evaluates the filters, unions and deduplicates,
	// applies collapse and deletion masking (except for pure-id
	// lookups), orders newest-first and applies the smallest declared
	// limit.
	QueryEvents(c context.Context, ff filter.S) (evs event.S, err error)
	// CountEvents counts without materializing a replay.
	CountEvents(c context.Context, ff filter.S) (count int, approximate bool, err error)
	// HasEvent reports whether the exact id is persisted.
	HasEvent(c context.Context, id []byte) (have bool, err error)
	// Wipe drops all stored data.
	Wipe() (err error)
	// Sync flushes to durable storage.
	Sync() (err error)
	// SetLogLevel adjusts storage logging verbosity.
	SetLogLevel(level string)
}
