package database

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"lore.lol/pkg/encoders/filter"
)

// CountEvents counts matches with the same collapse and masking rules as
// a query, ignoring limits. Counts are exact.
func (d *D) CountEvents(c context.Context, ff filter.S) (count int, approximate bool, err error) {
	unlimited := make(filter.S, 0, len(ff))
	for _, f := range ff {
		g := *f
		g.Limit = nil
		unlimited = append(unlimited, &g)
	}
	evs, err := d.QueryEvents(c, unlimited)
	if err != nil {
		return
	}
	count = len(evs)
	return
}

// HasEvent reports whether the exact id is persisted, regardless of
// masking.
func (d *D) HasEvent(c context.Context, id []byte) (have bool, err error) {
	err = d.DB.View(func(txn *badger.Txn) error {
		if _, e := txn.Get(eventKey(id)); e == nil {
			have = true
			return nil
		} else if e == badger.ErrKeyNotFound {
			return nil
		} else {
			return e
		}
	})
	return
}
