package database

import (
	"bytes"
	"context"
	"encoding/binary"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"

	"lore.lol/pkg/encoders/event"
	"lore.lol/pkg/encoders/hex"
	"lore.lol/pkg/encoders/ints"
	"lore.lol/pkg/encoders/kind"
	"lore.lol/pkg/encoders/reason"
	"lore.lol/pkg/interfaces/store"
	"lore.lol/pkg/utils"
)

// SaveEvent runs the insert policy in one transaction: duplicate check,
// deletion processing for kind 5, deletion-mask check, replacement
// staleness. Masked and stale events are persisted anyway so exact-id
// lookups still find them; only Accepted results should fan out.
func (d *D) SaveEvent(c context.Context, ev *event.E) (res *store.Result, err error) {
	res = &store.Result{}
	err = d.DB.Update(func(txn *badger.Txn) (err error) {
		if _, e := txn.Get(eventKey(ev.ID)); e == nil {
			res.Ack = store.Duplicate
			res.Reason = reason.Duplicate.F("already have this event")
			return
		} else if e != badger.ErrKeyNotFound {
			return e
		}
		if ev.Kind == kind.EventDeletion {
			return d.saveDeletion(txn, ev, res)
		}
		var masked bool
		if masked, err = isDeleted(txn, ev); chk.E(err) {
			return
		}
		if masked {
			if err = persist(txn, ev); chk.E(err) {
				return
			}
			res.Ack = store.Rejected
			res.Reason = reason.Rejected.F("event is deleted")
			return
		}
		var stale bool
		if stale, err = isStale(txn, ev); chk.E(err) {
			return
		}
		if stale {
			if err = persist(txn, ev); chk.E(err) {
				return
			}
			res.Ack = store.Rejected
			res.Reason = reason.Rejected.F("stale replacement event")
			return
		}
		if err = persist(txn, ev); chk.E(err) {
			return
		}
		res.Ack = store.Accepted
		return
	})
	if err == nil && res.Ack == store.Accepted {
		log.T.F("stored event %s kind %d from %s", ev.IdHex(), ev.Kind,
			ev.PubHex())
	}
	return
}

func persist(txn *badger.Txn, ev *event.E) (err error) {
	var rec []byte
	if rec, err = encodeEvent(ev); chk.E(err) {
		return
	}
	if err = txn.Set(eventKey(ev.ID), rec); chk.E(err) {
		return
	}
	for _, k := range indexKeys(ev) {
		if err = txn.Set(k, nil); chk.E(err) {
			return
		}
	}
	return
}

// isDeleted reports whether a prior deletion masks this event, either by
// exact id or by address at an equal or later created_at.
func isDeleted(txn *badger.Txn, ev *event.E) (deleted bool, err error) {
	if _, e := txn.Get(deletedIdKey(ev.ID)); e == nil {
		return true, nil
	} else if e != badger.ErrKeyNotFound {
		return false, e
	}
	if !kind.IsReplaceable(ev.Kind) && !kind.IsParameterizedReplaceable(ev.Kind) {
		return
	}
	item, e := txn.Get(deletedAddrKey(ev.Pubkey, ev.Kind, ev.DTag()))
	if e == badger.ErrKeyNotFound {
		return
	} else if e != nil {
		return false, e
	}
	var ts int64
	if err = item.Value(func(v []byte) error {
		if len(v) == 8 {
			ts = int64(binary.BigEndian.Uint64(v))
		}
		return nil
	}); err != nil {
		return
	}
	deleted = ev.CreatedAt <= ts
	return
}

// isStale reports whether a newer (or equal-time, lower-id) version of a
// replaceable or addressable event is already stored.
func isStale(txn *badger.Txn, ev *event.E) (stale bool, err error) {
	var prefix []byte
	switch {
	case kind.IsReplaceable(ev.Kind):
		kb := kindBytes(ev.Kind)
		prefix = append([]byte{prefixPubkeyKind}, ev.Pubkey...)
		prefix = append(prefix, kb[:]...)
	case kind.IsParameterizedReplaceable(ev.Kind):
		prefix = addressPrefix(ev.Pubkey, ev.Kind, ev.DTag())
	default:
		return
	}
	it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	defer it.Close()
	it.Rewind()
	if !it.Valid() {
		return
	}
	ts, id := indexTail(it.Item().Key())
	if ts > ev.CreatedAt {
		stale = true
		return
	}
	if ts == ev.CreatedAt && bytes.Compare(id, ev.ID) < 0 {
		stale = true
	}
	return
}

// saveDeletion validates and applies a kind 5 deletion: every cited
// target must belong to the deletion's author, k tags restrict which
// cited kinds are affected, and address masks record the deletion
// timestamp.
func (d *D) saveDeletion(txn *badger.Txn, ev *event.E, res *store.Result) (err error) {
	type target struct {
		id  []byte
		rec *event.E
	}
	var targets []target
	var kinds []uint16
	for _, t := range ev.Tags.GetAll([]byte("k")) {
		n := ints.New(0)
		if _, e := n.Unmarshal(t.Value()); e == nil {
			kinds = append(kinds, n.Uint16())
		}
	}
	kindAllowed := func(k uint16) bool {
		if len(kinds) == 0 {
			return true
		}
		for _, v := range kinds {
			if v == k {
				return true
			}
		}
		return false
	}
	for _, t := range ev.Tags.GetAll([]byte("e")) {
		if len(t.Value()) != 64 {
			continue
		}
		id, e := hex.Dec(string(t.Value()))
		if e != nil {
			continue
		}
		tgt := target{id: id}
		if item, e := txn.Get(eventKey(id)); e == nil {
			err = item.Value(func(v []byte) (err error) {
				tgt.rec, err = decodeEvent(v)
				return
			})
			if chk.E(err) {
				return
			}
			if !utils.FastEqual(tgt.rec.Pubkey, ev.Pubkey) {
				res.Ack = store.Rejected
				res.Reason = reason.Rejected.F(
					"deletion can only target events by same pubkey")
				return nil
			}
		} else if e != badger.ErrKeyNotFound {
			return e
		}
		targets = append(targets, tgt)
	}
	type addr struct {
		k  uint16
		pk []byte
		d  []byte
	}
	var addrs []addr
	for _, t := range ev.Tags.GetAll([]byte("a")) {
		parts := bytes.SplitN(t.Value(), []byte{':'}, 3)
		if len(parts) < 2 {
			continue
		}
		kn, e := strconv.ParseUint(string(parts[0]), 10, 16)
		if e != nil {
			continue
		}
		pk, e := hex.Dec(string(parts[1]))
		if e != nil || len(pk) != 32 {
			continue
		}
		if !utils.FastEqual(pk, ev.Pubkey) {
			res.Ack = store.Rejected
			res.Reason = reason.Rejected.F(
				"deletion can only target events by same pubkey")
			return nil
		}
		var dv []byte
		if len(parts) == 3 {
			dv = parts[2]
		}
		addrs = append(addrs, addr{k: uint16(kn), pk: pk, d: dv})
	}
	if err = persist(txn, ev); chk.E(err) {
		return
	}
	for _, tgt := range targets {
		if tgt.rec != nil && !kindAllowed(tgt.rec.Kind) {
			continue
		}
		if tgt.rec == nil && len(kinds) > 0 {
			// cannot verify the kind of an unseen target
			continue
		}
		if err = txn.Set(deletedIdKey(tgt.id), nil); chk.E(err) {
			return
		}
	}
	for _, a := range addrs {
		if !kindAllowed(a.k) {
			continue
		}
		key := deletedAddrKey(a.pk, a.k, a.d)
		ts := ev.CreatedAt
		if item, e := txn.Get(key); e == nil {
			_ = item.Value(func(v []byte) error {
				if len(v) == 8 {
					if prev := int64(binary.BigEndian.Uint64(v)); prev > ts {
						ts = prev
					}
				}
				return nil
			})
		} else if e != badger.ErrKeyNotFound {
			return e
		}
		var vb [8]byte
		binary.BigEndian.PutUint64(vb[:], uint64(ts))
		if err = txn.Set(key, vb[:]); chk.E(err) {
			return
		}
	}
	res.Ack = store.Accepted
	return
}
