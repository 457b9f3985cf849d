package database

import (
	"bytes"
	"context"
	"encoding/binary"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"lol.mleku.dev/chk"

	"lore.lol/pkg/encoders/event"
	"lore.lol/pkg/encoders/filter"
	"lore.lol/pkg/encoders/hex"
	"lore.lol/pkg/encoders/kind"
)

// QueryEvents evaluates each filter, unions the results deduplicated by
// id, applies replaceable collapse and deletion masking (skipped when
// every filter is a pure id lookup), orders newest first and truncates to
// the smallest declared limit.
func (d *D) QueryEvents(c context.Context, ff filter.S) (evs event.S, err error) {
	pure := ff.PureIdLookup()
	err = d.DB.View(func(txn *badger.Txn) (err error) {
		seen := map[string]struct{}{}
		for _, f := range ff {
			var got event.S
			if got, err = queryFilter(txn, f); chk.E(err) {
				return
			}
			for _, ev := range got {
				if _, ok := seen[string(ev.ID)]; ok {
					continue
				}
				seen[string(ev.ID)] = struct{}{}
				evs = append(evs, ev)
			}
		}
		if !pure {
			if evs, err = unmasked(txn, evs); chk.E(err) {
				return
			}
			evs = collapse(evs)
		}
		return
	})
	if err != nil {
		return
	}
	if searchOnly(ff) {
		sortByRelevance(evs, ff[0].Search)
	} else {
		sort.Sort(evs)
	}
	if limit, ok := ff.Limit(); ok && uint(len(evs)) > limit {
		evs = evs[:limit]
	}
	return
}

func searchOnly(ff filter.S) bool {
	if len(ff) != 1 {
		return false
	}
	f := ff[0]
	return len(f.Search) > 0 && f.Ids.Len() == 0 && f.Authors.Len() == 0 &&
		f.Kinds.Len() == 0 && f.Tags.Len() == 0
}

// sortByRelevance orders a search result by total token occurrences,
// newest first among equals.
func sortByRelevance(evs event.S, q []byte) {
	tokens := filter.Tokenize(q)
	score := func(ev *event.E) (n int) {
		lower := bytes.ToLower(ev.Content)
		for _, t := range tokens {
			n += bytes.Count(lower, t)
		}
		return
	}
	scores := make(map[*event.E]int, len(evs))
	for _, ev := range evs {
		scores[ev] = score(ev)
	}
	sort.Slice(evs, func(i, j int) bool {
		if scores[evs[i]] != scores[evs[j]] {
			return scores[evs[i]] > scores[evs[j]]
		}
		if evs[i].CreatedAt != evs[j].CreatedAt {
			return evs[i].CreatedAt > evs[j].CreatedAt
		}
		return bytes.Compare(evs[i].ID, evs[j].ID) < 0
	})
}

func fetchEvent(txn *badger.Txn, id []byte) (ev *event.E, err error) {
	item, e := txn.Get(eventKey(id))
	if e == badger.ErrKeyNotFound {
		return
	} else if e != nil {
		return nil, e
	}
	err = item.Value(func(v []byte) (err error) {
		ev, err = decodeEvent(v)
		return
	})
	return
}

// queryFilter selects candidates through the most selective index, then
// verifies every clause against the fetched record. Ephemeral kinds never
// come back.
func queryFilter(txn *badger.Txn, f *filter.F) (evs event.S, err error) {
	var ids [][]byte
	switch {
	case f.Ids.Len() > 0:
		if ids, err = candidatesById(txn, f); chk.E(err) {
			return
		}
	case f.Authors.Len() > 0:
		if ids, err = candidatesByAuthor(txn, f); chk.E(err) {
			return
		}
	case f.Kinds.Len() > 0:
		for _, k := range f.Kinds.K {
			kb := kindBytes(k)
			prefix := append([]byte{prefixKind}, kb[:]...)
			if ids, err = scanIndex(txn, prefix, f, ids); chk.E(err) {
				return
			}
		}
	case f.Tags.Len() > 0:
		t := f.Tags.T[0]
		name := t.Key()[1]
		for _, v := range t.T[1:] {
			vh := hash8(v)
			prefix := append([]byte{prefixTag, name}, vh[:]...)
			if ids, err = scanIndex(txn, prefix, f, ids); chk.E(err) {
				return
			}
		}
	case len(f.Search) > 0 && len(filter.Tokenize(f.Search)) > 0:
		if ids, err = candidatesByWord(txn, f); chk.E(err) {
			return
		}
	default:
		if ids, err = scanIndex(txn, []byte{prefixCreated}, f, nil); chk.E(err) {
			return
		}
	}
	for _, id := range ids {
		var ev *event.E
		if ev, err = fetchEvent(txn, id); chk.E(err) {
			return
		}
		if ev == nil || kind.IsEphemeral(ev.Kind) {
			continue
		}
		if !f.Matches(ev) {
			continue
		}
		evs = append(evs, ev)
	}
	return
}

// scanIndex walks an index prefix newest-first within the filter's time
// bounds, appending ids to acc.
func scanIndex(txn *badger.Txn, prefix []byte, f *filter.F, acc [][]byte) (ids [][]byte, err error) {
	ids = acc
	it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	defer it.Close()
	start := prefix
	if f.Until != 0 {
		its := invTs(f.Until)
		start = append(append([]byte{}, prefix...), its[:]...)
	}
	for it.Seek(start); it.Valid(); it.Next() {
		ts, id := indexTail(it.Item().Key())
		if f.Since != 0 && ts < f.Since {
			break
		}
		ids = append(ids, append([]byte(nil), id...))
	}
	return
}

func candidatesById(txn *badger.Txn, f *filter.F) (ids [][]byte, err error) {
	for _, entry := range f.Ids.T {
		if len(entry) == 2*idLen {
			var id []byte
			if id, err = hex.Dec(string(entry)); err != nil {
				err = nil
				continue
			}
			ids = append(ids, id)
			continue
		}
		pb, e := hex.Dec(string(entry[:len(entry)/2*2]))
		if e != nil {
			continue
		}
		prefix := append([]byte{prefixEvent}, pb...)
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		for it.Seek(prefix); it.Valid(); it.Next() {
			key := it.Item().Key()
			ids = append(ids, append([]byte(nil), key[1:]...))
		}
		it.Close()
	}
	return
}

func candidatesByAuthor(txn *badger.Txn, f *filter.F) (ids [][]byte, err error) {
	for _, entry := range f.Authors.T {
		full := len(entry) == 2*idLen
		pb, e := hex.Dec(string(entry[:len(entry)/2*2]))
		if e != nil {
			continue
		}
		if full && f.Kinds.Len() > 0 {
			for _, k := range f.Kinds.K {
				kb := kindBytes(k)
				prefix := append([]byte{prefixPubkeyKind}, pb...)
				prefix = append(prefix, kb[:]...)
				if ids, err = scanIndex(txn, prefix, f, ids); chk.E(err) {
					return
				}
			}
			continue
		}
		prefix := append([]byte{prefixPubkey}, pb...)
		if ids, err = scanIndex(txn, prefix, f, ids); chk.E(err) {
			return
		}
	}
	return
}

// candidatesByWord intersects the per-token posting lists of the word
// index.
func candidatesByWord(txn *badger.Txn, f *filter.F) (ids [][]byte, err error) {
	tokens := filter.Tokenize(f.Search)
	var sets []map[string]struct{}
	for _, tok := range tokens {
		wh := hash8(tok)
		prefix := append([]byte{prefixWord}, wh[:]...)
		var got [][]byte
		if got, err = scanIndex(txn, prefix, f, nil); chk.E(err) {
			return
		}
		set := make(map[string]struct{}, len(got))
		for _, id := range got {
			set[string(id)] = struct{}{}
		}
		sets = append(sets, set)
	}
	if len(sets) == 0 {
		return
	}
	for id := range sets[0] {
		in := true
		for _, s := range sets[1:] {
			if _, ok := s[id]; !ok {
				in = false
				break
			}
		}
		if in {
			ids = append(ids, []byte(id))
		}
	}
	return
}

// unmasked drops events hidden by deletion records.
func unmasked(txn *badger.Txn, evs event.S) (out event.S, err error) {
	for _, ev := range evs {
		if _, e := txn.Get(deletedIdKey(ev.ID)); e == nil {
			continue
		} else if e != badger.ErrKeyNotFound {
			return nil, e
		}
		if kind.IsReplaceable(ev.Kind) || kind.IsParameterizedReplaceable(ev.Kind) {
			item, e := txn.Get(deletedAddrKey(ev.Pubkey, ev.Kind, ev.DTag()))
			if e == nil {
				var ts int64
				_ = item.Value(func(v []byte) error {
					if len(v) == 8 {
						ts = int64(binary.BigEndian.Uint64(v))
					}
					return nil
				})
				if ev.CreatedAt <= ts {
					continue
				}
			} else if e != badger.ErrKeyNotFound {
				return nil, e
			}
		}
		out = append(out, ev)
	}
	return
}

// collapse keeps only the winning version of replaceable and addressable
// events: greatest created_at, lowest id on ties.
func collapse(evs event.S) (out event.S) {
	type slot struct {
		ev  *event.E
		idx int
	}
	winners := map[string]*slot{}
	var keys []string
	for _, ev := range evs {
		var key string
		switch {
		case kind.IsReplaceable(ev.Kind):
			key = "r" + string(ev.Pubkey) + string(kindKeyPart(ev.Kind))
		case kind.IsParameterizedReplaceable(ev.Kind):
			key = "p" + string(ev.Pubkey) + string(kindKeyPart(ev.Kind)) +
				string(ev.DTag())
		default:
			out = append(out, ev)
			continue
		}
		w, ok := winners[key]
		if !ok {
			winners[key] = &slot{ev: ev}
			keys = append(keys, key)
			continue
		}
		if ev.CreatedAt > w.ev.CreatedAt ||
			(ev.CreatedAt == w.ev.CreatedAt &&
				bytes.Compare(ev.ID, w.ev.ID) < 0) {
			w.ev = ev
		}
	}
	for _, key := range keys {
		out = append(out, winners[key].ev)
	}
	return
}

func kindKeyPart(k uint16) []byte {
	kb := kindBytes(k)
	return kb[:]
}
