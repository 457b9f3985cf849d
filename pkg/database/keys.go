package database

import (
	"encoding/binary"

	"github.com/minio/sha256-simd"

	"lore.lol/pkg/encoders/event"
)

// Key prefixes. Index keys end with an inverted big-endian created_at
// followed by the event id, so a forward iteration yields newest first
// with ascending id breaking timestamp ties.
const (
	prefixEvent       = 'e'
	prefixCreated     = 'c'
	prefixKind        = 'k'
	prefixPubkey      = 'p'
	prefixPubkeyKind  = 'a'
	prefixAddress     = 'd'
	prefixTag         = 't'
	prefixWord        = 'w'
	prefixDeletedId   = 'x'
	prefixDeletedAddr = 'y'
)

const idLen = 32

func invTs(ts int64) (b [8]byte) {
	binary.BigEndian.PutUint64(b[:], ^uint64(ts))
	return
}

func tsFromInv(b []byte) int64 {
	return int64(^binary.BigEndian.Uint64(b))
}

func hash8(v []byte) (h [8]byte) {
	s := sha256.Sum256(v)
	copy(h[:], s[:8])
	return
}

func kindBytes(k uint16) (b [2]byte) {
	binary.BigEndian.PutUint16(b[:], k)
	return
}

func eventKey(id []byte) []byte {
	return append([]byte{prefixEvent}, id...)
}

func createdKey(ts int64, id []byte) []byte {
	its := invTs(ts)
	b := make([]byte, 0, 1+8+idLen)
	b = append(b, prefixCreated)
	b = append(b, its[:]...)
	return append(b, id...)
}

func kindKey(k uint16, ts int64, id []byte) []byte {
	kb, its := kindBytes(k), invTs(ts)
	b := make([]byte, 0, 1+2+8+idLen)
	b = append(b, prefixKind)
	b = append(b, kb[:]...)
	b = append(b, its[:]...)
	return append(b, id...)
}

func pubkeyKey(pk []byte, ts int64, id []byte) []byte {
	its := invTs(ts)
	b := make([]byte, 0, 1+len(pk)+8+idLen)
	b = append(b, prefixPubkey)
	b = append(b, pk...)
	b = append(b, its[:]...)
	return append(b, id...)
}

func pubkeyKindKey(pk []byte, k uint16, ts int64, id []byte) []byte {
	kb, its := kindBytes(k), invTs(ts)
	b := make([]byte, 0, 1+len(pk)+2+8+idLen)
	b = append(b, prefixPubkeyKind)
	b = append(b, pk...)
	b = append(b, kb[:]...)
	b = append(b, its[:]...)
	return append(b, id...)
}

func addressPrefix(pk []byte, k uint16, d []byte) []byte {
	kb, dh := kindBytes(k), hash8(d)
	b := make([]byte, 0, 1+len(pk)+2+8)
	b = append(b, prefixAddress)
	b = append(b, pk...)
	b = append(b, kb[:]...)
	return append(b, dh[:]...)
}

func addressKey(pk []byte, k uint16, d []byte, ts int64, id []byte) []byte {
	its := invTs(ts)
	b := addressPrefix(pk, k, d)
	b = append(b, its[:]...)
	return append(b, id...)
}

func tagKey(name byte, value []byte, ts int64, id []byte) []byte {
	vh, its := hash8(value), invTs(ts)
	b := make([]byte, 0, 1+1+8+8+idLen)
	b = append(b, prefixTag, name)
	b = append(b, vh[:]...)
	b = append(b, its[:]...)
	return append(b, id...)
}

func wordKey(word []byte, ts int64, id []byte) []byte {
	wh, its := hash8(word), invTs(ts)
	b := make([]byte, 0, 1+8+8+idLen)
	b = append(b, prefixWord)
	b = append(b, wh[:]...)
	b = append(b, its[:]...)
	return append(b, id...)
}

func deletedIdKey(id []byte) []byte {
	return append([]byte{prefixDeletedId}, id...)
}

func deletedAddrKey(pk []byte, k uint16, d []byte) []byte {
	kb, dh := kindBytes(k), hash8(d)
	b := make([]byte, 0, 1+len(pk)+2+8)
	b = append(b, prefixDeletedAddr)
	b = append(b, pk...)
	b = append(b, kb[:]...)
	return append(b, dh[:]...)
}

// indexTail splits the trailing inverted-timestamp and id off an index
// key.
func indexTail(key []byte) (ts int64, id []byte) {
	n := len(key)
	return tsFromInv(key[n-8-idLen : n-idLen]), key[n-idLen:]
}

// indexKeys returns every secondary index key for an event.
func indexKeys(ev *event.E) (keys [][]byte) {
	keys = append(keys,
		createdKey(ev.CreatedAt, ev.ID),
		kindKey(ev.Kind, ev.CreatedAt, ev.ID),
		pubkeyKey(ev.Pubkey, ev.CreatedAt, ev.ID),
		pubkeyKindKey(ev.Pubkey, ev.Kind, ev.CreatedAt, ev.ID),
		addressKey(ev.Pubkey, ev.Kind, ev.DTag(), ev.CreatedAt, ev.ID),
	)
	if ev.Tags != nil {
		seen := map[string]struct{}{}
		for _, t := range ev.Tags.T {
			k, v := t.Key(), t.Value()
			if len(k) != 1 || v == nil {
				continue
			}
			c := k[0]
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
				continue
			}
			dk := string(c) + string(v)
			if _, ok := seen[dk]; ok {
				continue
			}
			seen[dk] = struct{}{}
			keys = append(keys, tagKey(c, v, ev.CreatedAt, ev.ID))
		}
	}
	for _, w := range contentWords(ev.Content) {
		keys = append(keys, wordKey(w, ev.CreatedAt, ev.ID))
	}
	return
}
