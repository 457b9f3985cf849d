package database

import (
	"github.com/vmihailenco/msgpack/v5"

	"lore.lol/pkg/encoders/event"
	"lore.lol/pkg/encoders/tag"
)

// record is the stored form of an event.
type record struct {
	ID        []byte     `msgpack:"i"`
	Pubkey    []byte     `msgpack:"p"`
	CreatedAt int64      `msgpack:"c"`
	Kind      uint16     `msgpack:"k"`
	Tags      [][][]byte `msgpack:"t"`
	Content   []byte     `msgpack:"n"`
	Sig       []byte     `msgpack:"s"`
}

func encodeEvent(ev *event.E) (b []byte, err error) {
	rec := record{
		ID:        ev.ID,
		Pubkey:    ev.Pubkey,
		CreatedAt: ev.CreatedAt,
		Kind:      ev.Kind,
		Content:   ev.Content,
		Sig:       ev.Sig,
	}
	if ev.Tags != nil {
		rec.Tags = make([][][]byte, 0, ev.Tags.Len())
		for _, t := range ev.Tags.T {
			rec.Tags = append(rec.Tags, t.T)
		}
	}
	return msgpack.Marshal(&rec)
}

func decodeEvent(b []byte) (ev *event.E, err error) {
	var rec record
	if err = msgpack.Unmarshal(b, &rec); err != nil {
		return
	}
	ev = &event.E{
		ID:        rec.ID,
		Pubkey:    rec.Pubkey,
		CreatedAt: rec.CreatedAt,
		Kind:      rec.Kind,
		Tags:      tag.NewS(),
		Content:   rec.Content,
		Sig:       rec.Sig,
	}
	for _, fields := range rec.Tags {
		ev.Tags.Append(tag.NewFromBytesSlice(fields...))
	}
	return
}
