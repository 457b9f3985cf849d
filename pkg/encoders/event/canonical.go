package event

import (
	"github.com/minio/sha256-simd"

	"lore.lol/pkg/encoders/hex"
	"lore.lol/pkg/encoders/ints"
	"lore.lol/pkg/encoders/text"
)

// ToCanonical appends the NIP-01 canonical form
// [0,pubkey,created_at,kind,tags,content] to dst.
func (ev *E) ToCanonical(dst []byte) (b []byte) {
	b = append(dst, '[', '0', ',')
	b = text.AppendQuote(b, ev.Pubkey, hex.EncAppend)
	b = append(b, ',')
	b = ints.New(ev.CreatedAt).Marshal(b)
	b = append(b, ',')
	b = ints.New(ev.Kind).Marshal(b)
	b = append(b, ',')
	b = ev.Tags.Marshal(b)
	b = append(b, ',')
	b = text.AppendQuote(b, ev.Content, text.NostrEscape)
	b = append(b, ']')
	return
}

// GetIDBytes computes the SHA-256 of the canonical form.
func (ev *E) GetIDBytes() []byte {
	h := sha256.Sum256(ev.ToCanonical(nil))
	return h[:]
}

// CheckID reports whether the declared id matches the canonical hash.
func (ev *E) CheckID() bool {
	id := ev.GetIDBytes()
	if len(ev.ID) != len(id) {
		return false
	}
	for i := range id {
		if id[i] != ev.ID[i] {
			return false
		}
	}
	return true
}
