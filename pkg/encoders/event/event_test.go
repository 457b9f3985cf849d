package event

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"lore.lol/pkg/crypto/p256k"
	"lore.lol/pkg/encoders/hex"
	"lore.lol/pkg/encoders/tag"
)

func newSigned(t *testing.T, signer *p256k.Signer, k uint16, content string, tags ...*tag.T) (ev *E) {
	ev = &E{
		CreatedAt: time.Now().Unix(),
		Kind:      k,
		Tags:      tag.NewS(tags...),
		Content:   []byte(content),
	}
	require.NoError(t, ev.Sign(signer))
	return
}

func testSigner(t *testing.T) (signer *p256k.Signer) {
	signer = &p256k.Signer{}
	require.NoError(t, signer.Generate())
	return
}

func TestSignVerify(t *testing.T) {
	signer := testSigner(t)
	ev := newSigned(t, signer, 1, "hello nostr", tag.New("t", "greeting"))
	require.True(t, ev.CheckID())
	valid, err := ev.Verify()
	require.NoError(t, err)
	require.True(t, valid)
	// tampering with content breaks the id
	ev.Content = append(ev.Content, '!')
	require.False(t, ev.CheckID())
}

func TestJSONRoundTrip(t *testing.T) {
	signer := testSigner(t)
	ev := newSigned(t, signer, 30023, "body with \"quotes\"\nand lines",
		tag.New("d", "article-1"), tag.New("e", string(frand.Bytes(8))))
	b := ev.Marshal(nil)
	got := New()
	rem, err := got.Unmarshal(b)
	require.NoError(t, err)
	require.Empty(t, rem)
	require.Equal(t, ev.ID, got.ID)
	require.Equal(t, ev.Pubkey, got.Pubkey)
	require.Equal(t, ev.CreatedAt, got.CreatedAt)
	require.Equal(t, ev.Kind, got.Kind)
	require.Equal(t, ev.Content, got.Content)
	require.Equal(t, ev.Sig, got.Sig)
	require.Equal(t, ev.Marshal(nil), got.Marshal(nil))
	valid, err := got.Verify()
	require.NoError(t, err)
	require.True(t, valid)
}

func TestUnmarshalAnyKeyOrder(t *testing.T) {
	signer := testSigner(t)
	ev := newSigned(t, signer, 1, "ordered")
	reordered := []byte(`{"sig":"` + hex.Enc(ev.Sig) +
		`","content":"ordered","tags":[],"kind":1,"created_at":` +
		strconv.FormatInt(ev.CreatedAt, 10) +
		`,"pubkey":"` + ev.PubHex() + `","id":"` + ev.IdHex() + `"}`)
	got := New()
	_, err := got.Unmarshal(reordered)
	require.NoError(t, err)
	require.True(t, got.CheckID())
}

func TestDTagAndProtected(t *testing.T) {
	signer := testSigner(t)
	ev := newSigned(t, signer, 30023, "x", tag.New("d", "slug"), tag.New("-"))
	require.Equal(t, []byte("slug"), ev.DTag())
	require.True(t, ev.IsProtected())
	plain := newSigned(t, signer, 1, "y")
	require.Nil(t, plain.DTag())
	require.False(t, plain.IsProtected())
}

func TestSortOrder(t *testing.T) {
	a := &E{ID: []byte{0x01}, CreatedAt: 10}
	b := &E{ID: []byte{0x02}, CreatedAt: 20}
	c := &E{ID: []byte{0x03}, CreatedAt: 20}
	s := S{a, c, b}
	require.True(t, s.Less(1, 0))
	// newest first, id ascending on ties
	require.True(t, s.Less(2, 0))
	require.False(t, s.Less(0, 1))
}
