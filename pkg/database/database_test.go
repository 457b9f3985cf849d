package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lore.lol/pkg/crypto/p256k"
	"lore.lol/pkg/encoders/event"
	"lore.lol/pkg/encoders/filter"
	"lore.lol/pkg/encoders/hex"
	"lore.lol/pkg/encoders/kind"
	"lore.lol/pkg/encoders/tag"
	"lore.lol/pkg/interfaces/store"
)

func testDB(t *testing.T) (d *D, ctx context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	var err error
	d, err = New(ctx, cancel, t.TempDir(), "off")
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		require.NoError(t, d.Close())
	})
	return
}

func testSigner(t *testing.T) (signer *p256k.Signer) {
	signer = &p256k.Signer{}
	require.NoError(t, signer.Generate())
	return
}

func signedAt(t *testing.T, signer *p256k.Signer, k uint16, at int64, content string, tags ...*tag.T) (ev *event.E) {
	ev = &event.E{
		CreatedAt: at,
		Kind:      k,
		Tags:      tag.NewS(tags...),
		Content:   []byte(content),
	}
	require.NoError(t, ev.Sign(signer))
	return
}

func save(t *testing.T, d *D, ctx context.Context, ev *event.E) *store.Result {
	res, err := d.SaveEvent(ctx, ev)
	require.NoError(t, err)
	return res
}

func kindsFilter(ks ...uint16) *filter.F {
	f := filter.New()
	f.Kinds.K = ks
	return f
}

func idFilter(ids ...[]byte) *filter.F {
	f := filter.New()
	for _, id := range ids {
		f.Ids.T = append(f.Ids.T, []byte(hex.Enc(id)))
	}
	return f
}

func TestSaveAndQueryOrdering(t *testing.T) {
	d, ctx := testDB(t)
	signer := testSigner(t)
	base := time.Now().Unix()
	var evs []*event.E
	for i := 0; i < 5; i++ {
		ev := signedAt(t, signer, 1, base+int64(i), "note")
		require.Equal(t, store.Accepted, save(t, d, ctx, ev).Ack)
		evs = append(evs, ev)
	}
	got, err := d.QueryEvents(ctx, filter.S{kindsFilter(1)})
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i := 0; i < 4; i++ {
		require.GreaterOrEqual(t, got[i].CreatedAt, got[i+1].CreatedAt,
			"newest first")
	}
	require.Equal(t, evs[4].ID, got[0].ID)

	lim := uint(2)
	f := kindsFilter(1)
	f.Limit = &lim
	got, err = d.QueryEvents(ctx, filter.S{f})
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestDuplicate(t *testing.T) {
	d, ctx := testDB(t)
	ev := signedAt(t, testSigner(t), 1, time.Now().Unix(), "once")
	require.Equal(t, store.Accepted, save(t, d, ctx, ev).Ack)
	res := save(t, d, ctx, ev)
	require.Equal(t, store.Duplicate, res.Ack)
	require.Equal(t, "duplicate: already have this event", string(res.Reason))
	have, err := d.HasEvent(ctx, ev.ID)
	require.NoError(t, err)
	require.True(t, have)
}

func TestReplaceableCollapse(t *testing.T) {
	d, ctx := testDB(t)
	signer := testSigner(t)
	base := time.Now().Unix()
	old := signedAt(t, signer, kind.ProfileMetadata, base, `{"name":"old"}`)
	newer := signedAt(t, signer, kind.ProfileMetadata, base+10, `{"name":"new"}`)
	require.Equal(t, store.Accepted, save(t, d, ctx, old).Ack)
	require.Equal(t, store.Accepted, save(t, d, ctx, newer).Ack)

	got, err := d.QueryEvents(ctx, filter.S{kindsFilter(kind.ProfileMetadata)})
	require.NoError(t, err)
	require.Len(t, got, 1, "only the newest version is visible")
	require.Equal(t, newer.ID, got[0].ID)

	// the superseded version is still there for an exact id lookup
	got, err = d.QueryEvents(ctx, filter.S{idFilter(old.ID)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, old.ID, got[0].ID)
}

func TestStaleReplacement(t *testing.T) {
	d, ctx := testDB(t)
	signer := testSigner(t)
	base := time.Now().Unix()
	newer := signedAt(t, signer, kind.ProfileMetadata, base+10, "new")
	older := signedAt(t, signer, kind.ProfileMetadata, base, "old")
	require.Equal(t, store.Accepted, save(t, d, ctx, newer).Ack)
	res := save(t, d, ctx, older)
	require.Equal(t, store.Rejected, res.Ack)
	require.Equal(t, "rejected: stale replacement event", string(res.Reason))
	// persisted regardless, visible by pure id lookup
	got, err := d.QueryEvents(ctx, filter.S{idFilter(older.ID)})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestParameterizedReplaceable(t *testing.T) {
	d, ctx := testDB(t)
	signer := testSigner(t)
	base := time.Now().Unix()
	a1 := signedAt(t, signer, 30023, base, "v1", tag.New("d", "alpha"))
	a2 := signedAt(t, signer, 30023, base+5, "v2", tag.New("d", "alpha"))
	b1 := signedAt(t, signer, 30023, base, "other", tag.New("d", "beta"))
	for _, ev := range []*event.E{a1, a2, b1} {
		require.Equal(t, store.Accepted, save(t, d, ctx, ev).Ack)
	}
	got, err := d.QueryEvents(ctx, filter.S{kindsFilter(30023)})
	require.NoError(t, err)
	require.Len(t, got, 2, "one winner per d tag")
	ids := map[string]bool{string(got[0].ID): true, string(got[1].ID): true}
	require.True(t, ids[string(a2.ID)])
	require.True(t, ids[string(b1.ID)])
}

func TestCollapseTieBreakLowestId(t *testing.T) {
	d, ctx := testDB(t)
	signer := testSigner(t)
	at := time.Now().Unix()
	a := signedAt(t, signer, kind.ProfileMetadata, at, "a")
	b := signedAt(t, signer, kind.ProfileMetadata, at, "b")
	lower, higher := a, b
	if string(b.ID) < string(a.ID) {
		lower, higher = b, a
	}
	require.Equal(t, store.Accepted, save(t, d, ctx, lower).Ack)
	res := save(t, d, ctx, higher)
	require.Equal(t, store.Rejected, res.Ack, "equal timestamp, higher id loses")
	got, err := d.QueryEvents(ctx, filter.S{kindsFilter(kind.ProfileMetadata)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, lower.ID, got[0].ID)
}

func TestDeletionById(t *testing.T) {
	d, ctx := testDB(t)
	signer := testSigner(t)
	base := time.Now().Unix()
	target := signedAt(t, signer, 1, base, "delete me")
	require.Equal(t, store.Accepted, save(t, d, ctx, target).Ack)
	del := signedAt(t, signer, kind.EventDeletion, base+1, "",
		tag.New([]byte("e"), []byte(hex.Enc(target.ID))))
	require.Equal(t, store.Accepted, save(t, d, ctx, del).Ack)

	got, err := d.QueryEvents(ctx, filter.S{kindsFilter(1)})
	require.NoError(t, err)
	require.Empty(t, got, "deleted event is masked")

	// pure id lookup bypasses the mask
	got, err = d.QueryEvents(ctx, filter.S{idFilter(target.ID)})
	require.NoError(t, err)
	require.Len(t, got, 1)

	// resubmission is persisted but rejected
	resub := signedAt(t, signer, 1, base, "delete me")
	require.Equal(t, target.ID, resub.ID)
	res := save(t, d, ctx, resub)
	require.Equal(t, store.Duplicate, res.Ack)
}

func TestDeletionWrongAuthor(t *testing.T) {
	d, ctx := testDB(t)
	author, other := testSigner(t), testSigner(t)
	base := time.Now().Unix()
	target := signedAt(t, author, 1, base, "mine")
	require.Equal(t, store.Accepted, save(t, d, ctx, target).Ack)
	del := signedAt(t, other, kind.EventDeletion, base+1, "",
		tag.New([]byte("e"), []byte(hex.Enc(target.ID))))
	res := save(t, d, ctx, del)
	require.Equal(t, store.Rejected, res.Ack)
	require.Equal(t,
		"rejected: deletion can only target events by same pubkey",
		string(res.Reason))
	// target stays visible
	got, err := d.QueryEvents(ctx, filter.S{kindsFilter(1)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	// the rejected deletion was not persisted
	have, err := d.HasEvent(ctx, del.ID)
	require.NoError(t, err)
	require.False(t, have)
}

func TestDeletionByAddress(t *testing.T) {
	d, ctx := testDB(t)
	signer := testSigner(t)
	base := time.Now().Unix()
	art := signedAt(t, signer, 30023, base, "v1", tag.New("d", "post"))
	require.Equal(t, store.Accepted, save(t, d, ctx, art).Ack)
	addr := "30023:" + art.PubHex() + ":post"
	del := signedAt(t, signer, kind.EventDeletion, base+1, "",
		tag.New("a", addr))
	require.Equal(t, store.Accepted, save(t, d, ctx, del).Ack)

	got, err := d.QueryEvents(ctx, filter.S{kindsFilter(30023)})
	require.NoError(t, err)
	require.Empty(t, got)

	// an older version arriving later is masked on insert
	older := signedAt(t, signer, 30023, base-5, "v0", tag.New("d", "post"))
	res := save(t, d, ctx, older)
	require.Equal(t, store.Rejected, res.Ack)
	require.Equal(t, "rejected: event is deleted", string(res.Reason))

	// a genuinely newer version supersedes the deletion
	newer := signedAt(t, signer, 30023, base+10, "v2", tag.New("d", "post"))
	require.Equal(t, store.Accepted, save(t, d, ctx, newer).Ack)
	got, err = d.QueryEvents(ctx, filter.S{kindsFilter(30023)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, newer.ID, got[0].ID)
}

func TestDeletionKindRestriction(t *testing.T) {
	d, ctx := testDB(t)
	signer := testSigner(t)
	base := time.Now().Unix()
	note := signedAt(t, signer, 1, base, "note")
	react := signedAt(t, signer, 7, base, "+")
	require.Equal(t, store.Accepted, save(t, d, ctx, note).Ack)
	require.Equal(t, store.Accepted, save(t, d, ctx, react).Ack)
	// deletion cites both but restricts to kind 7
	del := signedAt(t, signer, kind.EventDeletion, base+1, "",
		tag.New([]byte("e"), []byte(hex.Enc(note.ID))),
		tag.New([]byte("e"), []byte(hex.Enc(react.ID))),
		tag.New("k", "7"))
	require.Equal(t, store.Accepted, save(t, d, ctx, del).Ack)
	got, err := d.QueryEvents(ctx, filter.S{kindsFilter(1, 7)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, note.ID, got[0].ID)
}

func TestEphemeralNeverQueryable(t *testing.T) {
	d, ctx := testDB(t)
	signer := testSigner(t)
	ev := signedAt(t, signer, 20001, time.Now().Unix(), "fleeting")
	require.Equal(t, store.Accepted, save(t, d, ctx, ev).Ack)
	got, err := d.QueryEvents(ctx, filter.S{kindsFilter(20001)})
	require.NoError(t, err)
	require.Empty(t, got)
	// not even by exact id
	got, err = d.QueryEvents(ctx, filter.S{idFilter(ev.ID)})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestTagAndTimeFilters(t *testing.T) {
	d, ctx := testDB(t)
	signer := testSigner(t)
	base := time.Now().Unix()
	tagged := signedAt(t, signer, 1, base, "tagged", tag.New("t", "go"))
	plain := signedAt(t, signer, 1, base+1, "plain")
	require.Equal(t, store.Accepted, save(t, d, ctx, tagged).Ack)
	require.Equal(t, store.Accepted, save(t, d, ctx, plain).Ack)

	f := filter.New()
	f.Tags.Append(tag.New("#t", "go"))
	got, err := d.QueryEvents(ctx, filter.S{f})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, tagged.ID, got[0].ID)

	f = kindsFilter(1)
	f.Since = base + 1
	got, err = d.QueryEvents(ctx, filter.S{f})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, plain.ID, got[0].ID)
}

func TestAuthorFilterWithPrefix(t *testing.T) {
	d, ctx := testDB(t)
	a, b := testSigner(t), testSigner(t)
	base := time.Now().Unix()
	evA := signedAt(t, a, 1, base, "from a")
	evB := signedAt(t, b, 1, base, "from b")
	require.Equal(t, store.Accepted, save(t, d, ctx, evA).Ack)
	require.Equal(t, store.Accepted, save(t, d, ctx, evB).Ack)

	f := filter.New()
	f.Authors.T = [][]byte{[]byte(evA.PubHex())}
	got, err := d.QueryEvents(ctx, filter.S{f})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, evA.ID, got[0].ID)

	f = filter.New()
	f.Authors.T = [][]byte{[]byte(evA.PubHex()[:16])}
	got, err = d.QueryEvents(ctx, filter.S{f})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, evA.ID, got[0].ID)
}

func TestSearch(t *testing.T) {
	d, ctx := testDB(t)
	signer := testSigner(t)
	base := time.Now().Unix()
	match := signedAt(t, signer, 1, base, "the Quick brown Fox jumps")
	noise := signedAt(t, signer, 1, base+1, "slow red turtle")
	require.Equal(t, store.Accepted, save(t, d, ctx, match).Ack)
	require.Equal(t, store.Accepted, save(t, d, ctx, noise).Ack)

	f := filter.New()
	f.Search = []byte("quick fox")
	got, err := d.QueryEvents(ctx, filter.S{f})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, match.ID, got[0].ID)

	f = filter.New()
	f.Search = []byte("quick wolf")
	got, err = d.QueryEvents(ctx, filter.S{f})
	require.NoError(t, err)
	require.Empty(t, got)

	// 1-char tokens are inert, not an empty posting list
	f = filter.New()
	f.Search = []byte("a quick fox")
	got, err = d.QueryEvents(ctx, filter.S{f})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, match.ID, got[0].ID)
}

func TestMultiFilterUnionAndMinLimit(t *testing.T) {
	d, ctx := testDB(t)
	signer := testSigner(t)
	base := time.Now().Unix()
	for i := 0; i < 4; i++ {
		require.Equal(t, store.Accepted,
			save(t, d, ctx, signedAt(t, signer, 1, base+int64(i), "n")).Ack)
		require.Equal(t, store.Accepted,
			save(t, d, ctx, signedAt(t, signer, 7, base+int64(i), "+")).Ack)
	}
	la, lb := uint(10), uint(3)
	fa, fb := kindsFilter(1), kindsFilter(7)
	fa.Limit, fb.Limit = &la, &lb
	got, err := d.QueryEvents(ctx, filter.S{fa, fb})
	require.NoError(t, err)
	require.Len(t, got, 3, "smallest declared limit wins")
}

func TestCountEvents(t *testing.T) {
	d, ctx := testDB(t)
	signer := testSigner(t)
	base := time.Now().Unix()
	for i := 0; i < 6; i++ {
		require.Equal(t, store.Accepted,
			save(t, d, ctx, signedAt(t, signer, 1, base+int64(i), "x")).Ack)
	}
	lim := uint(2)
	f := kindsFilter(1)
	f.Limit = &lim
	count, approx, err := d.CountEvents(ctx, filter.S{f})
	require.NoError(t, err)
	require.False(t, approx)
	require.Equal(t, 6, count, "counts ignore limits")
}

func TestWipe(t *testing.T) {
	d, ctx := testDB(t)
	signer := testSigner(t)
	ev := signedAt(t, signer, 1, time.Now().Unix(), "gone soon")
	require.Equal(t, store.Accepted, save(t, d, ctx, ev).Ack)
	require.NoError(t, d.Wipe())
	have, err := d.HasEvent(ctx, ev.ID)
	require.NoError(t, err)
	require.False(t, have)
}
