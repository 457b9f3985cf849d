package publish_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lore.lol/pkg/app/relay/publish"
	"lore.lol/pkg/crypto/p256k"
	"lore.lol/pkg/encoders/envelopes"
	"lore.lol/pkg/encoders/envelopes/eventenvelope"
	"lore.lol/pkg/encoders/event"
	"lore.lol/pkg/encoders/filter"
	"lore.lol/pkg/encoders/tag"
)

type fakeListener struct {
	mx     sync.Mutex
	frames [][]byte
	fail   bool
}

func (f *fakeListener) Write(b []byte) (int, error) {
	f.mx.Lock()
	defer f.mx.Unlock()
	if f.fail {
		return 0, errors.New("broken pipe")
	}
	f.frames = append(f.frames, append([]byte{}, b...))
	return len(b), nil
}

func (f *fakeListener) Remote() string            { return "test" }
func (f *fakeListener) Challenge() []byte         { return []byte("challenge") }
func (f *fakeListener) AddAuthed(pubkey []byte)   {}
func (f *fakeListener) Authed(pubkey []byte) bool { return false }
func (f *fakeListener) AuthedPubkeys() [][]byte   { return nil }
func (f *fakeListener) IsAuthed() bool            { return false }

func (f *fakeListener) received(t *testing.T) (out []*eventenvelope.Result) {
	t.Helper()
	f.mx.Lock()
	defer f.mx.Unlock()
	for _, frame := range f.frames {
		label, rem, err := envelopes.Identify(frame)
		require.NoError(t, err)
		require.Equal(t, eventenvelope.L, label)
		res := eventenvelope.NewResult()
		_, err = res.Unmarshal(rem)
		require.NoError(t, err)
		out = append(out, res)
	}
	return
}

func note(t *testing.T, k uint16, content string, tags ...*tag.T) (ev *event.E) {
	signer := &p256k.Signer{}
	require.NoError(t, signer.Generate())
	ev = &event.E{
		CreatedAt: time.Now().Unix(),
		Kind:      k,
		Tags:      tag.NewS(tags...),
		Content:   []byte(content),
	}
	require.NoError(t, ev.Sign(signer))
	return
}

func kindsFilter(ks ...uint16) filter.S {
	f := filter.New()
	f.Kinds.K = ks
	return filter.S{f}
}

func TestDeliverMatching(t *testing.T) {
	p := publish.New()
	notes, reacts := &fakeListener{}, &fakeListener{}
	p.Receive(&publish.W{Listener: notes, Id: "n", Filters: kindsFilter(1)})
	p.Receive(&publish.W{Listener: reacts, Id: "r", Filters: kindsFilter(7)})
	require.Equal(t, 1, p.CountFor(notes))

	ev := note(t, 1, "hello")
	p.Deliver(ev)

	got := notes.received(t)
	require.Len(t, got, 1)
	require.Equal(t, "n", string(got[0].Subscription))
	require.Equal(t, ev.ID, got[0].Event.ID)
	require.Empty(t, reacts.received(t))
}

func TestCancelOne(t *testing.T) {
	p := publish.New()
	l := &fakeListener{}
	p.Receive(&publish.W{Listener: l, Id: "a", Filters: kindsFilter(1)})
	p.Receive(&publish.W{Listener: l, Id: "b", Filters: kindsFilter(1)})
	require.Equal(t, 2, p.CountFor(l))
	p.Receive(&publish.W{Listener: l, Cancel: true, Id: "a"})
	require.Equal(t, 1, p.CountFor(l))
	p.Deliver(note(t, 1, "x"))
	got := l.received(t)
	require.Len(t, got, 1)
	require.Equal(t, "b", string(got[0].Subscription))
}

func TestCancelAll(t *testing.T) {
	p := publish.New()
	l := &fakeListener{}
	p.Receive(&publish.W{Listener: l, Id: "a", Filters: kindsFilter(1)})
	p.Receive(&publish.W{Listener: l, Id: "b", Filters: kindsFilter(7)})
	p.Receive(&publish.W{Listener: l, Cancel: true})
	require.Equal(t, 0, p.CountFor(l))
	p.Deliver(note(t, 1, "x"))
	require.Empty(t, l.received(t))
}

func TestFailedWriteDropsListener(t *testing.T) {
	p := publish.New()
	l := &fakeListener{fail: true}
	p.Receive(&publish.W{Listener: l, Id: "a", Filters: kindsFilter(1)})
	p.Deliver(note(t, 1, "x"))
	require.Equal(t, 0, p.CountFor(l))
}
