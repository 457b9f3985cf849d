package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lore.lol/pkg/crypto/p256k"
	"lore.lol/pkg/encoders/event"
	"lore.lol/pkg/encoders/hex"
	"lore.lol/pkg/encoders/tag"
)

func signed(t *testing.T, signer *p256k.Signer, k uint16, content string, tags ...*tag.T) (ev *event.E) {
	ev = &event.E{
		CreatedAt: time.Now().Unix(),
		Kind:      k,
		Tags:      tag.NewS(tags...),
		Content:   []byte(content),
	}
	require.NoError(t, ev.Sign(signer))
	return
}

func TestUnmarshalFilter(t *testing.T) {
	in := []byte(`{"ids":["ab","cdef"],"authors":["0123"],"kinds":[1,7],` +
		`"#e":["aa"],"#p":["bb","cc"],"since":100,"until":200,` +
		`"limit":25,"search":"hello world"}`)
	f := New()
	rem, err := f.Unmarshal(in)
	require.NoError(t, err)
	require.Empty(t, rem)
	require.Equal(t, 2, f.Ids.Len())
	require.Equal(t, 1, f.Authors.Len())
	require.Equal(t, []uint16{1, 7}, f.Kinds.K)
	require.Equal(t, 2, f.Tags.Len())
	require.Equal(t, int64(100), f.Since)
	require.Equal(t, int64(200), f.Until)
	require.NotNil(t, f.Limit)
	require.Equal(t, uint(25), *f.Limit)
	require.Equal(t, []byte("hello world"), f.Search)
	// marshals back to a parseable form
	g := New()
	_, err = g.Unmarshal(f.Marshal(nil))
	require.NoError(t, err)
	require.Equal(t, f.Marshal(nil), g.Marshal(nil))
}

func TestMatches(t *testing.T) {
	signer := &p256k.Signer{}
	require.NoError(t, signer.Generate())
	ev := signed(t, signer, 1, "the quick brown fox",
		tag.New("e", "aabb"), tag.New("t", "nature"))

	f := New()
	require.True(t, f.Matches(ev), "empty filter matches everything")

	f = New()
	f.Kinds.K = []uint16{1}
	require.True(t, f.Matches(ev))
	f.Kinds.K = []uint16{2}
	require.False(t, f.Matches(ev))

	f = New()
	f.Authors.T = [][]byte{[]byte(ev.PubHex())}
	require.True(t, f.Matches(ev))
	f.Authors.T = [][]byte{[]byte(ev.PubHex()[:8])}
	require.True(t, f.Matches(ev), "author prefix matches")
	f.Authors.T = [][]byte{[]byte("ffffffff")}
	require.False(t, f.Matches(ev))

	f = New()
	f.Ids.T = [][]byte{[]byte(hex.Enc(ev.ID)[:12])}
	require.True(t, f.Matches(ev), "id prefix matches")

	f = New()
	f.Tags.Append(tag.New("#t", "nature"))
	require.True(t, f.Matches(ev))
	f = New()
	f.Tags.Append(tag.New("#t", "city"))
	require.False(t, f.Matches(ev))

	f = New()
	f.Since = ev.CreatedAt + 10
	require.False(t, f.Matches(ev))
	f = New()
	f.Until = ev.CreatedAt - 10
	require.False(t, f.Matches(ev))

	f = New()
	f.Search = []byte("QUICK fox")
	require.True(t, f.Matches(ev), "search is case-insensitive, all tokens")
	f.Search = []byte("quick wolf")
	require.False(t, f.Matches(ev))
	f.Search = []byte("lang:en")
	require.True(t, f.Matches(ev), "extension-only query is inert")
}

func TestPureIdLookup(t *testing.T) {
	f := New()
	f.Ids.T = [][]byte{[]byte("ab")}
	require.True(t, f.PureIdLookup())
	require.True(t, S{f}.PureIdLookup())
	f.Since = 5
	require.False(t, f.PureIdLookup())
	require.False(t, S{}.PureIdLookup())
}

func TestShortestPrefix(t *testing.T) {
	f := New()
	require.Equal(t, 64, f.ShortestPrefix())
	f.Ids.T = [][]byte{[]byte("abcdef")}
	f.Authors.T = [][]byte{[]byte("abcd")}
	require.Equal(t, 4, f.ShortestPrefix())
}

func TestLimitMin(t *testing.T) {
	a, b := New(), New()
	_, present := S{a, b}.Limit()
	require.False(t, present)
	la, lb := uint(40), uint(10)
	a.Limit, b.Limit = &la, &lb
	got, present := S{a, b}.Limit()
	require.True(t, present)
	require.Equal(t, uint(10), got)
}

func TestUnmarshalSequence(t *testing.T) {
	in := []byte(`{"kinds":[1]},{"kinds":[7],"limit":5}]`)
	ff, rem, err := UnmarshalSequence(in)
	require.NoError(t, err)
	require.Len(t, ff, 2)
	require.Equal(t, "]", string(rem))
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize([]byte(`The "quick" a I lang:en FOX`))
	require.Equal(t, [][]byte{
		[]byte("the"), []byte("quick"), []byte("fox"),
	}, tokens, "lowercased, quotes trimmed, extension and 1-char tokens dropped")
}
