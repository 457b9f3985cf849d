package ints

import (
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"
)

func TestRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 9, 10, 1234567890, 1<<63 - 1} {
		b := New(v).Marshal(nil)
		n := New(0)
		rem, err := n.Unmarshal(b)
		require.NoError(t, err)
		require.Empty(t, rem)
		require.Equal(t, v, n.Uint64())
	}
	for i := 0; i < 100; i++ {
		v := frand.Uint64n(1 << 62)
		n := New(0)
		_, err := n.Unmarshal(New(v).Marshal(nil))
		require.NoError(t, err)
		require.Equal(t, v, n.Uint64())
	}
}

func TestUnmarshalStopsAtNonDigit(t *testing.T) {
	n := New(0)
	rem, err := n.Unmarshal([]byte("1700000000,rest"))
	require.NoError(t, err)
	require.Equal(t, int64(1700000000), n.Int64())
	require.Equal(t, ",rest", string(rem))
	_, err = n.Unmarshal([]byte("x"))
	require.Error(t, err)
}
