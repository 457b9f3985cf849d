package kind

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClasses(t *testing.T) {
	require.True(t, IsReplaceable(ProfileMetadata))
	require.True(t, IsReplaceable(FollowList))
	require.True(t, IsReplaceable(10002))
	require.False(t, IsReplaceable(TextNote))
	require.True(t, IsEphemeral(20000))
	require.True(t, IsEphemeral(ClientAuthentication))
	require.False(t, IsEphemeral(30000))
	require.True(t, IsParameterizedReplaceable(30023))
	require.False(t, IsParameterizedReplaceable(29999))
	require.True(t, IsRegular(TextNote))
	require.True(t, IsRegular(EventDeletion))
	require.False(t, IsRegular(0))
}

func TestSRoundTrip(t *testing.T) {
	s := NewS(0, 1, 30023)
	b := s.Marshal(nil)
	require.Equal(t, "[0,1,30023]", string(b))
	got := NewS()
	rem, err := got.Unmarshal(b)
	require.NoError(t, err)
	require.Empty(t, rem)
	require.Equal(t, s.K, got.K)
	require.True(t, got.Contains(30023))
	require.False(t, got.Contains(2))
}
