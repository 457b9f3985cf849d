package p256k

import (
	"testing"

	"github.com/minio/sha256-simd"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"
)

func TestSignVerify(t *testing.T) {
	s := &Signer{}
	require.NoError(t, s.Generate())
	require.Len(t, s.Pub(), PubKeyLen)
	msg := sha256.Sum256(frand.Bytes(128))
	sig, err := s.Sign(msg[:])
	require.NoError(t, err)
	require.Len(t, sig, SigLen)
	v := &Signer{}
	require.NoError(t, v.InitPub(s.Pub()))
	valid, err := v.Verify(msg[:], sig)
	require.NoError(t, err)
	require.True(t, valid)
	// a different message must not verify
	other := sha256.Sum256(frand.Bytes(128))
	valid, err = v.Verify(other[:], sig)
	require.NoError(t, err)
	require.False(t, valid)
}

func TestInitSecDeterministic(t *testing.T) {
	skb := frand.Bytes(SecKeyLen)
	a, b := &Signer{}, &Signer{}
	require.NoError(t, a.InitSec(skb))
	require.NoError(t, b.InitSec(skb))
	require.Equal(t, a.Pub(), b.Pub())
	require.Equal(t, skb, a.Sec())
	require.Error(t, (&Signer{}).InitSec(frand.Bytes(16)))
}
