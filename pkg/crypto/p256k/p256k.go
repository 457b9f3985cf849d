// Package p256k wraps the btcec secp256k1 implementation with the x-only
// BIP-340 key and signature forms nostr uses.
package p256k

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"lol.mleku.dev/errorf"
)

const (
	// SecKeyLen is the length of a secret key in bytes.
	SecKeyLen = 32
	// PubKeyLen is the length of an x-only public key in bytes.
	PubKeyLen = schnorr.PubKeyBytesLen
	// SigLen is the length of a BIP-340 signature in bytes.
	SigLen = schnorr.SignatureSize
)

// Signer holds a keypair, or just a public key for verification.
type Signer struct {
	sec *btcec.PrivateKey
	pub *btcec.PublicKey
	pkb []byte
}

// Generate creates a new random keypair.
func (s *Signer) Generate() (err error) {
	if s.sec, err = btcec.NewPrivateKey(); err != nil {
		return
	}
	s.pub = s.sec.PubKey()
	s.pkb = schnorr.SerializePubKey(s.pub)
	return
}

// InitSec loads a 32 byte secret key.
func (s *Signer) InitSec(skb []byte) (err error) {
	if len(skb) != SecKeyLen {
		return errorf.E("secret key is %d bytes, require %d", len(skb), SecKeyLen)
	}
	s.sec, s.pub = btcec.PrivKeyFromBytes(skb)
	s.pkb = schnorr.SerializePubKey(s.pub)
	return
}

// InitPub loads a 32 byte x-only public key for verification.
func (s *Signer) InitPub(pkb []byte) (err error) {
	if s.pub, err = schnorr.ParsePubKey(pkb); err != nil {
		return
	}
	s.pkb = schnorr.SerializePubKey(s.pub)
	return
}

// Pub returns the x-only serialized public key.
func (s *Signer) Pub() []byte { return s.pkb }

// Sec returns the serialized secret key, or nil for a verify-only signer.
func (s *Signer) Sec() []byte {
	if s.sec == nil {
		return nil
	}
	return s.sec.Serialize()
}

// Sign produces a BIP-340 signature over a 32 byte message hash.
func (s *Signer) Sign(msg []byte) (sig []byte, err error) {
	if s.sec == nil {
		err = errorf.E("signer has no secret key")
		return
	}
	var ss *schnorr.Signature
	if ss, err = schnorr.Sign(s.sec, msg); err != nil {
		return
	}
	sig = ss.Serialize()
	return
}

// Verify checks a BIP-340 signature over a 32 byte message hash.
func (s *Signer) Verify(msg, sig []byte) (valid bool, err error) {
	if s.pub == nil {
		err = errorf.E("signer has no public key")
		return
	}
	var ss *schnorr.Signature
	if ss, err = schnorr.ParseSignature(sig); err != nil {
		return
	}
	valid = ss.Verify(msg, s.pub)
	return
}

// Zero wipes the secret key material.
func (s *Signer) Zero() {
	if s.sec != nil {
		s.sec.Zero()
		s.sec = nil
	}
}
