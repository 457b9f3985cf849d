package event

import (
	"lol.mleku.dev/errorf"

	"lore.lol/pkg/crypto/p256k"
)

// Sign computes the event id from the canonical form and signs it,
// populating ID, Pubkey and Sig.
func (ev *E) Sign(signer *p256k.Signer) (err error) {
	ev.Pubkey = signer.Pub()
	ev.ID = ev.GetIDBytes()
	if ev.Sig, err = signer.Sign(ev.ID); err != nil {
		return
	}
	return
}

// Verify checks that the declared id matches the canonical hash and that
// the signature verifies against the author pubkey.
func (ev *E) Verify() (valid bool, err error) {
	if len(ev.ID) != 32 {
		err = errorf.E("event id is %d bytes, require 32", len(ev.ID))
		return
	}
	if !ev.CheckID() {
		return
	}
	signer := &p256k.Signer{}
	if err = signer.InitPub(ev.Pubkey); err != nil {
		return
	}
	return signer.Verify(ev.ID, ev.Sig)
}
