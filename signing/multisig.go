package signing

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/mo"

	"github.com/rendal/go-hypercore/network"
	"github.com/rendal/go-hypercore/types"
)

// Aggregator collects the authorized-user signatures a multisig account
// needs before its leader wraps them into a multiSig action. Entries are
// resolved and emitted strictly in the order they were added; the
// exchange checks signatures against its stored user list, so order is
// part of the protocol. An aggregator is single use: Finalize moves it
// to a terminal state and any further call fails with ErrFinalized.
//
// Quorum policy is the exchange's concern. The aggregator only refuses
// to finalize with nothing collected.
//
// Not safe for concurrent use.
type Aggregator struct {
	lead         Signer
	multiSigUser common.Address
	nonce        uint64
	net          network.Network
	entries      []multiSigEntry
	finalized    bool
}

// multiSigEntry is either a signer to invoke at Finalize or a signature
// produced out of band, never both.
type multiSigEntry struct {
	signer Signer
	sig    *types.Signature
}

// NewAggregator starts collecting signatures for actions of the multisig
// account multiSigUser, to be submitted by lead under the given nonce.
// Every co-signer signs under the same nonce.
func NewAggregator(lead Signer, multiSigUser common.Address, nonce uint64, net network.Network) *Aggregator {
	return &Aggregator{
		lead:         lead,
		multiSigUser: multiSigUser,
		nonce:        nonce,
		net:          net,
	}
}

// AddSigner appends a co-signer. It is invoked during Finalize, in
// position.
func (a *Aggregator) AddSigner(s Signer) error {
	if a.finalized {
		return ErrFinalized
	}

	a.entries = append(a.entries, multiSigEntry{signer: s})
	return nil
}

// AddSignature appends a signature collected out of band, for example
// from a co-signer on another machine. It must have been produced over
// the same inner action and nonce later passed to Finalize.
func (a *Aggregator) AddSignature(sig types.Signature) error {
	if a.finalized {
		return ErrFinalized
	}

	a.entries = append(a.entries, multiSigEntry{sig: &sig})
	return nil
}

// Finalize resolves every entry against the inner action, wraps the
// collected signatures into a multiSig action and signs it with the
// leader's key. Co-signers are invoked in insertion order and the first
// failure aborts the whole operation, leaving the aggregator usable.
func (a *Aggregator) Finalize(
	inner Action,
	vaultAddress mo.Option[common.Address],
	expiresAfter mo.Option[uint64],
) (SignedRequest, error) {
	if a.finalized {
		return SignedRequest{}, ErrFinalized
	}
	if len(a.entries) == 0 {
		return SignedRequest{}, ErrNoSignatures
	}

	outerSigner := a.lead.Address()

	// Co-signers commit to the inner action, the multisig account and
	// the submitting user. Typed-data inners sign the multisig variant
	// of their EIP-712 message; everything else signs an agent envelope
	// over the [user, submitter, action] triple.
	var signInner func(Signer) (types.Signature, error)
	if payload, ok := userPayload(inner); ok {
		innerPayload := multiSigUserPayload(payload, a.multiSigUser, outerSigner)
		signInner = func(s Signer) (types.Signature, error) {
			return signUserPayload(s, a.net, innerPayload)
		}
	} else {
		envelope := []any{lowerHex(a.multiSigUser), lowerHex(outerSigner), inner}
		signInner = func(s Signer) (types.Signature, error) {
			return SignL1Action(s, envelope, a.nonce, a.net, vaultAddress, expiresAfter)
		}
	}

	signatures := make([]types.Signature, 0, len(a.entries))
	for i, e := range a.entries {
		if e.sig != nil {
			signatures = append(signatures, *e.sig)
			continue
		}

		sig, err := signInner(e.signer)
		if err != nil {
			return SignedRequest{}, fmt.Errorf(
				"co-signer %d (%s): %w", i, e.signer.Address(), err,
			)
		}
		signatures = append(signatures, sig)
	}

	action := MultiSigAction{
		Type:             "multiSig",
		SignatureChainID: a.net.SignatureChainID(),
		Signatures:       signatures,
		Payload: MultiSigPayload{
			MultiSigUser: lowerHex(a.multiSigUser),
			OuterSigner:  lowerHex(outerSigner),
			Action:       inner,
		},
	}

	actionHash, err := ActionHash(action, a.nonce, vaultAddress, expiresAfter)
	if err != nil {
		return SignedRequest{}, fmt.Errorf("failed to hash multisig action: %w", err)
	}

	leadSig, err := signUserPayload(a.lead, a.net, sendMultiSigPayload(a.net, actionHash, a.nonce))
	if err != nil {
		return SignedRequest{}, fmt.Errorf("lead signer: %w", err)
	}

	a.finalized = true

	return SignedRequest{
		Action:       action,
		Signature:    leadSig,
		Nonce:        a.nonce,
		VaultAddress: optionPtr(vaultAddress),
		ExpiresAfter: optionPtr(expiresAfter),
	}, nil
}
