package signing

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/mo"

	"github.com/rendal/go-hypercore/network"
	"github.com/rendal/go-hypercore/types"
)

// SignedRequest is a fully authorized action, shaped exactly like the
// body the exchange endpoint expects.
type SignedRequest struct {
	Action       Action          `json:"action"`
	Signature    types.Signature `json:"signature"`
	Nonce        uint64          `json:"nonce"`
	VaultAddress *common.Address `json:"vaultAddress"`
	ExpiresAfter *uint64         `json:"expiresAfter,omitempty"`
}

// Sign authorizes an action under the given nonce. Typed-data variants
// are signed as EIP-712 messages under the per-network transaction
// domain; every other variant goes through the agent envelope. The vault
// address and expiry bind into the envelope hash and are ignored for
// typed-data variants, which are always signed by the account itself.
func Sign(
	signer Signer,
	action Action,
	nonce uint64,
	net network.Network,
	vaultAddress mo.Option[common.Address],
	expiresAfter mo.Option[uint64],
) (SignedRequest, error) {
	var (
		sig types.Signature
		err error
	)

	if payload, ok := userPayload(action); ok {
		vaultAddress = mo.None[common.Address]()
		expiresAfter = mo.None[uint64]()
		sig, err = signUserPayload(signer, net, payload)
	} else {
		sig, err = SignL1Action(signer, action, nonce, net, vaultAddress, expiresAfter)
	}
	if err != nil {
		return SignedRequest{}, err
	}

	return SignedRequest{
		Action:       action,
		Signature:    sig,
		Nonce:        nonce,
		VaultAddress: optionPtr(vaultAddress),
		ExpiresAfter: optionPtr(expiresAfter),
	}, nil
}

func optionPtr[T any](o mo.Option[T]) *T {
	if v, ok := o.Get(); ok {
		return &v
	}
	return nil
}
