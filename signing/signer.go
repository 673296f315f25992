// Package signing builds, canonically encodes, hashes and signs exchange
// actions. Two signing paths exist: most actions are msgpack-encoded,
// hashed and signed through a phantom agent envelope, while transfer-class
// actions are signed as EIP-712 typed data the user can read in a wallet.
package signing

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rendal/go-hypercore/types"
)

var (
	// ErrInvalidKey reports a private key that could not be parsed.
	ErrInvalidKey = errors.New("invalid private key")

	// ErrEncoding reports an action that could not be canonically encoded.
	ErrEncoding = errors.New("failed to encode action")

	// ErrFinalized reports use of a multisig aggregator after Finalize.
	ErrFinalized = errors.New("multisig aggregation already finalized")

	// ErrNoSignatures reports a Finalize call with nothing collected.
	ErrNoSignatures = errors.New("multisig aggregation has no signatures")

	// ErrChainMismatch reports a typed-data action whose declared
	// signatureChainId does not belong to the network it is signed for.
	ErrChainMismatch = errors.New("action signatureChainId does not match network")
)

// Signer is the capability needed to authorize an action: produce a
// recoverable secp256k1 signature over a 32-byte digest. Implementations
// may hold a raw key in memory, proxy to a remote KMS, or drive a
// hardware wallet.
type Signer interface {
	Address() common.Address
	SignHash(digest common.Hash) (types.Signature, error)
}

// LocalSigner signs with an in-memory secp256k1 private key.
type LocalSigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

var _ Signer = (*LocalSigner)(nil)

// NewLocalSigner parses a hex private key, with or without the 0x prefix.
func NewLocalSigner(privateKeyHex string) (*LocalSigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return NewLocalSignerFromKey(key)
}

func NewLocalSignerFromKey(key *ecdsa.PrivateKey) (*LocalSigner, error) {
	if key == nil {
		return nil, ErrInvalidKey
	}

	return &LocalSigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (s *LocalSigner) Address() common.Address { return s.address }

func (s *LocalSigner) SignHash(digest common.Hash) (types.Signature, error) {
	sig, err := crypto.Sign(digest.Bytes(), s.key)
	if err != nil {
		return types.Signature{}, fmt.Errorf("failed to sign: %w", err)
	}

	return types.SignatureFromBytes(sig)
}
