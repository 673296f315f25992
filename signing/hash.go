package signing

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/mo"
	"github.com/vmihailenco/msgpack/v5"
)

// ActionHash computes the canonical hash an action is signed under:
// Keccak256 over the msgpack encoding of the action, followed by the
// 8-byte big-endian nonce, a vault marker (0x01 plus the 20-byte address,
// or a single 0x00), and, only when an expiry is set, a 0x00 marker plus
// the 8-byte big-endian expiry timestamp in milliseconds.
//
// The action parameter is any rather than Action because multisig inner
// signing hashes a [user, signer, action] triple.
func ActionHash(
	action any,
	nonce uint64,
	vaultAddress mo.Option[common.Address],
	expiresAfter mo.Option[uint64],
) (common.Hash, error) {
	data, err := msgpack.Marshal(action)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	nonceBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(nonceBytes, nonce)
	data = append(data, nonceBytes...)

	if v, ok := vaultAddress.Get(); ok {
		data = append(data, 0x01)
		data = append(data, v.Bytes()...)
	} else {
		data = append(data, 0x00)
	}

	if e, ok := expiresAfter.Get(); ok {
		data = append(data, 0x00)
		expiryBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(expiryBytes, e)
		data = append(data, expiryBytes...)
	}

	return crypto.Keccak256Hash(data), nil
}
