package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/vmihailenco/msgpack/v5"
)

// Signature is a recoverable secp256k1 signature over a 32-byte digest.
// V is kept in Ethereum canonical form, 27 or 28.
type Signature struct {
	R common.Hash
	S common.Hash
	V byte
}

// SignatureFromBytes builds a Signature from the raw 65-byte [R || S || V]
// form produced by crypto.Sign. A recovery id below 27 is shifted into
// canonical form.
func SignatureFromBytes(sig []byte) (Signature, error) {
	var out Signature
	if len(sig) != 65 {
		return out, fmt.Errorf("invalid signature length: %d", len(sig))
	}

	copy(out.R[:], sig[:32])
	copy(out.S[:], sig[32:64])

	v := sig[64]
	if v < 27 {
		v += 27
	}
	out.V = v

	return out, nil
}

// Bytes returns the 65-byte [R || S || V] form with canonical V.
func (s Signature) Bytes() []byte {
	out := make([]byte, 65)
	copy(out[:32], s.R[:])
	copy(out[32:64], s.S[:])
	out[64] = s.V
	return out
}

// Recover returns the address whose key produced s over digest.
func (s Signature) Recover(digest common.Hash) (common.Address, error) {
	sig := s.Bytes()
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// minimalHex renders a 32-byte word as 0x-prefixed hex with leading
// zeros trimmed. This is the canonical form r and s take on the wire:
// the exchange re-serializes signatures in this form when it hashes a
// multisig payload, so anything else would break hash agreement there.
func minimalHex(word common.Hash) string {
	return hexutil.EncodeBig(new(big.Int).SetBytes(word[:]))
}

// MarshalJSON encodes the signature as:
// { "r": "0x...", "s": "0x...", "v": <number> }
func (s Signature) MarshalJSON() ([]byte, error) {
	type alias struct {
		R string `json:"r"`
		S string `json:"s"`
		V uint8  `json:"v"`
	}

	a := alias{
		R: minimalHex(s.R),
		S: minimalHex(s.S),
		V: uint8(s.V),
	}

	return json.Marshal(a)
}

var _ msgpack.CustomEncoder = (*Signature)(nil)

func (s *Signature) EncodeMsgpack(enc *msgpack.Encoder) error {
	type alias struct {
		R string `msgpack:"r"`
		S string `msgpack:"s"`
		V uint8  `msgpack:"v"`
	}

	a := alias{
		R: minimalHex(s.R),
		S: minimalHex(s.S),
		V: uint8(s.V),
	}

	return enc.Encode(a)
}

// UnmarshalJSON decodes from:
// { "r": "0x...", "s": "0x...", "v": <number> }
func (s *Signature) UnmarshalJSON(data []byte) error {
	type alias struct {
		R string `json:"r"`
		S string `json:"s"`
		V uint8  `json:"v"`
	}

	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	r, err := parseWord(a.R)
	if err != nil {
		return fmt.Errorf("invalid r: %w", err)
	}
	s.R = r

	sw, err := parseWord(a.S)
	if err != nil {
		return fmt.Errorf("invalid s: %w", err)
	}
	s.S = sw

	s.V = byte(a.V)

	return nil
}

// parseWord accepts both minimal and zero-padded hex words.
func parseWord(h string) (common.Hash, error) {
	var out common.Hash

	if !strings.HasPrefix(h, "0x") && !strings.HasPrefix(h, "0X") {
		return out, fmt.Errorf("missing 0x prefix: %q", h)
	}

	digits := h[2:]
	if len(digits) == 0 || len(digits) > 64 {
		return out, fmt.Errorf("invalid word length: %q", h)
	}
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}

	b, err := hex.DecodeString(digits)
	if err != nil {
		return out, fmt.Errorf("invalid hex word %q: %w", h, err)
	}

	copy(out[len(out)-len(b):], b)
	return out, nil
}

func (s Signature) String() string {
	return fmt.Sprintf(
		"R: %s, S: %s, V: %d",
		hexutil.Encode(s.R[:]),
		hexutil.Encode(s.S[:]),
		s.V,
	)
}
