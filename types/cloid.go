package types

import (
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/vmihailenco/msgpack/v5"
)

const cloidLength = 16

// Cloid is a client order id: a 128-bit value the caller picks when
// placing an order and can later cancel or query by. On the wire it is
// a 0x-prefixed hex string of exactly 32 digits.
type Cloid [cloidLength]byte

var cloidT = reflect.TypeOf(Cloid{})

// BytesToCloid builds a Cloid from b, right aligned. Longer inputs are
// cropped from the left.
func BytesToCloid(b []byte) Cloid {
	var c Cloid
	c.SetBytes(b)
	return c
}

// HexToCloid builds a Cloid from a hex string, with or without the 0x
// prefix, right aligned.
func HexToCloid(s string) Cloid {
	return BytesToCloid(common.FromHex(s))
}

// BigToCloid builds a Cloid from the big-endian bytes of b.
func BigToCloid(b *big.Int) Cloid {
	return BytesToCloid(b.Bytes())
}

// SetBytes sets the Cloid to b, right aligned. Longer inputs are cropped
// from the left.
func (c *Cloid) SetBytes(b []byte) {
	if len(b) > len(c) {
		b = b[len(b)-cloidLength:]
	}

	copy(c[cloidLength-len(b):], b)
}

// Hex is the canonical 0x-prefixed, zero-padded form.
func (c Cloid) Hex() string { return hexutil.Encode(c[:]) }

func (c Cloid) String() string { return c.Hex() }

// UnmarshalJSON parses a quoted hex Cloid, rejecting wrong lengths.
func (c *Cloid) UnmarshalJSON(input []byte) error {
	return hexutil.UnmarshalFixedJSON(cloidT, input, c[:])
}

func (c Cloid) MarshalText() ([]byte, error) {
	return hexutil.Bytes(c[:]).MarshalText()
}

// EncodeMsgpack writes the hex string form, not raw bytes. The canonical
// action encoding carries cloids as strings, so this is hash bearing.
func (c Cloid) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString(c.Hex())
}

func (c *Cloid) DecodeMsgpack(dec *msgpack.Decoder) error {
	s, err := dec.DecodeString()
	if err != nil {
		return err
	}

	*c = HexToCloid(s)
	return nil
}
