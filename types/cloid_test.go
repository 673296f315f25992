package types

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/maxatome/go-testdeep/td"
	"github.com/vmihailenco/msgpack/v5"
)

func TestCloidHex(t *testing.T) {
	c := HexToCloid("0x00000000000000000000000000000001")
	td.Cmp(t, c.Hex(), "0x00000000000000000000000000000001")

	// Values shorter than 16 bytes are right aligned.
	c = BigToCloid(big.NewInt(0xabcd))
	td.Cmp(t, c.Hex(), "0x0000000000000000000000000000abcd")
}

func TestCloidJSONRoundTrip(t *testing.T) {
	c := HexToCloid("0x000000000000000000000000000000ff")

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	td.Cmp(t, string(data), `"0x000000000000000000000000000000ff"`)

	var back Cloid
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	td.Cmp(t, back, c)
}

func TestCloidMsgpackRoundTrip(t *testing.T) {
	c := HexToCloid("0x00000000000000000000000000000001")

	data, err := msgpack.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}

	// Encodes as the hex string, not raw bytes.
	var s string
	if err := msgpack.Unmarshal(data, &s); err != nil {
		t.Fatal(err)
	}
	td.Cmp(t, s, c.Hex())

	var back Cloid
	if err := msgpack.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	td.Cmp(t, back, c)
}
