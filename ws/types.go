package ws

import "encoding/json"

// L2Level is a single price level of the book.
type L2Level struct {
	Px string `json:"px"`
	Sz string `json:"sz"`
	N  int    `json:"n"`
}

type AllMidsMessage struct {
	Mids map[string]string `json:"mids"`
}

// L2BookMessage is a full book snapshot: levels[0] holds bids,
// levels[1] holds asks, both sorted best first.
type L2BookMessage struct {
	Coin   string       `json:"coin"`
	Levels [2][]L2Level `json:"levels"`
	Time   int64        `json:"time"`
}

type Trade struct {
	Coin  string    `json:"coin"`
	Side  string    `json:"side"` // "A" or "B"
	Px    string    `json:"px"`
	Sz    string    `json:"sz"`
	Hash  string    `json:"hash"`
	Time  int64     `json:"time"`
	Tid   int64     `json:"tid"`
	Users [2]string `json:"users"`
}

// TradesMessage batches the trades that printed in one frame.
type TradesMessage struct {
	Trades []Trade
}

type BboLevel struct {
	Px string `json:"px"`
	Sz string `json:"sz"`
	N  int    `json:"n"`
}

// BboMessage carries the top of book: bbo[0] is the best bid, bbo[1]
// the best ask. Either side may be null on an empty book.
type BboMessage struct {
	Coin string       `json:"coin"`
	Time int64        `json:"time"`
	Bbo  [2]*BboLevel `json:"bbo"`
}

// CandleMessage is one OHLC update. Field names mirror the wire format.
type CandleMessage struct {
	T int64  `json:"t"` // open time, ms
	S string `json:"s"` // coin
	I string `json:"i"` // interval
	O string `json:"o"`
	C string `json:"c"`
	H string `json:"h"`
	L string `json:"l"`
	V string `json:"v"`
	N int    `json:"n"` // trade count
}

type Fill struct {
	Coin          string `json:"coin"`
	Px            string `json:"px"`
	Sz            string `json:"sz"`
	Side          string `json:"side"`
	Time          int64  `json:"time"`
	StartPosition string `json:"startPosition"`
	Dir           string `json:"dir"`
	ClosedPnl     string `json:"closedPnl"`
	Hash          string `json:"hash"`
	Oid           uint64 `json:"oid"`
	Crossed       bool   `json:"crossed"`
	Fee           string `json:"fee"`
	Tid           int64  `json:"tid"`
	FeeToken      string `json:"feeToken"`
}

type UserFillsMessage struct {
	User       string `json:"user"`
	IsSnapshot bool   `json:"isSnapshot"`
	Fills      []Fill `json:"fills"`
}

type OrderUpdate struct {
	Order struct {
		Coin      string `json:"coin"`
		Side      string `json:"side"`
		LimitPx   string `json:"limitPx"`
		Sz        string `json:"sz"`
		Oid       uint64 `json:"oid"`
		Timestamp int64  `json:"timestamp"`
		OrigSz    string `json:"origSz"`
		Cloid     string `json:"cloid,omitempty"`
	} `json:"order"`
	Status          string `json:"status"`
	StatusTimestamp int64  `json:"statusTimestamp"`
}

// OrderUpdatesMessage batches the order state changes of one frame.
type OrderUpdatesMessage struct {
	Updates []OrderUpdate
}

// UserEventsMessage is one account event. Exactly one field is set.
type UserEventsMessage struct {
	Fills       []Fill          `json:"fills,omitempty"`
	Funding     json.RawMessage `json:"funding,omitempty"`
	Liquidation json.RawMessage `json:"liquidation,omitempty"`
}

// unmarshalStream decodes a channel payload into the subscriber's
// message type. Streams whose payload is a bare array get wrapped.
func unmarshalStream(raw []byte, v any) error {
	switch m := v.(type) {
	case *TradesMessage:
		return json.Unmarshal(raw, &m.Trades)
	case *OrderUpdatesMessage:
		return json.Unmarshal(raw, &m.Updates)
	default:
		return json.Unmarshal(raw, v)
	}
}
