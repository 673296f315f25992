package exchange

import (
	"fmt"

	"github.com/rendal/go-hypercore/internal/utils"
	"github.com/rendal/go-hypercore/signing"
	"github.com/rendal/go-hypercore/types"
)

// OrderRequest is an order before wire rendering: prices and sizes are
// floats, the coin is a name the registry can resolve.
type OrderRequest struct {
	Coin       string
	IsBuy      bool
	Sz         float64
	LimitPx    float64
	OrderType  OrderType
	ReduceOnly bool
	Cloid      *types.Cloid
}

// OrderType selects limit or trigger execution. Exactly one field is set.
type OrderType struct {
	Limit   *LimitOrder
	Trigger *TriggerOrder
}

type LimitOrder struct {
	// Tif is one of signing.TifAlo, TifIoc, TifGtc.
	Tif string
}

type TriggerOrder struct {
	IsMarket  bool
	TriggerPx float64
	// TpSl is "tp" or "sl".
	TpSl string
}

// ModifyRequest replaces the resting order oid with a new order.
type ModifyRequest struct {
	Oid   uint64
	Order OrderRequest
}

type CancelRequest struct {
	Coin string
	Oid  uint64
}

type CancelByCloidRequest struct {
	Coin  string
	Cloid types.Cloid
}

// toWire renders the order into canonical form. Float prices and sizes
// become decimal strings; values that do not survive the conversion
// exactly are rejected rather than silently rounded.
func (o OrderRequest) toWire(asset int) (signing.OrderWire, error) {
	sz, err := utils.FloatToWire(o.Sz)
	if err != nil {
		return signing.OrderWire{}, fmt.Errorf("failed to convert size: %w", err)
	}

	limitPx, err := utils.FloatToWire(o.LimitPx)
	if err != nil {
		return signing.OrderWire{}, fmt.Errorf("failed to convert limit price: %w", err)
	}

	orderType, err := o.OrderType.toWire()
	if err != nil {
		return signing.OrderWire{}, err
	}

	return signing.OrderWire{
		Asset:      asset,
		IsBuy:      o.IsBuy,
		LimitPx:    limitPx,
		Sz:         sz,
		ReduceOnly: o.ReduceOnly,
		OrderType:  orderType,
		Cloid:      o.Cloid,
	}, nil
}

func (t OrderType) toWire() (signing.OrderType, error) {
	var wire signing.OrderType

	if t.Limit != nil {
		wire.Limit = &signing.LimitOrderType{Tif: t.Limit.Tif}
	}

	if t.Trigger != nil {
		triggerPx, err := utils.FloatToWire(t.Trigger.TriggerPx)
		if err != nil {
			return signing.OrderType{}, fmt.Errorf("failed to convert trigger price: %w", err)
		}

		wire.Trigger = &signing.TriggerOrderType{
			TriggerPx: triggerPx,
			IsMarket:  t.Trigger.IsMarket,
			Tpsl:      t.Trigger.TpSl,
		}
	}

	if (wire.Limit == nil) == (wire.Trigger == nil) {
		return signing.OrderType{}, fmt.Errorf("order type must be exactly one of limit or trigger")
	}

	return wire, nil
}
