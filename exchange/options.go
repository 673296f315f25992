package exchange

import (
	"github.com/samber/mo"

	"github.com/rendal/go-hypercore/signing"
	"github.com/rendal/go-hypercore/types"
)

/*//////////////////////////////////////////////////////////////
                             ORDER
//////////////////////////////////////////////////////////////*/

// OrderOption is a functional option for Order and BulkOrders.
type OrderOption func(*orderConfig)

type orderConfig struct {
	reduceOnly bool
	cloid      mo.Option[types.Cloid]
	builder    mo.Option[signing.BuilderInfo]
	grouping   string
}

func defaultOrderConfig() orderConfig {
	return orderConfig{grouping: signing.GroupingNa}
}

// WithReduceOnly marks the order as position reducing. Ignored by
// BulkOrders, where each request carries its own flag.
func WithReduceOnly(reduceOnly bool) OrderOption {
	return func(cfg *orderConfig) {
		cfg.reduceOnly = reduceOnly
	}
}

// WithCloid attaches a client order id. Ignored by BulkOrders.
func WithCloid(cloid types.Cloid) OrderOption {
	return func(cfg *orderConfig) {
		cfg.cloid = mo.Some(cloid)
	}
}

// WithBuilder routes a share of the fee to a builder address. The
// builder must have been approved with ApproveBuilderFee.
func WithBuilder(builder signing.BuilderInfo) OrderOption {
	return func(cfg *orderConfig) {
		cfg.builder = mo.Some(builder)
	}
}

// WithGrouping sets the TP/SL grouping for the batch.
func WithGrouping(grouping string) OrderOption {
	return func(cfg *orderConfig) {
		cfg.grouping = grouping
	}
}

/*//////////////////////////////////////////////////////////////
                          MARKET ORDER
//////////////////////////////////////////////////////////////*/

// MarketOrderOption is a functional option for MarketOpen.
type MarketOrderOption func(*marketOrderConfig)

type marketOrderConfig struct {
	px       mo.Option[float64]
	cloid    mo.Option[types.Cloid]
	slippage float64
}

func defaultMarketOrderConfig() marketOrderConfig {
	return marketOrderConfig{slippage: DefaultSlippage}
}

// WithMarketPrice prices off the given value instead of the mid.
func WithMarketPrice(px float64) MarketOrderOption {
	return func(cfg *marketOrderConfig) {
		cfg.px = mo.Some(px)
	}
}

// WithMarketSlippage overrides the default slippage fraction.
func WithMarketSlippage(slippage float64) MarketOrderOption {
	return func(cfg *marketOrderConfig) {
		cfg.slippage = slippage
	}
}

// WithMarketCloid attaches a client order id.
func WithMarketCloid(cloid types.Cloid) MarketOrderOption {
	return func(cfg *marketOrderConfig) {
		cfg.cloid = mo.Some(cloid)
	}
}

/*//////////////////////////////////////////////////////////////
                          MARKET CLOSE
//////////////////////////////////////////////////////////////*/

// MarketCloseOption is a functional option for MarketClose.
type MarketCloseOption func(*marketCloseConfig)

type marketCloseConfig struct {
	sz       mo.Option[float64]
	px       mo.Option[float64]
	cloid    mo.Option[types.Cloid]
	slippage float64
}

func defaultMarketCloseConfig() marketCloseConfig {
	return marketCloseConfig{slippage: DefaultSlippage}
}

// WithCloseSize closes only part of the position.
func WithCloseSize(sz float64) MarketCloseOption {
	return func(cfg *marketCloseConfig) {
		cfg.sz = mo.Some(sz)
	}
}

// WithClosePrice prices off the given value instead of the mid.
func WithClosePrice(px float64) MarketCloseOption {
	return func(cfg *marketCloseConfig) {
		cfg.px = mo.Some(px)
	}
}

// WithCloseSlippage overrides the default slippage fraction.
func WithCloseSlippage(slippage float64) MarketCloseOption {
	return func(cfg *marketCloseConfig) {
		cfg.slippage = slippage
	}
}

// WithCloseCloid attaches a client order id.
func WithCloseCloid(cloid types.Cloid) MarketCloseOption {
	return func(cfg *marketCloseConfig) {
		cfg.cloid = mo.Some(cloid)
	}
}
