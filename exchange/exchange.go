// Package exchange is the trading client: it resolves coins to assets,
// renders orders into canonical wire form, signs them and posts them to
// the exchange endpoint.
package exchange

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/mo"

	"github.com/rendal/go-hypercore/info"
	"github.com/rendal/go-hypercore/internal/utils"
	"github.com/rendal/go-hypercore/network"
	"github.com/rendal/go-hypercore/rest"
	"github.com/rendal/go-hypercore/signing"
	"github.com/rendal/go-hypercore/types"
)

// DefaultSlippage is the max slippage applied to market orders when the
// caller does not set one (5%).
const DefaultSlippage = 0.05

type Config struct {
	// Network selects the deployment to trade against.
	Network network.Network
	// BaseURL overrides the network's API URL.
	BaseURL string
	Timeout time.Duration

	// Signer authorizes actions. When nil, PrivateKey is used to build a
	// local signer.
	Signer     signing.Signer
	PrivateKey string

	// AccountAddress is the account being traded for when Signer holds an
	// agent key rather than the account's own key.
	AccountAddress common.Address
	// VaultAddress routes actions to a vault or sub-account instead of
	// the signer's own account.
	VaultAddress common.Address
}

// Exchange submits signed actions. Call Load once before trading so coin
// names resolve to asset ids.
type Exchange struct {
	rest   rest.ClientInterface
	info   *info.Info
	signer signing.Signer
	net    network.Network
	nonces *signing.NonceHandler

	vaultAddress   mo.Option[common.Address]
	accountAddress mo.Option[common.Address]
	expiresAfter   mo.Option[uint64]
}

func New(cfg Config) (*Exchange, error) {
	client := rest.New(rest.Config{
		Network: cfg.Network,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})

	return newWithClient(cfg, client)
}

func newWithClient(cfg Config, client rest.ClientInterface) (*Exchange, error) {
	signer := cfg.Signer
	if signer == nil {
		var err error
		signer, err = signing.NewLocalSigner(cfg.PrivateKey)
		if err != nil {
			return nil, err
		}
	}

	var vaultAddress mo.Option[common.Address]
	if cfg.VaultAddress != (common.Address{}) {
		vaultAddress = mo.Some(cfg.VaultAddress)
	}

	var accountAddress mo.Option[common.Address]
	if cfg.AccountAddress != (common.Address{}) {
		accountAddress = mo.Some(cfg.AccountAddress)
	}

	return &Exchange{
		rest:           client,
		info:           info.NewWithClient(client),
		signer:         signer,
		net:            cfg.Network,
		nonces:         signing.NewNonceHandler(),
		vaultAddress:   vaultAddress,
		accountAddress: accountAddress,
	}, nil
}

// Load fetches exchange metadata and builds the coin/asset registry.
func (e *Exchange) Load(ctx context.Context) error {
	return e.info.Load(ctx)
}

// Info exposes the metadata client sharing this exchange's transport.
func (e *Exchange) Info() *info.Info { return e.info }

func (e *Exchange) Network() network.Network { return e.net }

// Address is the account actions act on: the configured account or vault
// when set, the signer's own address otherwise.
func (e *Exchange) Address() common.Address {
	if v, ok := e.vaultAddress.Get(); ok {
		return v
	}
	if a, ok := e.accountAddress.Get(); ok {
		return a
	}
	return e.signer.Address()
}

// SetExpiresAfter arms an expiry (a millisecond timestamp) that binds
// into every subsequent action's hash. The exchange rejects actions it
// sees after their expiry. Not supported on transfer-class actions,
// which ignore it.
func (e *Exchange) SetExpiresAfter(expiresAfter uint64) {
	e.expiresAfter = mo.Some(expiresAfter)
}

// ClearExpiresAfter removes the expiry.
func (e *Exchange) ClearExpiresAfter() {
	e.expiresAfter = mo.None[uint64]()
}

// Order places a single order. See BulkOrders for the batch form.
func (e *Exchange) Order(
	ctx context.Context,
	name string,
	isBuy bool,
	sz float64,
	limitPx float64,
	orderType OrderType,
	opts ...OrderOption,
) (*OrderStatus, error) {
	cfg := defaultOrderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	order := OrderRequest{
		Coin:       name,
		IsBuy:      isBuy,
		Sz:         sz,
		LimitPx:    limitPx,
		OrderType:  orderType,
		ReduceOnly: cfg.reduceOnly,
		Cloid:      optionPtr(cfg.cloid),
	}

	statuses, err := e.bulkOrders(ctx, []OrderRequest{order}, cfg)
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, fmt.Errorf("empty statuses in order response")
	}

	return &statuses[0], nil
}

// BulkOrders places multiple orders atomically.
func (e *Exchange) BulkOrders(
	ctx context.Context,
	orders []OrderRequest,
	opts ...OrderOption,
) ([]OrderStatus, error) {
	cfg := defaultOrderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return e.bulkOrders(ctx, orders, cfg)
}

func (e *Exchange) bulkOrders(
	ctx context.Context,
	orders []OrderRequest,
	cfg orderConfig,
) ([]OrderStatus, error) {
	if len(orders) == 0 {
		return nil, fmt.Errorf("at least one order is required")
	}

	wires := make([]signing.OrderWire, len(orders))
	for i, order := range orders {
		wire, err := e.orderToWire(order)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
		wires[i] = wire
	}

	action := signing.NewOrderAction(wires, cfg.grouping, optionPtr(cfg.builder))

	resp, err := post[statusesResponse[OrderStatus]](ctx, e, action)
	if err != nil {
		return nil, err
	}

	return resp.Data.Statuses(), nil
}

// Modify replaces a resting order in place, keeping its queue identity.
func (e *Exchange) Modify(
	ctx context.Context,
	oid uint64,
	order OrderRequest,
) (*OrderStatus, error) {
	statuses, err := e.BatchModify(ctx, []ModifyRequest{{Oid: oid, Order: order}})
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, fmt.Errorf("empty statuses in modify response")
	}

	return &statuses[0], nil
}

// BatchModify replaces multiple resting orders atomically.
func (e *Exchange) BatchModify(
	ctx context.Context,
	modifies []ModifyRequest,
) ([]OrderStatus, error) {
	if len(modifies) == 0 {
		return nil, fmt.Errorf("at least one modify is required")
	}

	wires := make([]signing.ModifyWire, len(modifies))
	for i, m := range modifies {
		wire, err := e.orderToWire(m.Order)
		if err != nil {
			return nil, fmt.Errorf("modify %d: %w", i, err)
		}
		wires[i] = signing.ModifyWire{Oid: m.Oid, Order: wire}
	}

	action := signing.NewBatchModifyAction(wires)

	resp, err := post[statusesResponse[OrderStatus]](ctx, e, action)
	if err != nil {
		return nil, err
	}

	return resp.Data.Statuses(), nil
}

// Cancel cancels a single resting order by exchange order id.
func (e *Exchange) Cancel(ctx context.Context, name string, oid uint64) (*CancelStatus, error) {
	statuses, err := e.BulkCancel(ctx, []CancelRequest{{Coin: name, Oid: oid}})
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, fmt.Errorf("empty statuses in cancel response")
	}

	return &statuses[0], nil
}

// BulkCancel cancels multiple resting orders atomically.
func (e *Exchange) BulkCancel(
	ctx context.Context,
	cancels []CancelRequest,
) ([]CancelStatus, error) {
	if len(cancels) == 0 {
		return nil, fmt.Errorf("at least one cancel is required")
	}

	wires := make([]signing.CancelWire, len(cancels))
	for i, c := range cancels {
		asset, ok := e.info.GetAsset(c.Coin)
		if !ok {
			return nil, fmt.Errorf("unknown coin: %s", c.Coin)
		}
		wires[i] = signing.CancelWire{Asset: asset, Oid: c.Oid}
	}

	action := signing.NewCancelAction(wires)

	resp, err := post[statusesResponse[CancelStatus]](ctx, e, action)
	if err != nil {
		return nil, err
	}

	return resp.Data.Statuses(), nil
}

// CancelByCloid cancels a resting order by its client order id.
func (e *Exchange) CancelByCloid(
	ctx context.Context,
	name string,
	cloid types.Cloid,
) (*CancelStatus, error) {
	statuses, err := e.BulkCancelByCloid(ctx, []CancelByCloidRequest{{Coin: name, Cloid: cloid}})
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, fmt.Errorf("empty statuses in cancel response")
	}

	return &statuses[0], nil
}

// BulkCancelByCloid cancels multiple resting orders by client order id.
func (e *Exchange) BulkCancelByCloid(
	ctx context.Context,
	cancels []CancelByCloidRequest,
) ([]CancelStatus, error) {
	if len(cancels) == 0 {
		return nil, fmt.Errorf("at least one cancel is required")
	}

	wires := make([]signing.CancelByCloidWire, len(cancels))
	for i, c := range cancels {
		asset, ok := e.info.GetAsset(c.Coin)
		if !ok {
			return nil, fmt.Errorf("unknown coin: %s", c.Coin)
		}
		wires[i] = signing.CancelByCloidWire{Asset: asset, Cloid: c.Cloid}
	}

	action := signing.NewCancelByCloidAction(wires)

	resp, err := post[statusesResponse[CancelStatus]](ctx, e, action)
	if err != nil {
		return nil, err
	}

	return resp.Data.Statuses(), nil
}

// MarketOpen opens a position with an aggressive Ioc limit order priced
// off the mid with slippage applied.
func (e *Exchange) MarketOpen(
	ctx context.Context,
	name string,
	isBuy bool,
	sz float64,
	opts ...MarketOrderOption,
) (*OrderStatus, error) {
	cfg := defaultMarketOrderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	px, err := e.slippagePrice(ctx, name, isBuy, cfg.slippage, cfg.px)
	if err != nil {
		return nil, err
	}

	orderOpts := []OrderOption{WithReduceOnly(false)}
	if cloid, ok := cfg.cloid.Get(); ok {
		orderOpts = append(orderOpts, WithCloid(cloid))
	}

	return e.Order(
		ctx,
		name,
		isBuy,
		sz,
		px,
		OrderType{Limit: &LimitOrder{Tif: signing.TifIoc}},
		orderOpts...,
	)
}

// MarketClose closes the open position in a coin, or part of it, with an
// aggressive reduce-only Ioc order.
func (e *Exchange) MarketClose(
	ctx context.Context,
	name string,
	opts ...MarketCloseOption,
) (*OrderStatus, error) {
	cfg := defaultMarketCloseConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	coin := e.info.Coin(name)
	userState, err := e.info.UserState(ctx, e.Address().Hex(), utils.GetDex(coin))
	if err != nil {
		return nil, fmt.Errorf("failed to get user state: %w", err)
	}

	var positionSize float64
	found := false
	for _, assetPos := range userState.AssetPositions {
		if assetPos.Position.Coin != coin {
			continue
		}
		positionSize, err = utils.StringToFloat(assetPos.Position.Szi)
		if err != nil {
			return nil, fmt.Errorf("invalid position size: %w", err)
		}
		found = true
		break
	}
	if !found || positionSize == 0 {
		return nil, fmt.Errorf("no position found for coin: %s", name)
	}

	closeSz := math.Abs(positionSize)
	if sz, ok := cfg.sz.Get(); ok {
		closeSz = sz
	}

	// Closing trades against the position.
	isBuy := positionSize < 0

	px, err := e.slippagePrice(ctx, name, isBuy, cfg.slippage, cfg.px)
	if err != nil {
		return nil, err
	}

	orderOpts := []OrderOption{WithReduceOnly(true)}
	if cloid, ok := cfg.cloid.Get(); ok {
		orderOpts = append(orderOpts, WithCloid(cloid))
	}

	return e.Order(
		ctx,
		name,
		isBuy,
		closeSz,
		px,
		OrderType{Limit: &LimitOrder{Tif: signing.TifIoc}},
		orderOpts...,
	)
}

func (e *Exchange) orderToWire(order OrderRequest) (signing.OrderWire, error) {
	asset, ok := e.info.GetAsset(order.Coin)
	if !ok {
		return signing.OrderWire{}, fmt.Errorf("unknown coin: %s", order.Coin)
	}

	return order.toWire(asset)
}

// slippagePrice derives the aggressive limit price for a market order:
// the mid (or override) pushed through by slippage, trimmed to 5
// significant figures and snapped to the market's price grid.
func (e *Exchange) slippagePrice(
	ctx context.Context,
	name string,
	isBuy bool,
	slippage float64,
	pxOverride mo.Option[float64],
) (float64, error) {
	coin := e.info.Coin(name)

	px, ok := pxOverride.Get()
	if !ok {
		mids, err := e.info.AllMids(ctx, utils.GetDex(coin))
		if err != nil {
			return 0, fmt.Errorf("failed to fetch mid prices: %w", err)
		}

		midStr, found := mids[coin]
		if !found {
			return 0, fmt.Errorf("mid price not found for coin: %s", name)
		}

		px, err = utils.StringToFloat(midStr)
		if err != nil {
			return 0, fmt.Errorf("invalid mid price for coin %s: %w", name, err)
		}
	}

	if isBuy {
		px *= 1 + slippage
	} else {
		px *= 1 - slippage
	}

	tick, err := e.info.PriceTickFor(name)
	if err != nil {
		return 0, err
	}

	px = utils.RoundToSigfig(px, 5)
	return utils.RoundToDecimals(px, int64(tick.MaxDecimals())), nil
}

func optionPtr[T any](o mo.Option[T]) *T {
	if v, ok := o.Get(); ok {
		return &v
	}
	return nil
}
