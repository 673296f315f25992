// Package info queries exchange metadata and account state, and keeps
// the coin/asset registry the trading client needs to build orders.
package info

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rendal/go-hypercore/network"
	"github.com/rendal/go-hypercore/price"
	"github.com/rendal/go-hypercore/rest"
)

// Spot pairs live in a separate asset id range above the perp universe.
const spotAssetOffset = 10000

// Info provides market data and user account queries. Call Load once to
// populate the asset registry before using the lookup helpers.
type Info struct {
	rest rest.ClientInterface

	mu                sync.RWMutex
	coinToAsset       map[string]int
	nameToCoin        map[string]string
	assetToSzDecimals map[int]int
}

type Config struct {
	Network network.Network
	// BaseURL overrides the network's API URL.
	BaseURL string
	Timeout time.Duration
}

func New(cfg Config) *Info {
	client := rest.New(rest.Config{
		Network: cfg.Network,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})

	return NewWithClient(client)
}

// NewWithClient builds an Info over an existing REST client, shared with
// the trading client.
func NewWithClient(client rest.ClientInterface) *Info {
	return &Info{
		rest:              client,
		coinToAsset:       make(map[string]int),
		nameToCoin:        make(map[string]string),
		assetToSzDecimals: make(map[int]int),
	}
}

// Load fetches perp and spot metadata and rebuilds the asset registry.
func (i *Info) Load(ctx context.Context) error {
	meta, err := i.Meta(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to load perp metadata: %w", err)
	}

	spotMeta, err := i.SpotMeta(ctx)
	if err != nil {
		return fmt.Errorf("failed to load spot metadata: %w", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	for asset, assetInfo := range meta.Universe {
		i.coinToAsset[assetInfo.Name] = asset
		i.nameToCoin[assetInfo.Name] = assetInfo.Name
		i.assetToSzDecimals[asset] = assetInfo.SzDecimals
	}

	for _, pair := range spotMeta.Universe {
		asset := pair.Index + spotAssetOffset
		i.coinToAsset[pair.Name] = asset
		i.nameToCoin[pair.Name] = pair.Name

		base := pair.Tokens[0]
		if base < len(spotMeta.Tokens) {
			token := spotMeta.Tokens[base]
			i.assetToSzDecimals[asset] = token.SzDecimals

			// Pairs are also addressable by their display name,
			// e.g. "PURR/USDC" for the canonical USDC pair.
			display := token.Name + "/USDC"
			if _, taken := i.nameToCoin[display]; !taken {
				i.nameToCoin[display] = pair.Name
			}
		}
	}

	return nil
}

// GetAsset resolves a coin or display name to its asset id.
func (i *Info) GetAsset(name string) (int, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	asset, ok := i.coinToAsset[i.resolveCoin(name)]
	return asset, ok
}

// SzDecimals returns the size decimals of a market.
func (i *Info) SzDecimals(name string) (int, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	asset, ok := i.coinToAsset[i.resolveCoin(name)]
	if !ok {
		return 0, false
	}

	sz, ok := i.assetToSzDecimals[asset]
	return sz, ok
}

// PriceTickFor returns the price grid of a market, spot or perp
// depending on its asset id range.
func (i *Info) PriceTickFor(name string) (price.Tick, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	coin := i.resolveCoin(name)
	asset, ok := i.coinToAsset[coin]
	if !ok {
		return price.Tick{}, fmt.Errorf("unknown coin name: %s", name)
	}

	sz := i.assetToSzDecimals[asset]
	if asset >= spotAssetOffset {
		return price.ForSpot(sz), nil
	}
	return price.ForPerp(sz), nil
}

// Coin resolves a display name to the coin symbol the API expects.
func (i *Info) Coin(name string) string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.resolveCoin(name)
}

// resolveCoin must be called with the lock held.
func (i *Info) resolveCoin(name string) string {
	if coin, ok := i.nameToCoin[name]; ok {
		return coin
	}
	return name
}

// AllMids retrieves mid prices for all coins, falling back to the last
// trade price when the book is empty.
func (i *Info) AllMids(ctx context.Context, dex string) (map[string]string, error) {
	var result map[string]string
	err := i.rest.Post(ctx, "/info", map[string]any{
		"type": "allMids",
		"dex":  dex,
	}, &result)

	return result, err
}

// L2Snapshot retrieves up to 20 levels of the order book for a coin.
func (i *Info) L2Snapshot(ctx context.Context, name string) (*L2BookSnapshot, error) {
	var result L2BookSnapshot
	err := i.rest.Post(ctx, "/info", map[string]any{
		"type": "l2Book",
		"coin": i.Coin(name),
	}, &result)

	return &result, err
}

// Meta retrieves exchange metadata for perpetuals.
func (i *Info) Meta(ctx context.Context, dex string) (*Meta, error) {
	var result Meta
	err := i.rest.Post(ctx, "/info", map[string]any{
		"type": "meta",
		"dex":  dex,
	}, &result)

	return &result, err
}

// SpotMeta retrieves exchange metadata for spot trading.
func (i *Info) SpotMeta(ctx context.Context) (*SpotMeta, error) {
	var result SpotMeta
	err := i.rest.Post(ctx, "/info", map[string]any{
		"type": "spotMeta",
	}, &result)

	return &result, err
}

// UserState retrieves account portfolio and position data.
func (i *Info) UserState(ctx context.Context, address string, dex string) (*UserState, error) {
	var result UserState
	err := i.rest.Post(ctx, "/info", map[string]any{
		"type": "clearinghouseState",
		"user": address,
		"dex":  dex,
	}, &result)

	return &result, err
}

// SpotUserState retrieves spot balances.
func (i *Info) SpotUserState(ctx context.Context, address string) (any, error) {
	var result any
	err := i.rest.Post(ctx, "/info", map[string]any{
		"type": "spotClearinghouseState",
		"user": address,
	}, &result)

	return result, err
}

// OpenOrders retrieves a user's active orders.
func (i *Info) OpenOrders(ctx context.Context, address string, dex string) ([]OpenOrder, error) {
	var result []OpenOrder
	err := i.rest.Post(ctx, "/info", map[string]any{
		"type": "openOrders",
		"user": address,
		"dex":  dex,
	}, &result)

	return result, err
}

// UserFills retrieves a user's executed trades.
func (i *Info) UserFills(ctx context.Context, address string) ([]Fill, error) {
	var result []Fill
	err := i.rest.Post(ctx, "/info", map[string]any{
		"type": "userFills",
		"user": address,
	}, &result)

	return result, err
}

// UserFillsByTime retrieves a user's fills within a time range.
func (i *Info) UserFillsByTime(
	ctx context.Context,
	address string,
	startTime int64,
	endTime *int64,
	aggregateByTime bool,
) ([]Fill, error) {
	req := map[string]any{
		"type":            "userFillsByTime",
		"user":            address,
		"startTime":       startTime,
		"aggregateByTime": aggregateByTime,
	}
	if endTime != nil {
		req["endTime"] = *endTime
	}

	var result []Fill
	err := i.rest.Post(ctx, "/info", req, &result)

	return result, err
}

// FundingHistory retrieves funding history for a coin.
func (i *Info) FundingHistory(
	ctx context.Context,
	name string,
	startTime int64,
	endTime *int64,
) ([]FundingRecord, error) {
	req := map[string]any{
		"type":      "fundingHistory",
		"coin":      i.Coin(name),
		"startTime": startTime,
	}
	if endTime != nil {
		req["endTime"] = *endTime
	}

	var result []FundingRecord
	err := i.rest.Post(ctx, "/info", req, &result)

	return result, err
}

// CandlesSnapshot retrieves OHLC data for a coin and interval.
func (i *Info) CandlesSnapshot(
	ctx context.Context,
	name string,
	interval string,
	startTime int64,
	endTime int64,
) ([]Candle, error) {
	var result []Candle
	err := i.rest.Post(ctx, "/info", map[string]any{
		"type": "candleSnapshot",
		"req": map[string]any{
			"coin":      i.Coin(name),
			"interval":  interval,
			"startTime": startTime,
			"endTime":   endTime,
		},
	}, &result)

	return result, err
}

// UserFees retrieves a user's fee schedule and trailing volume.
func (i *Info) UserFees(ctx context.Context, address string) (any, error) {
	var result any
	err := i.rest.Post(ctx, "/info", map[string]any{
		"type": "userFees",
		"user": address,
	}, &result)

	return result, err
}
