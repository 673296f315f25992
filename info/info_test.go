package info

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/rendal/go-hypercore/price"
	"github.com/rendal/go-hypercore/rest"
)

type mockRestClient struct {
	postFunc func(ctx context.Context, path string, body any, result any) error
}

var _ rest.ClientInterface = (*mockRestClient)(nil)

func (m *mockRestClient) Post(ctx context.Context, path string, body any, result any) error {
	return m.postFunc(ctx, path, body, result)
}

// metaFixture answers meta and spotMeta queries with a small universe:
// BTC (perp 0, sz 5), ETH (perp 1, sz 4), and the PURR/USDC spot pair at
// index 0 (asset 10000, sz 0).
func metaFixture() *mockRestClient {
	return &mockRestClient{
		postFunc: func(_ context.Context, path string, body any, result any) error {
			req, ok := body.(map[string]any)
			if !ok {
				return errors.New("unexpected body type")
			}

			var payload string
			switch req["type"] {
			case "meta":
				payload = `{"universe":[
					{"name":"BTC","szDecimals":5},
					{"name":"ETH","szDecimals":4}
				]}`
			case "spotMeta":
				payload = `{
					"universe":[{"name":"PURR/USDC","tokens":[0,1],"index":0,"isCanonical":true}],
					"tokens":[
						{"name":"PURR","szDecimals":0,"weiDecimals":5,"index":0,"tokenId":"0x1","isCanonical":true},
						{"name":"USDC","szDecimals":8,"weiDecimals":8,"index":1,"tokenId":"0x2","isCanonical":true}
					]
				}`
			default:
				return errors.New("unexpected request type")
			}

			return json.Unmarshal([]byte(payload), result)
		},
	}
}

func loadedInfo(t *testing.T) *Info {
	t.Helper()

	i := NewWithClient(metaFixture())
	if err := i.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return i
}

func TestLoadBuildsRegistry(t *testing.T) {
	i := loadedInfo(t)

	tests := []struct {
		name  string
		asset int
		sz    int
	}{
		{name: "BTC", asset: 0, sz: 5},
		{name: "ETH", asset: 1, sz: 4},
		{name: "PURR/USDC", asset: 10000, sz: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset, ok := i.GetAsset(tt.name)
			if !ok {
				t.Fatalf("GetAsset(%q) not found", tt.name)
			}
			td.Cmp(t, asset, tt.asset)

			sz, ok := i.SzDecimals(tt.name)
			if !ok {
				t.Fatalf("SzDecimals(%q) not found", tt.name)
			}
			td.Cmp(t, sz, tt.sz)
		})
	}

	if _, ok := i.GetAsset("DOGE"); ok {
		t.Fatal("unknown coin should not resolve")
	}
}

func TestPriceTickFor(t *testing.T) {
	i := loadedInfo(t)

	tick, err := i.PriceTickFor("BTC")
	if err != nil {
		t.Fatal(err)
	}
	td.Cmp(t, tick, price.ForPerp(5))

	tick, err = i.PriceTickFor("PURR/USDC")
	if err != nil {
		t.Fatal(err)
	}
	td.Cmp(t, tick, price.ForSpot(0))

	if _, err := i.PriceTickFor("DOGE"); err == nil {
		t.Fatal("expected error for unknown coin")
	}
}

func TestQueriesSendCoinSymbol(t *testing.T) {
	var captured map[string]any

	client := &mockRestClient{
		postFunc: func(_ context.Context, path string, body any, result any) error {
			captured = body.(map[string]any)
			return json.Unmarshal([]byte(`{"coin":"BTC","levels":[[],[]],"time":1}`), result)
		},
	}

	i := NewWithClient(client)
	if _, err := i.L2Snapshot(context.Background(), "BTC"); err != nil {
		t.Fatal(err)
	}

	td.Cmp(t, captured["type"], "l2Book")
	td.Cmp(t, captured["coin"], "BTC")
}
