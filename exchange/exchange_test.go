package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/maxatome/go-testdeep/td"

	"github.com/rendal/go-hypercore/network"
	"github.com/rendal/go-hypercore/rest"
	"github.com/rendal/go-hypercore/types"
)

const testKeyHex = "0123456789012345678901234567890123456789012345678901234567890123"

// mockTransport answers info queries from fixtures and records every
// body posted to the exchange endpoint as decoded JSON.
type mockTransport struct {
	exchangeReply string
	mids          map[string]string
	positions     string
	requests      []map[string]any
}

var _ rest.ClientInterface = (*mockTransport)(nil)

func (m *mockTransport) Post(_ context.Context, path string, body any, result any) error {
	switch path {
	case "/info":
		return m.serveInfo(body, result)
	case "/exchange":
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}

		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return err
		}
		m.requests = append(m.requests, decoded)

		reply := m.exchangeReply
		if reply == "" {
			reply = `{"status":"ok","response":{"type":"default"}}`
		}
		return json.Unmarshal([]byte(reply), result)
	default:
		return fmt.Errorf("unexpected path: %s", path)
	}
}

func (m *mockTransport) serveInfo(body any, result any) error {
	req := body.(map[string]any)

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
	case "allMids":
		raw, err := json.Marshal(m.mids)
		if err != nil {
			return err
		}
		payload = string(raw)
	case "clearinghouseState":
		payload = m.positions
	default:
		return fmt.Errorf("unexpected info type: %v", req["type"])
	}

	return json.Unmarshal([]byte(payload), result)
}

func newTestExchange(t *testing.T, transport *mockTransport) *Exchange {
	t.Helper()

	e, err := newWithClient(Config{
		Network:    network.Testnet(),
		PrivateKey: testKeyHex,
	}, transport)
	if err != nil {
		t.Fatal(err)
	}

	if err := e.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return e
}

// lastRequest digs into the most recent exchange body.
func lastRequest(t *testing.T, m *mockTransport) map[string]any {
	t.Helper()

	if len(m.requests) == 0 {
		t.Fatal("no exchange request captured")
	}
	return m.requests[len(m.requests)-1]
}

func TestOrderBuildsWire(t *testing.T) {
	transport := &mockTransport{
		exchangeReply: `{"status":"ok","response":{"type":"order","data":{"statuses":[{"resting":{"oid":77}}]}}}`,
	}
	e := newTestExchange(t, transport)

	cloid := types.HexToCloid("0x00000000000000000000000000000001")
	status, err := e.Order(
		context.Background(),
		"ETH", true, 0.5, 2000,
		OrderType{Limit: &LimitOrder{Tif: "Gtc"}},
		WithCloid(cloid),
	)
	if err != nil {
		t.Fatal(err)
	}

	if status.Resting == nil || status.Resting.Oid != 77 {
		t.Fatalf("unexpected status: %+v", status)
	}

	req := lastRequest(t, transport)
	action := req["action"].(map[string]any)
	td.Cmp(t, action["type"], "order")
	td.Cmp(t, action["grouping"], "na")

	orders := action["orders"].([]any)
	td.Cmp(t, len(orders), 1)

	order := orders[0].(map[string]any)
	td.Cmp(t, order["a"], float64(1))
	td.Cmp(t, order["b"], true)
	td.Cmp(t, order["p"], "2000")
	td.Cmp(t, order["s"], "0.5")
	td.Cmp(t, order["r"], false)
	td.Cmp(t, order["c"], cloid.Hex())
	td.Cmp(t, order["t"].(map[string]any)["limit"].(map[string]any)["tif"], "Gtc")

	// No vault configured, but the key must be present and null.
	vault, present := req["vaultAddress"]
	if !present || vault != nil {
		t.Fatalf("vaultAddress = %v (present=%v), want explicit null", vault, present)
	}

	sig := req["signature"].(map[string]any)
	for _, field := range []string{"r", "s", "v"} {
		if _, ok := sig[field]; !ok {
			t.Fatalf("signature missing %q", field)
		}
	}

	if req["nonce"].(float64) <= 0 {
		t.Fatal("nonce not set")
	}
}

func TestOrderUnknownCoin(t *testing.T) {
	e := newTestExchange(t, &mockTransport{})

	_, err := e.Order(
		context.Background(),
		"DOGE", true, 1, 1,
		OrderType{Limit: &LimitOrder{Tif: "Gtc"}},
	)
	if err == nil {
		t.Fatal("expected error for unknown coin")
	}
}

func TestBulkCancel(t *testing.T) {
	transport := &mockTransport{
		exchangeReply: `{"status":"ok","response":{"type":"cancel","data":{"statuses":["success",{"error":"Order not found"}]}}}`,
	}
	e := newTestExchange(t, transport)

	statuses, err := e.BulkCancel(context.Background(), []CancelRequest{
		{Coin: "BTC", Oid: 1},
		{Coin: "ETH", Oid: 2},
	})
	if err != nil {
		t.Fatal(err)
	}

	td.Cmp(t, statuses, []CancelStatus{
		{Success: true},
		{Error: "Order not found"},
	})

	action := lastRequest(t, transport)["action"].(map[string]any)
	td.Cmp(t, action["type"], "cancel")

	cancels := action["cancels"].([]any)
	td.Cmp(t, cancels[0].(map[string]any)["a"], float64(0))
	td.Cmp(t, cancels[1].(map[string]any)["a"], float64(1))
}

func TestMarketOpenPricesOffMid(t *testing.T) {
	transport := &mockTransport{
		mids:          map[string]string{"ETH": "2000.0"},
		exchangeReply: `{"status":"ok","response":{"type":"order","data":{"statuses":[{"filled":{"totalSz":"0.5","avgPx":"2001.0","oid":5}}]}}}`,
	}
	e := newTestExchange(t, transport)

	status, err := e.MarketOpen(context.Background(), "ETH", true, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if status.Filled == nil {
		t.Fatalf("unexpected status: %+v", status)
	}

	action := lastRequest(t, transport)["action"].(map[string]any)
	order := action["orders"].([]any)[0].(map[string]any)

	// Mid pushed through 5% slippage and snapped to the grid.
	td.Cmp(t, order["p"], "2100")
	td.Cmp(t, order["t"].(map[string]any)["limit"].(map[string]any)["tif"], "Ioc")
	td.Cmp(t, order["r"], false)
}

func TestMarketClose(t *testing.T) {
	transport := &mockTransport{
		mids: map[string]string{"ETH": "2000.0"},
		positions: `{
			"assetPositions":[{"type":"oneWay","position":{
				"coin":"ETH","szi":"2.5","leverage":{"type":"cross","value":10},
				"marginUsed":"0","positionValue":"0","returnOnEquity":"0","unrealizedPnl":"0"
			}}],
			"crossMarginSummary":{"accountValue":"0","totalMarginUsed":"0"},
			"marginSummary":{"accountValue":"0","totalMarginUsed":"0"},
			"withdrawable":"0"
		}`,
		exchangeReply: `{"status":"ok","response":{"type":"order","data":{"statuses":[{"resting":{"oid":9}}]}}}`,
	}
	e := newTestExchange(t, transport)

	if _, err := e.MarketClose(context.Background(), "ETH"); err != nil {
		t.Fatal(err)
	}

	action := lastRequest(t, transport)["action"].(map[string]any)
	order := action["orders"].([]any)[0].(map[string]any)

	// Long position closes with a reduce-only sell below the mid.
	td.Cmp(t, order["b"], false)
	td.Cmp(t, order["r"], true)
	td.Cmp(t, order["s"], "2.5")
	td.Cmp(t, order["p"], "1900")
}

func TestUpdateLeverageResolvesAsset(t *testing.T) {
	transport := &mockTransport{}
	e := newTestExchange(t, transport)

	if _, err := e.UpdateLeverage(context.Background(), "ETH", true, 20); err != nil {
		t.Fatal(err)
	}

	action := lastRequest(t, transport)["action"].(map[string]any)
	td.Cmp(t, action["type"], "updateLeverage")
	td.Cmp(t, action["asset"], float64(1))
	td.Cmp(t, action["isCross"], true)
	td.Cmp(t, action["leverage"], float64(20))
}

func TestUsdTransferEmbedsNonce(t *testing.T) {
	transport := &mockTransport{}
	e := newTestExchange(t, transport)

	dest := common.HexToAddress("0x5e9ee1089755c3435139848e47e6635505d5a13a")
	if _, err := e.UsdTransfer(context.Background(), dest, 1); err != nil {
		t.Fatal(err)
	}

	req := lastRequest(t, transport)
	action := req["action"].(map[string]any)
	td.Cmp(t, action["type"], "usdSend")
	td.Cmp(t, action["destination"], "0x5e9ee1089755c3435139848e47e6635505d5a13a")
	td.Cmp(t, action["amount"], "1")
	td.Cmp(t, action["hyperliquidChain"], "Testnet")
	td.Cmp(t, action["signatureChainId"], "0x66eee")

	// The typed-data nonce and the request nonce must agree.
	td.Cmp(t, action["time"], req["nonce"])

	// Transfer-class actions never route through a vault.
	if req["vaultAddress"] != nil {
		t.Fatalf("vaultAddress = %v, want null", req["vaultAddress"])
	}
}

func TestScheduleCancel(t *testing.T) {
	transport := &mockTransport{}
	e := newTestExchange(t, transport)

	at := uint64(2000000000000)
	if _, err := e.ScheduleCancel(context.Background(), &at); err != nil {
		t.Fatal(err)
	}

	action := lastRequest(t, transport)["action"].(map[string]any)
	td.Cmp(t, action["type"], "scheduleCancel")
	td.Cmp(t, action["time"], float64(at))

	// Disarm drops the time field entirely.
	if _, err := e.ScheduleCancel(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	action = lastRequest(t, transport)["action"].(map[string]any)
	if _, present := action["time"]; present {
		t.Fatal("disarm must omit the time field")
	}
}

func TestVaultAddressFlowsIntoRequest(t *testing.T) {
	transport := &mockTransport{}

	vault := common.HexToAddress("0x1719884eb866cb12b2287399b15f7db5e7d775ea")
	e, err := newWithClient(Config{
		Network:      network.Testnet(),
		PrivateKey:   testKeyHex,
		VaultAddress: vault,
	}, transport)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	td.Cmp(t, e.Address(), vault)

	if _, err := e.Noop(context.Background()); err != nil {
		t.Fatal(err)
	}

	req := lastRequest(t, transport)
	td.Cmp(t, req["vaultAddress"], strings.ToLower(vault.Hex()))
}

func TestAPIErrorSurfaces(t *testing.T) {
	transport := &mockTransport{
		exchangeReply: `{"status":"err","response":"Insufficient margin"}`,
	}
	e := newTestExchange(t, transport)

	_, err := e.Noop(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	td.Cmp(t, apiErr.Message, "Insufficient margin")
}

func TestNewRejectsMissingKey(t *testing.T) {
	_, err := New(Config{Network: network.Testnet()})
	if err == nil {
		t.Fatal("expected error without signer or key")
	}
}
