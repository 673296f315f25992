package exchange

import (
	"encoding/json"
	"testing"

	"github.com/maxatome/go-testdeep/td"
)

func TestResponseUnmarshalOK(t *testing.T) {
	payload := `{"status":"ok","response":{"type":"order","data":{"statuses":[
		{"resting":{"oid":77}},
		{"filled":{"totalSz":"0.02","avgPx":"1891.4","oid":78}},
		{"error":"Order must have minimum value of $10"}
	]}}}`

	var resp Response[statusesResponse[OrderStatus]]
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatal(err)
	}

	if !resp.IsOK() {
		t.Fatalf("expected ok response, got %+v", resp)
	}
	if err := resp.Err(); err != nil {
		t.Fatalf("Err() = %v on ok response", err)
	}

	statuses := resp.Data.Statuses()
	td.Cmp(t, len(statuses), 3)

	td.Cmp(t, statuses[0].Resting.Oid, uint64(77))
	td.Cmp(t, statuses[1].Filled.AvgPx.Raw(), 1891.4)
	td.Cmp(t, statuses[1].Filled.TotalSz.Raw(), 0.02)
	td.Cmp(t, *statuses[2].Error, "Order must have minimum value of $10")
}

func TestResponseUnmarshalErr(t *testing.T) {
	payload := `{"status":"err","response":"Invalid nonce"}`

	var resp RawResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatal(err)
	}

	if resp.IsOK() {
		t.Fatal("err response reported ok")
	}
	td.Cmp(t, resp.ErrorMessage, "Invalid nonce")

	apiErr, ok := resp.Err().(*APIError)
	if !ok {
		t.Fatalf("Err() = %T, want *APIError", resp.Err())
	}
	td.Cmp(t, apiErr.Message, "Invalid nonce")
}

func TestResponseUnmarshalUnknownStatus(t *testing.T) {
	payload := `{"status":"pending","response":{"whatever":1}}`

	var resp RawResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatal(err)
	}

	if resp.IsOK() {
		t.Fatal("unknown status reported ok")
	}
	if resp.Err() == nil {
		t.Fatal("unknown status must fold into an error")
	}
}

func TestCancelStatusUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want CancelStatus
	}{
		{name: "success string", in: `"success"`, want: CancelStatus{Success: true}},
		{name: "other string", in: `"waitingForTrigger"`, want: CancelStatus{}},
		{name: "error object", in: `{"error":"Order not found"}`, want: CancelStatus{Error: "Order not found"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got CancelStatus
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatal(err)
			}
			td.Cmp(t, got, tt.want)
		})
	}
}
