package exchange

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rendal/go-hypercore/signing"
	"github.com/rendal/go-hypercore/types"
)

// APIError is an application-level rejection: the request reached the
// exchange and came back with status "err".
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exchange rejected action: %s", e.Message)
}

// Response is the top-level exchange reply, generic over the "ok"
// payload type.
//
// Wire shape:
//
//	{
//	  "status": "ok" | "err",
//	  "response": <object or string>
//	}
type Response[T any] struct {
	Status       string
	Data         *T     // present when Status == "ok"
	ErrorMessage string // present when Status == "err"
}

// RawResponse carries the "ok" payload undecoded, for actions whose
// reply body the caller does not need structured.
type RawResponse = Response[json.RawMessage]

func (r *Response[T]) UnmarshalJSON(data []byte) error {
	var raw struct {
		Status   string          `json:"status"`
		Response json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	r.Status = raw.Status
	r.Data = nil
	r.ErrorMessage = ""

	switch raw.Status {
	case "ok":
		var payload T
		if len(raw.Response) > 0 {
			if err := json.Unmarshal(raw.Response, &payload); err != nil {
				return fmt.Errorf("unmarshal ok response body: %w", err)
			}
		}
		r.Data = &payload

	case "err":
		var msg string
		if err := json.Unmarshal(raw.Response, &msg); err != nil {
			msg = string(raw.Response)
		}
		r.ErrorMessage = msg

	default:
		r.ErrorMessage = fmt.Sprintf("unknown status %q: %s", raw.Status, raw.Response)
	}

	return nil
}

func (r Response[T]) IsOK() bool { return r.Status == "ok" && r.Data != nil }

// Err folds the reply into an error: nil when the exchange accepted the
// action, an *APIError otherwise.
func (r Response[T]) Err() error {
	if r.IsOK() {
		return nil
	}
	return &APIError{Message: r.ErrorMessage}
}

// statusesResponse is the "ok" payload of batch actions: a per-request
// status list under a type tag.
type statusesResponse[T any] struct {
	Type string `json:"type"`
	Data struct {
		Statuses []T `json:"statuses"`
	} `json:"data"`
}

func (r statusesResponse[T]) Statuses() []T { return r.Data.Statuses }

// OrderStatus is the per-order outcome of an order or modify batch.
// Exactly one field is set.
type OrderStatus struct {
	Resting *OrderStatusResting `json:"resting,omitempty"`
	Filled  *OrderStatusFilled  `json:"filled,omitempty"`
	Error   *string             `json:"error,omitempty"`
}

type OrderStatusResting struct {
	Oid   uint64       `json:"oid"`
	Cloid *types.Cloid `json:"cloid"`
}

type OrderStatusFilled struct {
	TotalSz types.FloatString `json:"totalSz"`
	AvgPx   types.FloatString `json:"avgPx"`
	Oid     uint64            `json:"oid"`
	Cloid   *types.Cloid      `json:"cloid"`
}

// CancelStatus is the per-cancel outcome: the bare string "success" on
// the wire, or an object carrying the rejection reason.
type CancelStatus struct {
	Success bool
	Error   string
}

func (c *CancelStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Success = s == "success"
		c.Error = ""
		return nil
	}

	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("unmarshal cancel status: %w", err)
	}

	c.Success = false
	c.Error = obj.Error
	return nil
}

// post signs the action under a fresh nonce and submits it.
func post[T any](ctx context.Context, e *Exchange, action signing.Action) (Response[T], error) {
	nonce := e.nonces.Next()

	req, err := signing.Sign(e.signer, action, nonce, e.net, e.vaultAddress, e.expiresAfter)
	if err != nil {
		return Response[T]{}, fmt.Errorf("failed to sign %s action: %w", action.ActionType(), err)
	}

	return submit[T](ctx, e, req)
}

func submit[T any](ctx context.Context, e *Exchange, req signing.SignedRequest) (Response[T], error) {
	var resp Response[T]
	if err := e.rest.Post(ctx, "/exchange", req, &resp); err != nil {
		return Response[T]{}, fmt.Errorf(
			"failed to post %s action: %w", req.Action.ActionType(), err,
		)
	}

	return resp, resp.Err()
}

// Submit posts a request signed elsewhere, such as the output of a
// signing.Aggregator.
func (e *Exchange) Submit(ctx context.Context, req signing.SignedRequest) (RawResponse, error) {
	return submit[json.RawMessage](ctx, e, req)
}
