// Package rest carries the JSON POST plumbing shared by the info and
// exchange endpoints.
package rest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samber/mo"

	"github.com/rendal/go-hypercore/network"
)

type Client struct {
	net     network.Network
	http    *resty.Client
	timeout mo.Option[time.Duration]
}

// ClientInterface is the contract the higher level clients program
// against, mockable in tests.
type ClientInterface interface {
	Post(ctx context.Context, path string, body any, result any) error
}

type Config struct {
	// Network selects the deployment to talk to. The zero value is not
	// usable; pass network.Mainnet(), network.Testnet() or network.Local().
	Network network.Network
	// BaseURL overrides the network's API URL, for tests and custom
	// gateways.
	BaseURL string
	// Timeout bounds each request. Zero means no timeout beyond the
	// caller's context.
	Timeout time.Duration
}

func New(c Config) *Client {
	var timeout mo.Option[time.Duration]
	if c.Timeout != 0 {
		timeout = mo.Some(c.Timeout)
	}

	baseURL := c.Network.APIURL()
	if c.BaseURL != "" {
		baseURL = c.BaseURL
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	return &Client{
		net:     c.Network,
		http:    http,
		timeout: timeout,
	}
}

func (c *Client) Network() network.Network { return c.net }

func (c *Client) IsMainnet() bool { return c.net.IsMainnet() }

// Post sends a POST request to the given path and unmarshals the JSON
// response into result.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body any,
	result any,
) error {
	if timeout, ok := c.timeout.Get(); ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&result).
		Post(path)
	if err != nil {
		return err
	}

	return handleException(resp)
}

// post is the typed convenience form of Client.Post.
func post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var result T
	if err := c.Post(ctx, path, body, &result); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
