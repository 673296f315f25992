// Package ws streams market data and account events over the exchange
// websocket. Subscriptions deliver into caller-owned channels; a slow
// consumer drops messages rather than stalling the read loop.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/rendal/go-hypercore/network"
)

const (
	pingInterval = 50 * time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 5 * time.Second
)

// Client multiplexes subscriptions over a single websocket connection.
// Construct with New, connect with Start, release with Close.
type Client struct {
	url string

	mu     sync.RWMutex
	conn   *websocket.Conn
	subs   map[string][]*subscription
	nextID int64

	stop chan struct{}
	wg   sync.WaitGroup
}

// subscription is one registered consumer: deliver decodes the raw
// channel payload and pushes it to the caller's channel.
type subscription struct {
	id      int64
	deliver func([]byte)
}

// New builds a client for the given network's websocket endpoint.
func New(net network.Network) *Client {
	return NewWithURL(net.WSURL())
}

// NewWithURL builds a client against an explicit endpoint, for tests and
// custom gateways. The path must include the /ws suffix.
func NewWithURL(url string) *Client {
	return &Client{
		url:  url,
		subs: make(map[string][]*subscription),
		stop: make(chan struct{}),
	}
}

// Start dials the endpoint and launches the read and ping loops.
func (c *Client) Start(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to websocket: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	return nil
}

// Close tears down the connection and waits for the loops to exit.
// Subscriber channels are not closed; they simply stop receiving.
func (c *Client) Close() {
	close(c.stop)

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close(websocket.StatusNormalClosure, "closing")
	}
	c.mu.Unlock()

	c.wg.Wait()
}

func (c *Client) readLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.stop:
			return
		default:
		}

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
		_, data, err := conn.Read(ctx)
		cancel()
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return
			}
			select {
			case <-c.stop:
			default:
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		// The server greets with a plain-text banner before any JSON.
		if strings.HasPrefix(string(data), "Websocket connection established") {
			continue
		}

		c.handleMessage(data)
	}
}

func (c *Client) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if err := c.send(map[string]any{"method": "ping"}); err != nil {
				log.Printf("websocket ping error: %v", err)
				return
			}
		}
	}
}

// handleMessage routes one incoming frame to the consumers registered
// under its identifier.
func (c *Client) handleMessage(data []byte) {
	var frame struct {
		Channel string          `json:"channel"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Printf("failed to unmarshal ws message: %v", err)
		return
	}

	switch frame.Channel {
	case "pong", "subscriptionResponse":
		return
	case "error":
		log.Printf("websocket server error: %s", frame.Data)
		return
	}

	identifier, ok := incomingIdentifier(frame.Channel, frame.Data)
	if !ok {
		log.Printf("websocket unknown channel: %s", frame.Channel)
		return
	}

	c.mu.RLock()
	subs := c.subs[identifier]
	c.mu.RUnlock()

	for _, s := range subs {
		s.deliver(frame.Data)
	}
}

// incomingIdentifier recovers the subscription identifier of a frame by
// peeking at the routing fields of its payload.
func incomingIdentifier(channel string, data json.RawMessage) (string, bool) {
	switch channel {
	case "allMids", "orderUpdates":
		return channel, true
	case "user":
		return "userEvents", true
	case "l2Book", "bbo":
		var peek struct {
			Coin string `json:"coin"`
		}
		if err := json.Unmarshal(data, &peek); err != nil {
			return "", false
		}
		return channel + ":" + strings.ToLower(peek.Coin), true
	case "trades":
		var trades []Trade
		if err := json.Unmarshal(data, &trades); err != nil || len(trades) == 0 {
			return "", false
		}
		return "trades:" + strings.ToLower(trades[0].Coin), true
	case "candle":
		var peek struct {
			S string `json:"s"`
			I string `json:"i"`
		}
		if err := json.Unmarshal(data, &peek); err != nil {
			return "", false
		}
		return "candle:" + strings.ToLower(peek.S) + "," + peek.I, true
	case "userFills":
		var peek struct {
			User string `json:"user"`
		}
		if err := json.Unmarshal(data, &peek); err != nil {
			return "", false
		}
		return "userFills:" + strings.ToLower(peek.User), true
	default:
		return "", false
	}
}

func (c *Client) send(msg map[string]any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		return fmt.Errorf("websocket not connected")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	return conn.Write(ctx, websocket.MessageText, data)
}

func (c *Client) register(identifier string, s *subscription) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The exchange allows a single consumer on these streams.
	if identifier == "userEvents" || identifier == "orderUpdates" {
		if len(c.subs[identifier]) != 0 {
			return fmt.Errorf("cannot subscribe to %s multiple times", identifier)
		}
	}

	c.subs[identifier] = append(c.subs[identifier], s)
	return nil
}

// unregister drops the subscription and reports whether any consumer is
// left on the identifier.
func (c *Client) unregister(identifier string, id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	remaining := c.subs[identifier][:0]
	for _, s := range c.subs[identifier] {
		if s.id != id {
			remaining = append(remaining, s)
		}
	}
	c.subs[identifier] = remaining

	return len(remaining) != 0
}

func (c *Client) subscriptionID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	return c.nextID
}
