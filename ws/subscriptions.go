package ws

import (
	"fmt"
	"log"
	"strings"
)

// SubscriptionType identifies a stream and carries the payload the
// server expects in subscribe and unsubscribe requests.
type SubscriptionType interface {
	identifier() string
	payload() map[string]any
}

type AllMidsSubscription struct{}

func (AllMidsSubscription) identifier() string { return "allMids" }
func (AllMidsSubscription) payload() map[string]any {
	return map[string]any{"type": "allMids"}
}

type L2BookSubscription struct {
	Coin string
}

func (s L2BookSubscription) identifier() string {
	return "l2Book:" + strings.ToLower(s.Coin)
}
func (s L2BookSubscription) payload() map[string]any {
	return map[string]any{"type": "l2Book", "coin": s.Coin}
}

type TradesSubscription struct {
	Coin string
}

func (s TradesSubscription) identifier() string {
	return "trades:" + strings.ToLower(s.Coin)
}
func (s TradesSubscription) payload() map[string]any {
	return map[string]any{"type": "trades", "coin": s.Coin}
}

type BboSubscription struct {
	Coin string
}

func (s BboSubscription) identifier() string {
	return "bbo:" + strings.ToLower(s.Coin)
}
func (s BboSubscription) payload() map[string]any {
	return map[string]any{"type": "bbo", "coin": s.Coin}
}

type CandleSubscription struct {
	Coin     string
	Interval string
}

func (s CandleSubscription) identifier() string {
	return fmt.Sprintf("candle:%s,%s", strings.ToLower(s.Coin), s.Interval)
}
func (s CandleSubscription) payload() map[string]any {
	return map[string]any{"type": "candle", "coin": s.Coin, "interval": s.Interval}
}

type OrderUpdatesSubscription struct {
	User string
}

func (OrderUpdatesSubscription) identifier() string { return "orderUpdates" }
func (s OrderUpdatesSubscription) payload() map[string]any {
	return map[string]any{"type": "orderUpdates", "user": s.User}
}

type UserFillsSubscription struct {
	User string
}

func (s UserFillsSubscription) identifier() string {
	return "userFills:" + strings.ToLower(s.User)
}
func (s UserFillsSubscription) payload() map[string]any {
	return map[string]any{"type": "userFills", "user": s.User}
}

type UserEventsSubscription struct {
	User string
}

func (UserEventsSubscription) identifier() string { return "userEvents" }
func (s UserEventsSubscription) payload() map[string]any {
	return map[string]any{"type": "userEvents", "user": s.User}
}

// Subscription is the caller's handle on an active stream.
type Subscription struct {
	client *Client
	typ    SubscriptionType
	id     int64
}

// Unsubscribe stops delivery. When the last consumer of a stream leaves,
// the server-side subscription is dropped too.
func (s *Subscription) Unsubscribe() {
	if remaining := s.client.unregister(s.typ.identifier(), s.id); remaining {
		return
	}

	err := s.client.send(map[string]any{
		"method":       "unsubscribe",
		"subscription": s.typ.payload(),
	})
	if err != nil {
		log.Printf("error sending unsubscribe message: %v", err)
	}
}

// Subscribe registers ch on the stream described by typ. Messages that
// arrive while ch is full are dropped.
func Subscribe[T any](c *Client, typ SubscriptionType, ch chan<- T) (*Subscription, error) {
	identifier := typ.identifier()

	s := &subscription{
		id: c.subscriptionID(),
		deliver: func(raw []byte) {
			var msg T
			if err := unmarshalStream(raw, &msg); err != nil {
				log.Printf("failed to unmarshal %s message: %v", identifier, err)
				return
			}

			select {
			case ch <- msg:
			default:
				log.Printf("dropping %s message: subscriber not keeping up", identifier)
			}
		},
	}

	if err := c.register(identifier, s); err != nil {
		return nil, err
	}

	err := c.send(map[string]any{
		"method":       "subscribe",
		"subscription": typ.payload(),
	})
	if err != nil {
		c.unregister(identifier, s.id)
		return nil, err
	}

	return &Subscription{client: c, typ: typ, id: s.id}, nil
}

// SubscribeAllMids streams mid prices for every coin.
func (c *Client) SubscribeAllMids(ch chan<- AllMidsMessage) (*Subscription, error) {
	return Subscribe(c, AllMidsSubscription{}, ch)
}

// SubscribeL2Book streams order book snapshots for a coin.
func (c *Client) SubscribeL2Book(coin string, ch chan<- L2BookMessage) (*Subscription, error) {
	return Subscribe(c, L2BookSubscription{Coin: coin}, ch)
}

// SubscribeTrades streams executed trades for a coin.
func (c *Client) SubscribeTrades(coin string, ch chan<- TradesMessage) (*Subscription, error) {
	return Subscribe(c, TradesSubscription{Coin: coin}, ch)
}

// SubscribeBbo streams best bid/offer updates for a coin.
func (c *Client) SubscribeBbo(coin string, ch chan<- BboMessage) (*Subscription, error) {
	return Subscribe(c, BboSubscription{Coin: coin}, ch)
}

// SubscribeCandle streams OHLC updates for a coin and interval.
func (c *Client) SubscribeCandle(coin, interval string, ch chan<- CandleMessage) (*Subscription, error) {
	return Subscribe(c, CandleSubscription{Coin: coin, Interval: interval}, ch)
}

// SubscribeOrderUpdates streams order lifecycle events for a user. At
// most one consumer may be active.
func (c *Client) SubscribeOrderUpdates(user string, ch chan<- OrderUpdatesMessage) (*Subscription, error) {
	return Subscribe(c, OrderUpdatesSubscription{User: user}, ch)
}

// SubscribeUserFills streams fills for a user.
func (c *Client) SubscribeUserFills(user string, ch chan<- UserFillsMessage) (*Subscription, error) {
	return Subscribe(c, UserFillsSubscription{User: user}, ch)
}

// SubscribeUserEvents streams account events for a user. At most one
// consumer may be active.
func (c *Client) SubscribeUserEvents(user string, ch chan<- UserEventsMessage) (*Subscription, error) {
	return Subscribe(c, UserEventsSubscription{User: user}, ch)
}
