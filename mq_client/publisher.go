package mq_client

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/zenithex/zenex/config"
	"github.com/zenithex/zenex/matching"
	"github.com/zenithex/zenex/types"
)

const depthCacheTTL = 24 * time.Hour

// Publisher pushes public engine events onto the AMQP exchanges and
// keeps the latest depth snapshot cached in redis for the API layer.
type Publisher struct {
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func streamName(symbol string) string {
	return strings.ToLower(strings.ReplaceAll(symbol, "/", ""))
}

func DepthCacheKey(symbol string) string {
	return "zenex:depth:" + streamName(symbol)
}

func TickerCacheKey(symbol string) string {
	return "zenex:ticker:" + streamName(symbol)
}

func (p *Publisher) PublishOrder(o *matching.Order) error {
	payload, err := json.Marshal(map[string]interface{}{
		"event": "order",
		"order": o,
	})
	if err != nil {
		return err
	}

	Enqueue("events_processor", payload)

	return nil
}

func (p *Publisher) PublishTrade(trade *matching.Trade) error {
	payload, err := json.Marshal(trade)
	if err != nil {
		return err
	}

	Enqueue("new_trade", payload)

	return EnqueueEvent("public", streamName(trade.Symbol), "trades", payload)
}

func (p *Publisher) PublishCancel(o *matching.Order) error {
	payload, err := json.Marshal(map[string]interface{}{
		"event": "cancel",
		"order": o,
	})
	if err != nil {
		return err
	}

	Enqueue("events_processor", payload)

	return nil
}

func (p *Publisher) PublishDepth(symbol string, depth types.Depth) error {
	if err := config.Redis.SetKey(DepthCacheKey(symbol), depth, depthCacheTTL); err != nil {
		return err
	}

	payload, err := json.Marshal(depth)
	if err != nil {
		return err
	}

	Enqueue("depth_cache", payload)

	return EnqueueEvent("public", streamName(symbol), "depth", payload)
}
