package cron

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jasonlvhit/gocron"
	"github.com/shopspring/decimal"

	"github.com/zenithex/zenex/config"
	"github.com/zenithex/zenex/models"
	"github.com/zenithex/zenex/mq_client"
	"github.com/zenithex/zenex/types"
)

type TickerJob struct {
}

func (j *TickerJob) Process() {
	s := gocron.NewScheduler()
	s.Every(5).Seconds().Do(refreshTickers)
	<-s.Start()
}

func refreshTickers() {
	for _, market := range models.EnabledMarkets() {
		ticker, err := buildTicker(market.Symbol)
		if err != nil {
			config.Logger.Errorf("Failed to build %s ticker: %v", market.Symbol, err)
			continue
		}

		config.Redis.SetKey(mq_client.TickerCacheKey(market.Symbol), ticker, redis.KeepTTL)
	}
}

// buildTicker aggregates the trailing 24h of trades the trade writer
// mirrored into influxdb.
func buildTicker(symbol string) (*types.Ticker, error) {
	cmd := fmt.Sprintf(
		"SELECT FIRST(price) AS open, MAX(price) AS high, MIN(price) AS low, LAST(price) AS last, SUM(amount) AS volume, SUM(total) AS amount FROM trades WHERE market = '%s' AND time > now() - 24h",
		symbol,
	)

	results, err := config.InfluxDB.Query(cmd)
	if err != nil {
		return nil, err
	}

	ticker := &types.Ticker{
		Open:   decimal.Zero,
		High:   decimal.Zero,
		Low:    decimal.Zero,
		Last:   decimal.Zero,
		Volume: decimal.Zero,
		Amount: decimal.Zero,
		At:     time.Now().Unix(),
	}

	if len(results) == 0 || len(results[0].Series) == 0 || len(results[0].Series[0].Values) == 0 {
		return ticker, nil
	}

	row := results[0].Series[0]
	values := row.Values[0]

	for i, column := range row.Columns {
		value := parseInfluxValue(values[i])

		switch column {
		case "open":
			ticker.Open = value
		case "high":
			ticker.High = value
		case "low":
			ticker.Low = value
		case "last":
			ticker.Last = value
		case "volume":
			ticker.Volume = value
		case "amount":
			ticker.Amount = value
		}
	}

	return ticker, nil
}

func parseInfluxValue(raw interface{}) decimal.Decimal {
	number, ok := raw.(json.Number)
	if !ok {
		return decimal.Zero
	}

	value, err := decimal.NewFromString(number.String())
	if err != nil {
		return decimal.Zero
	}

	return value
}
