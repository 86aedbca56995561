package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Trend directions and sentiment labels.
const (
	TrendUp   = "up"
	TrendDown = "down"

	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// ItemTrend records one rate-key moving more than the calibration threshold.
type ItemTrend struct {
	Key           string  `json:"key"`
	Name          string  `json:"name"`
	OldPrice      float64 `json:"oldPrice"`
	NewPrice      float64 `json:"newPrice"`
	ChangePercent float64 `json:"changePercent"`
	Direction     string  `json:"direction"`
	SampleSize    int     `json:"sampleSize"`
}

// MarketReport is the per-calibration summary kept as bounded history.
type MarketReport struct {
	bun.BaseModel `bun:"table:market_reports,alias:mrep"`

	ID                   int64       `bun:"id,pk,autoincrement"`
	GameName             string      `bun:"game_name,notnull"`
	Date                 time.Time   `bun:"date,notnull"`
	TotalSamplesAnalyzed int         `bun:"total_samples_analyzed,notnull"`
	MarketSentiment      string      `bun:"market_sentiment,notnull"`
	VolatilityIndex      float64     `bun:"volatility_index,notnull"`
	TopGainers           []ItemTrend `bun:"top_gainers,type:jsonb"`
	TopLosers            []ItemTrend `bun:"top_losers,type:jsonb"`
	RiskFactors          []string    `bun:"risk_factors,type:jsonb"`
	Conclusion           string      `bun:"conclusion"`
}
