package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pznebula/valuator/valuator/catalog"
	"github.com/pznebula/valuator/valuator/database/models"
)

// Listing prices are asking prices, so they enter calibration discounted.
const listingDiscount = 0.85

const (
	trendThreshold    = 0.05
	riskDropPercent   = -20.0
	riskMinSamples    = 5
	sentimentRatio    = 1.2
	maxTopTrends      = 3
	maxVolatility     = 100.0
	perMillionFloor   = 0.1
	perMillionCeil    = 10.0
	perTenThouFloor   = 0.001
	perTenThouCeil    = 5.0
)

// RecordSource yields the historical records of a game.
type RecordSource interface {
	GetByGame(ctx context.Context, gameName string) ([]*models.MarketRecord, error)
}

// MatrixStore reads and writes per-game pricing matrices.
type MatrixStore interface {
	GetByGame(ctx context.Context, gameName string) (*models.PricingMatrix, error)
	Save(ctx context.Context, matrix *models.PricingMatrix) error
}

// ReportSink persists calibration reports.
type ReportSink interface {
	Insert(ctx context.Context, report *models.MarketReport) error
}

// Calibrator recomputes a game's pricing matrix from its full record history.
type Calibrator struct {
	records RecordSource
	matrices MatrixStore
	reports ReportSink
	fields  *FieldResolver
	cat     *catalog.Catalog
}

func NewCalibrator(records RecordSource, matrices MatrixStore, reports ReportSink, fields *FieldResolver, cat *catalog.Catalog) *Calibrator {
	return &Calibrator{
		records:  records,
		matrices: matrices,
		reports:  reports,
		fields:   fields,
		cat:      cat,
	}
}

type rateAccumulator struct {
	totalValue float64
	count      int
}

// Calibrate rebuilds the matrix for one game and emits a market report.
// With no usable records the prior matrix is returned untouched and nothing
// is persisted. The new matrix only becomes visible after the full pass.
func (c *Calibrator) Calibrate(ctx context.Context, gameName string) (*models.PricingMatrix, *models.MarketReport, error) {
	all, err := c.records.GetByGame(ctx, gameName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load records: %w", err)
	}
	current, err := c.matrices.GetByGame(ctx, gameName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load matrix: %w", err)
	}
	fields, err := c.fields.FieldsFor(ctx, gameName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve fields: %w", err)
	}

	type sample struct {
		price       float64
		description string
	}
	var samples []sample
	for _, r := range all {
		price := r.Price
		if r.Kind == models.RecordKindListing {
			price *= listingDiscount
		}
		if price <= 0 || utf8.RuneCountInString(r.Description) <= 2 {
			continue
		}
		samples = append(samples, sample{price: price, description: r.Description})
	}

	if len(samples) == 0 {
		slog.Info("Calibration skipped, no usable records",
			slog.String("type", "val"),
			slog.String("game", gameName))
		return current, nil, nil
	}

	acc := make(map[string]*rateAccumulator)
	add := func(key string, unitValue float64) {
		a, ok := acc[key]
		if !ok {
			a = &rateAccumulator{}
			acc[key] = a
		}
		a.totalValue += unitValue
		a.count++
	}

	skipped := 0
	for _, s := range samples {
		classified := Classify(s.description, fields, c.cat)
		weighted := Weigh(classified, c.cat)
		if weighted.Total == 0 {
			skipped++
			continue
		}

		baseUnitValue := s.price / weighted.Total

		for _, item := range weighted.Items {
			add(item.RateKey, baseUnitValue*item.Multiplier)
		}
		if weighted.AssetsM > 0 {
			perMillion := baseUnitValue * weighted.AssetsMWeight / weighted.AssetsM
			if perMillion > perMillionFloor && perMillion < perMillionCeil {
				add("asset_total_m", perMillion)
			}
		}
		if weighted.AssetsW > 0 {
			perTenThou := baseUnitValue * weighted.AssetsWWeight / weighted.AssetsW
			if perTenThou > perTenThouFloor && perTenThou < perTenThouCeil {
				add("currency_havoc_w", perTenThou)
			}
		}
	}
	if skipped > 0 {
		slog.Info("Calibration skipped zero-weight records",
			slog.String("type", "val"),
			slog.String("game", gameName),
			slog.Int("skipped", skipped))
	}

	next := current.Clone()
	var trends []models.ItemTrend
	var risks []string

	for key, a := range acc {
		avg := a.totalValue / float64(a.count)
		var finalPrice float64
		if strings.Contains(key, ":") {
			finalPrice = math.Round(avg)
		} else {
			// Bare keys are per-unit numeric rates, kept at finer precision.
			finalPrice = math.Round(avg*1000) / 1000
		}
		next.Rates[key] = finalPrice

		oldPrice := current.Rates[key]
		if oldPrice <= 0 || math.Abs(finalPrice-oldPrice) <= oldPrice*trendThreshold {
			continue
		}
		changePercent := (finalPrice - oldPrice) / oldPrice * 100
		direction := models.TrendUp
		if changePercent < 0 {
			direction = models.TrendDown
		}
		trends = append(trends, models.ItemTrend{
			Key:           key,
			Name:          trendName(key),
			OldPrice:      oldPrice,
			NewPrice:      finalPrice,
			ChangePercent: changePercent,
			Direction:     direction,
			SampleSize:    a.count,
		})
		if changePercent < riskDropPercent && a.count > riskMinSamples {
			risks = append(risks, fmt.Sprintf("%s: 权重占比下降，市场估值回调 (%.0f%%)", trendName(key), changePercent))
		}
	}

	sort.SliceStable(trends, func(i, j int) bool {
		return math.Abs(trends[i].ChangePercent) > math.Abs(trends[j].ChangePercent)
	})

	report := buildReport(gameName, len(samples), trends, risks)
	next.LastUpdated = time.Now()

	if err := c.matrices.Save(ctx, next); err != nil {
		return nil, nil, fmt.Errorf("failed to save matrix: %w", err)
	}
	if err := c.reports.Insert(ctx, report); err != nil {
		return nil, nil, fmt.Errorf("failed to save report: %w", err)
	}

	slog.Info("Calibration completed",
		slog.String("type", "val"),
		slog.String("game", gameName),
		slog.Int("samples", len(samples)),
		slog.Int("trends", len(trends)),
		slog.String("sentiment", report.MarketSentiment))

	return next, report, nil
}

func trendName(key string) string {
	if i := strings.Index(key, ":"); i >= 0 {
		return key[i+1:]
	}
	return key
}

// Sentiment classifies the trend direction balance.
func Sentiment(upCount, downCount int) string {
	if float64(upCount) > float64(downCount)*sentimentRatio {
		return models.SentimentBullish
	}
	if float64(downCount) > float64(upCount)*sentimentRatio {
		return models.SentimentBearish
	}
	return models.SentimentNeutral
}

func buildReport(gameName string, sampleCount int, trends []models.ItemTrend, risks []string) *models.MarketReport {
	upCount, downCount := 0, 0
	var gainers, losers []models.ItemTrend
	for _, t := range trends {
		if t.Direction == models.TrendUp {
			upCount++
			if len(gainers) < maxTopTrends {
				gainers = append(gainers, t)
			}
		} else {
			downCount++
			if len(losers) < maxTopTrends {
				losers = append(losers, t)
			}
		}
	}

	sentiment := Sentiment(upCount, downCount)

	conclusion := fmt.Sprintf("本次校准周期启用【7层动态资产权重】算法，共分析 %d 条样本。", sampleCount)
	switch sentiment {
	case models.SentimentBullish:
		conclusion += " 稀缺资产（S级典藏/红狼）溢价能力坚挺，市场处于上升通道。"
	case models.SentimentBearish:
		conclusion += " 受大额资产账号影响，皮肤类资产溢价空间被压缩，价格回归理性。"
	default:
		conclusion += " 市场权重分配趋于平衡，硬通货与稀缺品价格相对稳定。"
	}

	return &models.MarketReport{
		GameName:             gameName,
		Date:                 time.Now(),
		TotalSamplesAnalyzed: sampleCount,
		MarketSentiment:      sentiment,
		VolatilityIndex:      math.Min(maxVolatility, float64(len(trends))*2),
		TopGainers:           gainers,
		TopLosers:            losers,
		RiskFactors:          risks,
		Conclusion:           conclusion,
	}
}
