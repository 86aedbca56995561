package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/pznebula/valuator/valuator/catalog"
	"github.com/pznebula/valuator/valuator/database/models"
)

const testGame = "三角洲行动"

func newTestCalibrator(records *fakeRecords, matrices *fakeMatrices, reports *fakeReports) *Calibrator {
	cat := catalog.Default()
	return NewCalibrator(records, matrices, reports, NewFieldResolver(nil, cat), cat)
}

func TestCalibrator_MeanOfIdenticalRecords(t *testing.T) {
	records := &fakeRecords{records: []*models.MarketRecord{
		soldRecord(testGame, "资产500M 满仓库", 1000),
		soldRecord(testGame, "资产500M 满仓库", 1000),
	}}
	matrices := &fakeMatrices{matrix: testMatrix(testGame, nil)}
	reports := &fakeReports{}

	next, _, err := newTestCalibrator(records, matrices, reports).Calibrate(context.Background(), testGame)
	if err != nil {
		t.Fatalf("Calibrate() error = %v", err)
	}

	// A pure-asset record's per-million value is price divided by amount.
	if got := next.Rates["asset_total_m"]; got != 2.0 {
		t.Errorf("asset_total_m = %v, want 2.0", got)
	}
	if matrices.saved == nil {
		t.Fatal("matrix was not persisted")
	}
	if len(reports.inserted) != 1 {
		t.Fatalf("reports inserted = %d, want 1", len(reports.inserted))
	}
	if got := reports.inserted[0].TotalSamplesAnalyzed; got != 2 {
		t.Errorf("TotalSamplesAnalyzed = %d, want 2", got)
	}
}

func TestCalibrator_ListingDiscountedAgainstSold(t *testing.T) {
	run := func(t *testing.T, rec *models.MarketRecord) float64 {
		t.Helper()
		records := &fakeRecords{records: []*models.MarketRecord{rec}}
		matrices := &fakeMatrices{matrix: testMatrix(testGame, nil)}
		next, _, err := newTestCalibrator(records, matrices, &fakeReports{}).Calibrate(context.Background(), testGame)
		if err != nil {
			t.Fatalf("Calibrate() error = %v", err)
		}
		return next.Rates["asset_total_m"]
	}

	sold := run(t, soldRecord(testGame, "资产500M", 1000))
	listing := run(t, listingRecord(testGame, "资产500M", 1000))

	if sold != 2.0 {
		t.Errorf("sold rate = %v, want 2.0", sold)
	}
	if listing != 1.7 {
		t.Errorf("listing rate = %v, want 1.7", listing)
	}
}

func TestCalibrator_DiscardsUnusableRecords(t *testing.T) {
	records := &fakeRecords{records: []*models.MarketRecord{
		soldRecord(testGame, "资产500M", 0),
		soldRecord(testGame, "资产500M", -50),
		soldRecord(testGame, "ab", 1000),
	}}
	current := testMatrix(testGame, map[string]float64{"asset_total_m": 1.5})
	matrices := &fakeMatrices{matrix: current}
	reports := &fakeReports{}

	next, report, err := newTestCalibrator(records, matrices, reports).Calibrate(context.Background(), testGame)
	if err != nil {
		t.Fatalf("Calibrate() error = %v", err)
	}
	if next != current {
		t.Error("expected the current matrix back unchanged")
	}
	if report != nil {
		t.Errorf("report = %+v, want nil", report)
	}
	if matrices.saved != nil {
		t.Error("nothing should be persisted without usable records")
	}
	if len(reports.inserted) != 0 {
		t.Error("no report should be inserted without usable records")
	}
}

func TestCalibrator_PreservesUntouchedRates(t *testing.T) {
	records := &fakeRecords{records: []*models.MarketRecord{
		soldRecord(testGame, "资产500M", 1000),
	}}
	current := testMatrix(testGame, map[string]float64{
		"safe_box:S7顶级安全箱9(3x3)": 400,
	})
	matrices := &fakeMatrices{matrix: current}

	next, _, err := newTestCalibrator(records, matrices, &fakeReports{}).Calibrate(context.Background(), testGame)
	if err != nil {
		t.Fatalf("Calibrate() error = %v", err)
	}
	if got := next.Rates["safe_box:S7顶级安全箱9(3x3)"]; got != 400 {
		t.Errorf("untouched rate = %v, want 400", got)
	}
	if got := current.Rates["asset_total_m"]; got != 0 {
		t.Errorf("current matrix mutated: asset_total_m = %v", got)
	}
}

func TestCalibrator_TrendRequiresFivePercentMove(t *testing.T) {
	tests := []struct {
		name       string
		price      float64
		wantTrends int
	}{
		{name: "within threshold", price: 1025, wantTrends: 0},
		{name: "beyond threshold", price: 1200, wantTrends: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := &fakeRecords{records: []*models.MarketRecord{
				soldRecord(testGame, "资产500M", tt.price),
			}}
			matrices := &fakeMatrices{matrix: testMatrix(testGame, map[string]float64{"asset_total_m": 2.0})}
			reports := &fakeReports{}

			_, report, err := newTestCalibrator(records, matrices, reports).Calibrate(context.Background(), testGame)
			if err != nil {
				t.Fatalf("Calibrate() error = %v", err)
			}
			got := len(report.TopGainers) + len(report.TopLosers)
			if got != tt.wantTrends {
				t.Errorf("trends = %d, want %d", got, tt.wantTrends)
			}
		})
	}
}

func TestCalibrator_RiskOnDeepDropWithSamples(t *testing.T) {
	var recs []*models.MarketRecord
	for i := 0; i < 6; i++ {
		recs = append(recs, soldRecord(testGame, "出售 Vector冲锋枪-美杜莎 账号", 1000))
	}
	records := &fakeRecords{records: recs}
	key := "collection_weapon:Vector冲锋枪-美杜莎(极品C)"
	matrices := &fakeMatrices{matrix: testMatrix(testGame, map[string]float64{key: 2000})}
	reports := &fakeReports{}

	next, report, err := newTestCalibrator(records, matrices, reports).Calibrate(context.Background(), testGame)
	if err != nil {
		t.Fatalf("Calibrate() error = %v", err)
	}
	if got := next.Rates[key]; got != 1000 {
		t.Errorf("rate = %v, want 1000", got)
	}
	if len(report.RiskFactors) != 1 {
		t.Fatalf("RiskFactors = %v, want one entry", report.RiskFactors)
	}
	if !strings.Contains(report.RiskFactors[0], "权重占比下降") {
		t.Errorf("risk reason = %q", report.RiskFactors[0])
	}
	if report.MarketSentiment != models.SentimentBearish {
		t.Errorf("sentiment = %q, want bearish", report.MarketSentiment)
	}
	if len(report.TopLosers) != 1 || report.TopLosers[0].ChangePercent != -50 {
		t.Errorf("TopLosers = %+v", report.TopLosers)
	}
	if report.VolatilityIndex != 2 {
		t.Errorf("VolatilityIndex = %v, want 2", report.VolatilityIndex)
	}
}

func TestSentiment(t *testing.T) {
	tests := []struct {
		name string
		up   int
		down int
		want string
	}{
		{name: "bullish", up: 3, down: 1, want: models.SentimentBullish},
		{name: "bearish", up: 1, down: 3, want: models.SentimentBearish},
		{name: "balanced", up: 2, down: 2, want: models.SentimentNeutral},
		{name: "near ratio boundary", up: 6, down: 5, want: models.SentimentNeutral},
		{name: "no trends", up: 0, down: 0, want: models.SentimentNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sentiment(tt.up, tt.down); got != tt.want {
				t.Errorf("Sentiment(%d, %d) = %q, want %q", tt.up, tt.down, got, tt.want)
			}
		})
	}
}
