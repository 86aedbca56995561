package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/pznebula/valuator/valuator/database/models"
)

type fakeInsightSink struct {
	inserted []*models.LearningInsight
}

func (f *fakeInsightSink) Insert(_ context.Context, i *models.LearningInsight) error {
	f.inserted = append(f.inserted, i)
	return nil
}

func batchOf(n int) []*models.MarketRecord {
	var batch []*models.MarketRecord
	for i := 0; i < n; i++ {
		batch = append(batch, &models.MarketRecord{
			GameName:    "三角洲行动",
			Description: "红狼-蚀金玫瑰 资产150M",
			Price:       5000,
		})
	}
	return batch
}

func TestInsightGenerator_Summarize(t *testing.T) {
	chat := &fakeChatter{responses: []string{
		`{"insight":"典藏武器价格走高","keyPatterns":["S级溢价","资产账号回调"]}`,
	}}
	sink := &fakeInsightSink{}
	g := NewInsightGenerator(chat, sink, "DeepSeek-V3")

	got, err := g.Summarize(context.Background(), "三角洲行动", models.RecordKindSold, batchOf(3))
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got.Insight != "典藏武器价格走高" {
		t.Errorf("Insight = %q", got.Insight)
	}
	if len(got.KeyPatterns) != 2 {
		t.Errorf("KeyPatterns = %v", got.KeyPatterns)
	}
	if got.BatchSize != 3 || got.Kind != models.RecordKindSold {
		t.Errorf("metadata = %d %q", got.BatchSize, got.Kind)
	}
	if len(sink.inserted) != 1 {
		t.Errorf("inserted = %d, want 1", len(sink.inserted))
	}
}

func TestInsightGenerator_APIErrorSoftFails(t *testing.T) {
	chat := &fakeChatter{errs: []error{errors.New("boom")}, responses: []string{""}}
	sink := &fakeInsightSink{}
	g := NewInsightGenerator(chat, sink, "DeepSeek-V3")

	got, err := g.Summarize(context.Background(), "三角洲行动", models.RecordKindListing, batchOf(1))
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got.Insight != "Analysis failed due to API error." {
		t.Errorf("Insight = %q", got.Insight)
	}
	if len(sink.inserted) != 1 {
		t.Error("placeholder insight must still persist")
	}
}

func TestInsightGenerator_MalformedOutput(t *testing.T) {
	chat := &fakeChatter{responses: []string{"not json at all"}}
	g := NewInsightGenerator(chat, &fakeInsightSink{}, "DeepSeek-V3")

	got, err := g.Summarize(context.Background(), "三角洲行动", models.RecordKindSold, batchOf(12))
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got.Insight != "No insight generated." {
		t.Errorf("Insight = %q", got.Insight)
	}
	if got.BatchSize != 12 {
		t.Errorf("BatchSize = %d, want 12", got.BatchSize)
	}
}
