package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pznebula/valuator/valuator/database/models"
)

const insightSampleSize = 10

const insightPrompt = `Analyze this batch of new %s data for %s.
Identify 3-5 key pricing trends or patterns.
Sample Data:
%s

Return JSON:
{
    "insight": "Brief summary of market changes (e.g. 'M4A1 prices rising due to scarcity').",
    "keyPatterns": ["Pattern 1", "Pattern 2"]
}`

type insightPayload struct {
	Insight     string   `json:"insight"`
	KeyPatterns []string `json:"keyPatterns"`
}

// InsightSink persists generated insights.
type InsightSink interface {
	Insert(ctx context.Context, insight *models.LearningInsight) error
}

// InsightGenerator summarizes freshly ingested batches. Failures degrade to
// a placeholder note; ingestion never depends on this succeeding.
type InsightGenerator struct {
	chat  Chatter
	sink  InsightSink
	model string
}

func NewInsightGenerator(chat Chatter, sink InsightSink, model string) *InsightGenerator {
	return &InsightGenerator{chat: chat, sink: sink, model: model}
}

// Summarize asks the model for patterns in a new batch and persists the
// result.
func (g *InsightGenerator) Summarize(ctx context.Context, gameName, kind string, batch []*models.MarketRecord) (*models.LearningInsight, error) {
	insight := &models.LearningInsight{
		GameName:  gameName,
		Kind:      kind,
		BatchSize: len(batch),
	}

	samples := batch
	if len(samples) > insightSampleSize {
		samples = samples[:insightSampleSize]
	}
	var lines []string
	for _, r := range samples {
		lines = append(lines, fmt.Sprintf("%s (¥%.0f)", r.Description, r.Price))
	}

	prompt := fmt.Sprintf(insightPrompt, kind, gameName, strings.Join(lines, "\n"))
	content, err := g.chat.Chat(ctx, []ChatMessage{TextMessage("user", prompt)}, g.model, true)
	if err != nil {
		slog.Warn("Insight generation failed",
			slog.String("type", "ai"),
			slog.String("game", gameName),
			slog.Any("error", err))
		insight.Insight = "Analysis failed due to API error."
	} else {
		var payload insightPayload
		if err := json.Unmarshal([]byte(CleanJSON(content)), &payload); err != nil || payload.Insight == "" {
			insight.Insight = "No insight generated."
		} else {
			insight.Insight = payload.Insight
			insight.KeyPatterns = payload.KeyPatterns
		}
	}

	if err := g.sink.Insert(ctx, insight); err != nil {
		return nil, fmt.Errorf("failed to persist insight: %w", err)
	}
	return insight, nil
}
