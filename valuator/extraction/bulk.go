package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pznebula/valuator/valuator/database/models"
)

// Chunk size keeps each model call under the output token limit.
const bulkChunkRunes = 1500

const interChunkDelay = time.Second

const bulkPrompt = `You are a specialized Data Extraction Engine for Game Assets.
Task: Parse the provided RAW TEXT containing multiple item listings into a structured JSON object.

Input Format:
The text contains multiple listings.
Each listing usually ends with a price starting with '￥' (e.g., ￥4888).
Example Input:
"Item A... \n Key: Value \n ￥100 \n\n Item B... ￥200"

Output Format (JSON Object):
{
  "items": [
    { "d": "full description string with all attributes joined by semicolon", "p": numeric_price },
    ...
  ]
}

Rules:
1. Identify distinct listings based on the price tag '￥'.
2. Extract the numeric price into 'p'.
3. Combine all other text belonging to that listing into 'd'.
4. Ignore empty lines.
5. Return valid JSON object with an "items" array.`

// Chatter is the model call surface the extractors need.
type Chatter interface {
	Chat(ctx context.Context, messages []ChatMessage, model string, jsonMode bool) (string, error)
}

// RecordStore persists extracted records.
type RecordStore interface {
	InsertBatch(ctx context.Context, records []*models.MarketRecord) error
}

type parsedItem struct {
	D string  `json:"d"`
	P float64 `json:"p"`
}

type parsedChunk struct {
	Items    []parsedItem `json:"items"`
	Listings []parsedItem `json:"listings"`
}

// Ingestor turns pasted marketplace text into persisted records.
type Ingestor struct {
	chat   Chatter
	store  RecordStore
	policy Policy
	model  string
	delay  time.Duration
}

func NewIngestor(chat Chatter, store RecordStore, policy Policy, model string) *Ingestor {
	return &Ingestor{chat: chat, store: store, policy: policy, model: model, delay: interChunkDelay}
}

// IngestText splits raw text into chunks, extracts records from each and
// persists per chunk, so one bad chunk does not lose the rest. Returns the
// records that made it in.
func (in *Ingestor) IngestText(ctx context.Context, gameName, kind, rawText string) ([]*models.MarketRecord, error) {
	rawText = strings.TrimSpace(rawText)
	if utf8.RuneCountInString(rawText) < 5 {
		return nil, nil
	}

	chunks := splitRunes(rawText, bulkChunkRunes)
	var all []*models.MarketRecord

	for i, chunk := range chunks {
		records, err := in.extractChunk(ctx, gameName, kind, chunk)
		if err != nil {
			slog.Warn("Chunk extraction failed, skipping",
				slog.String("type", "ai"),
				slog.String("game", gameName),
				slog.Int("chunk", i+1),
				slog.Any("error", err))
			continue
		}
		if len(records) == 0 {
			continue
		}
		if err := in.store.InsertBatch(ctx, records); err != nil {
			return all, fmt.Errorf("failed to persist chunk %d: %w", i+1, err)
		}
		all = append(all, records...)

		if i < len(chunks)-1 && in.delay > 0 {
			if err := sleepCtx(ctx, in.delay); err != nil {
				return all, err
			}
		}
	}

	slog.Info("Bulk ingestion finished",
		slog.String("type", "ai"),
		slog.String("game", gameName),
		slog.Int("chunks", len(chunks)),
		slog.Int("records", len(all)))
	return all, nil
}

func (in *Ingestor) extractChunk(ctx context.Context, gameName, kind, chunk string) ([]*models.MarketRecord, error) {
	messages := []ChatMessage{
		TextMessage("system", bulkPrompt),
		TextMessage("user", "\n--- DATA START ---\n"+chunk+"\n--- DATA END ---"),
	}

	content, err := in.policy.Do(ctx, func(ctx context.Context) (string, error) {
		return in.chat.Chat(ctx, messages, in.model, true)
	})
	if err != nil {
		return nil, err
	}

	items, err := parseItems(CleanJSON(content))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var records []*models.MarketRecord
	for _, item := range items {
		desc := strings.TrimSpace(strings.ReplaceAll(item.D, "\n", " ; "))
		if utf8.RuneCountInString(desc) <= 5 || item.P <= 0 {
			continue
		}
		records = append(records, &models.MarketRecord{
			GameName:    gameName,
			Description: desc,
			Price:       item.P,
			Kind:        kind,
			Source:      "bulk_import",
			RecordedAt:  now,
		})
	}
	return records, nil
}

// parseItems accepts the expected {"items": [...]} wrapper, a bare array, or
// the occasional {"listings": [...]} the model produces instead.
func parseItems(cleaned string) ([]parsedItem, error) {
	var wrapper parsedChunk
	if err := json.Unmarshal([]byte(cleaned), &wrapper); err == nil {
		if len(wrapper.Items) > 0 {
			return wrapper.Items, nil
		}
		if len(wrapper.Listings) > 0 {
			return wrapper.Listings, nil
		}
	}
	var bare []parsedItem
	if err := json.Unmarshal([]byte(cleaned), &bare); err == nil {
		return bare, nil
	}
	return nil, fmt.Errorf("unrecognized extraction payload")
}

func splitRunes(s string, size int) []string {
	runes := []rune(s)
	var chunks []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
