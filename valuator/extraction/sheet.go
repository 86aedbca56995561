package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pznebula/valuator/valuator/database/models"
)

const maxSheetDescription = 500

var nonPriceCharsRe = regexp.MustCompile(`[^\d.]`)

const sheetSchemaPrompt = `You are a Data Mapper.
Analyze this JSON object representing a row from an Excel file for the game %q:
%s

Your goal is to identify:
1. The key that contains the PRICE (look for "price", "amount", "价格", "金额", "money").
2. The key(s) that contain item attributes/description (look for "title", "name", "desc", "skin", "rank", "标题", "描述", "区服").

Return valid JSON ONLY:
{
  "priceKey": "exact_key_name_from_input_or_null",
  "descKeys": ["key1", "key2"]
}`

type sheetSchema struct {
	PriceKey string   `json:"priceKey"`
	DescKeys []string `json:"descKeys"`
}

// SheetImporter maps spreadsheet rows into records. The model only sees the
// first row to infer which columns hold price and description; the mapping
// itself runs locally.
type SheetImporter struct {
	chat   Chatter
	store  RecordStore
	policy Policy
	model  string
}

func NewSheetImporter(chat Chatter, store RecordStore, policy Policy, model string) *SheetImporter {
	return &SheetImporter{chat: chat, store: store, policy: policy, model: model}
}

// ImportRows infers the column schema from the first row, then converts and
// persists every row with a positive price.
func (si *SheetImporter) ImportRows(ctx context.Context, gameName, kind string, rows []map[string]string) ([]*models.MarketRecord, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	schema, err := si.inferSchema(ctx, gameName, rows[0])
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var records []*models.MarketRecord
	for _, row := range rows {
		price := parsePrice(row[schema.PriceKey])
		if price <= 0 {
			continue
		}
		records = append(records, &models.MarketRecord{
			GameName:    gameName,
			Description: rowDescription(row, schema),
			Price:       price,
			Kind:        kind,
			Source:      "sheet_import",
			RecordedAt:  now,
		})
	}

	if len(records) == 0 {
		return nil, nil
	}
	if err := si.store.InsertBatch(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to persist rows: %w", err)
	}

	slog.Info("Sheet import finished",
		slog.String("type", "ai"),
		slog.String("game", gameName),
		slog.Int("rows", len(rows)),
		slog.Int("records", len(records)))
	return records, nil
}

func (si *SheetImporter) inferSchema(ctx context.Context, gameName string, sample map[string]string) (sheetSchema, error) {
	encoded, err := json.Marshal(sample)
	if err != nil {
		return sheetSchema{}, fmt.Errorf("failed to encode sample row: %w", err)
	}

	prompt := fmt.Sprintf(sheetSchemaPrompt, gameName, string(encoded))
	content, err := si.policy.Do(ctx, func(ctx context.Context) (string, error) {
		return si.chat.Chat(ctx, []ChatMessage{TextMessage("user", prompt)}, si.model, true)
	})
	if err != nil {
		return sheetSchema{}, err
	}

	var schema sheetSchema
	if err := json.Unmarshal([]byte(CleanJSON(content)), &schema); err != nil {
		return sheetSchema{}, fmt.Errorf("failed to decode column schema: %w", err)
	}
	return schema, nil
}

func parsePrice(raw string) float64 {
	cleaned := nonPriceCharsRe.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return price
}

// rowDescription joins the schema's description columns, falling back to
// every non-price column. URLs are dropped, the result is capped.
func rowDescription(row map[string]string, schema sheetSchema) string {
	var parts []string
	if len(schema.DescKeys) > 0 {
		for _, key := range schema.DescKeys {
			if v := row[key]; v != "" {
				parts = append(parts, v)
			}
		}
	} else {
		keys := make([]string, 0, len(row))
		for key := range row {
			if key != schema.PriceKey {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			if v := row[key]; v != "" {
				parts = append(parts, v)
			}
		}
	}

	var kept []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" && !strings.Contains(p, "http") {
			kept = append(kept, p)
		}
	}

	desc := strings.Join(kept, " ; ")
	if runes := []rune(desc); len(runes) > maxSheetDescription {
		desc = string(runes[:maxSheetDescription])
	}
	return desc
}
