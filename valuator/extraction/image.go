package extraction

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/pznebula/valuator/valuator/catalog"
	"github.com/pznebula/valuator/valuator/engine"
)

const visionPrompt = `Role: Data Entry Clerk.
Task: Read the game screenshot and list the inventory.

REQUIRED OUTPUT FORMAT (JSON ONLY):
{
  "asset_total_m": "Number (e.g. 150)",
  "currency_havoc_w": "Number (e.g. 200)",
  "rank_level": "Rank Name",
  "safe_box": "Safe Box Name",
  "raw_content": "String containing all other item names, weapon skins, and text found in the image"
}

RULES:
1. Do not use Markdown.
2. Do not write conversational text.
3. If a value is missing, use "0" or "".
4. Put ALL miscellaneous text into "raw_content".`

type visionResult struct {
	AssetTotalM    string `json:"asset_total_m"`
	CurrencyHavocW string `json:"currency_havoc_w"`
	RankLevel      string `json:"rank_level"`
	SafeBox        string `json:"safe_box"`
	RawContent     string `json:"raw_content"`
}

// ScreenshotArchiver stores a copy of the parsed screenshot for later audit.
type ScreenshotArchiver interface {
	UploadScreenshot(ctx context.Context, gameName string, data []byte, contentType string) (string, error)
}

// ImageParser extracts account attributes from a marketplace screenshot.
type ImageParser struct {
	chat     Chatter
	policy   Policy
	model    string
	archiver ScreenshotArchiver
}

// NewImageParser builds a parser. A nil archiver disables screenshot
// archival.
func NewImageParser(chat Chatter, policy Policy, visionModel string, archiver ScreenshotArchiver) *ImageParser {
	return &ImageParser{chat: chat, policy: policy, model: visionModel, archiver: archiver}
}

// Parse reads a screenshot into request attributes. The structured fields
// come straight from the model; multiselect fields are backfilled by fuzzy
// matching catalog options against the leftover raw content. A malformed
// model response degrades to raw content only instead of failing. After a
// successful parse the screenshot is archived; archival failure is logged,
// never returned.
func (ip *ImageParser) Parse(ctx context.Context, gameName, imageURL string, fields []catalog.Field) (map[string]string, error) {
	messages := []ChatMessage{VisionMessage(visionPrompt, imageURL)}

	content, err := ip.policy.Do(ctx, func(ctx context.Context) (string, error) {
		return ip.chat.Chat(ctx, messages, ip.model, false)
	})
	if err != nil {
		return nil, err
	}

	var parsed visionResult
	if err := json.Unmarshal([]byte(CleanJSON(content)), &parsed); err != nil {
		slog.Warn("Vision output not parseable, keeping raw content only",
			slog.String("type", "ai"),
			slog.Any("error", err))
		parsed = visionResult{RawContent: content, AssetTotalM: "0", CurrencyHavocW: "0"}
	}

	attrs := map[string]string{}
	setIfPresent(attrs, "asset_total_m", parsed.AssetTotalM)
	setIfPresent(attrs, "currency_havoc_w", parsed.CurrencyHavocW)
	setIfPresent(attrs, "rank_level", parsed.RankLevel)
	setIfPresent(attrs, "safe_box", parsed.SafeBox)

	backfillMultiselects(attrs, parsed.RawContent, fields)
	ip.archive(ctx, gameName, imageURL)
	return attrs, nil
}

func (ip *ImageParser) archive(ctx context.Context, gameName, imageURL string) {
	if ip.archiver == nil {
		return
	}
	data, contentType, ok := decodeDataURL(imageURL)
	if !ok {
		return
	}
	url, err := ip.archiver.UploadScreenshot(ctx, gameName, data, contentType)
	if err != nil {
		slog.Warn("Screenshot archival failed",
			slog.String("type", "ai"),
			slog.String("game", gameName),
			slog.Any("error", err))
		return
	}
	slog.Info("Screenshot archived",
		slog.String("type", "ai"),
		slog.String("game", gameName),
		slog.String("url", url))
}

// decodeDataURL unpacks a "data:<mime>;base64,<payload>" URL. Remote URLs
// are not fetched; only inline uploads get archived.
func decodeDataURL(imageURL string) ([]byte, string, bool) {
	if !strings.HasPrefix(imageURL, "data:") {
		return nil, "", false
	}
	rest := strings.TrimPrefix(imageURL, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return nil, "", false
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", false
	}
	return data, contentType, true
}

func setIfPresent(attrs map[string]string, key, value string) {
	value = strings.TrimSpace(value)
	if value != "" && value != "0" {
		attrs[key] = value
	}
}

type optionSource []string

func (s optionSource) Len() int            { return len(s) }
func (s optionSource) String(i int) string { return s[i] }

// backfillMultiselects scans raw screenshot text for catalog options of each
// multiselect field. Fuzzy search proposes candidates per token, containment
// on normalized forms confirms them so a loose fuzzy hit cannot slip in.
func backfillMultiselects(attrs map[string]string, rawContent string, fields []catalog.Field) {
	rawContent = strings.TrimSpace(rawContent)
	if rawContent == "" {
		return
	}
	tokens := strings.FieldsFunc(rawContent, func(r rune) bool {
		return r == '\n' || r == ',' || r == ';' || r == ' ' || r == '、'
	})
	if len(tokens) == 0 {
		return
	}

	for _, field := range fields {
		if field.Type != catalog.FieldMultiSelect || len(field.Options) == 0 {
			continue
		}
		if _, done := attrs[field.Key]; done {
			continue
		}

		seen := map[string]bool{}
		var selected []string
		for _, token := range tokens {
			for _, match := range fuzzy.FindFrom(token, optionSource(field.Options)) {
				opt := field.Options[match.Index]
				if seen[opt] {
					continue
				}
				if engine.Similar(engine.Normalize(token), engine.Normalize(opt)) {
					seen[opt] = true
					selected = append(selected, opt)
				}
			}
		}
		if len(selected) > 0 {
			attrs[field.Key] = strings.Join(selected, ",")
		}
	}
}
