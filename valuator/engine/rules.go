package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pznebula/valuator/valuator/catalog"
	"github.com/pznebula/valuator/valuator/database/models"
)

// RuleStore is the slice of the rule repository the engine needs.
type RuleStore interface {
	GetByGame(ctx context.Context, gameName string) ([]*models.PriceRule, error)
	InsertBatch(ctx context.Context, rules []*models.PriceRule) error
}

// RuleEngine prices a request through the deterministic rule table. A game
// without rules gets its table seeded from the calibrated matrix on first use.
type RuleEngine struct {
	rules    RuleStore
	matrices MatrixStore
	fields   *FieldResolver
}

func NewRuleEngine(rules RuleStore, matrices MatrixStore, fields *FieldResolver) *RuleEngine {
	return &RuleEngine{rules: rules, matrices: matrices, fields: fields}
}

// PriceFromRules computes the rule-based price of a request. Additive rules
// build a base sum, multiplicative rules compound into a global multiplier
// applied once at the end.
func (e *RuleEngine) PriceFromRules(ctx context.Context, req Request) (float64, error) {
	rules, err := e.rulesFor(ctx, req.GameName)
	if err != nil {
		return 0, err
	}
	fields, err := e.fields.FieldsFor(ctx, req.GameName)
	if err != nil {
		return 0, err
	}

	baseSum := 0.0
	multiplier := 1.0

	for _, field := range fields {
		raw := req.Get(field.Key)
		if raw == "" {
			continue
		}

		if field.Type == catalog.FieldNumber {
			num, err := strconv.ParseFloat(raw, 64)
			if err != nil || num == 0 {
				continue
			}
			for _, rule := range rules {
				if rule.FieldKey != field.Key {
					continue
				}
				switch rule.Type {
				case models.RuleAdd:
					baseSum += num * rule.Price
				case models.RuleSubtract:
					baseSum -= num * rule.Price
				case models.RuleMultiply:
					multiplier *= 1 + num*rule.Price
				}
			}
			continue
		}

		for _, sel := range strings.Split(raw, ",") {
			sel = strings.TrimSpace(sel)
			if sel == "" {
				continue
			}
			for _, rule := range rules {
				if rule.FieldKey != field.Key || rule.MatchValue != sel {
					continue
				}
				switch rule.Type {
				case models.RuleAdd:
					baseSum += rule.Price
				case models.RuleSubtract:
					baseSum -= rule.Price
				case models.RuleMultiply:
					multiplier *= rule.Price
				case models.RuleDivide:
					if rule.Price != 0 {
						multiplier /= rule.Price
					}
				}
			}
		}
	}

	return math.Round(baseSum * multiplier), nil
}

func (e *RuleEngine) rulesFor(ctx context.Context, gameName string) ([]*models.PriceRule, error) {
	rules, err := e.rules.GetByGame(ctx, gameName)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	if len(rules) > 0 {
		return rules, nil
	}

	matrix, err := e.matrices.GetByGame(ctx, gameName)
	if err != nil {
		return nil, fmt.Errorf("failed to load matrix: %w", err)
	}
	fields, err := e.fields.FieldsFor(ctx, gameName)
	if err != nil {
		return nil, err
	}

	seeded := SeedFromMatrix(gameName, matrix, fields)
	if len(seeded) == 0 {
		return nil, nil
	}
	if err := e.rules.InsertBatch(ctx, seeded); err != nil {
		return nil, fmt.Errorf("failed to seed rules: %w", err)
	}
	slog.Info("Seeded rule table from matrix",
		slog.String("type", "val"),
		slog.String("game", gameName),
		slog.Int("rules", len(seeded)))
	return seeded, nil
}

// SeedFromMatrix translates a calibrated matrix into an initial rule table:
// one add rule per rated option or numeric unit rate, plus the real-name
// discount as a multiply rule when it is in effect.
func SeedFromMatrix(gameName string, matrix *models.PricingMatrix, fields []catalog.Field) []*models.PriceRule {
	var rules []*models.PriceRule

	for _, field := range fields {
		if field.Type == catalog.FieldNumber {
			rate, ok := matrix.Rates[field.Key]
			if !ok {
				continue
			}
			rules = append(rules, &models.PriceRule{
				GameName:   gameName,
				FieldKey:   field.Key,
				MatchValue: models.MatchAny,
				Keyword:    field.Label + " (Unit Price)",
				Price:      rate,
				Type:       models.RuleAdd,
			})
			continue
		}

		if field.Key == "collection_weapon" {
			keys := make([]string, 0, len(matrix.Rates))
			for key := range matrix.Rates {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, base := range field.Options {
				for _, key := range keys {
					variant, ok := decodeVariantKey(field.Key, key)
					if !ok || variant.Base != base || variant.Quality == "" {
						continue
					}
					rules = append(rules, &models.PriceRule{
						GameName:   gameName,
						FieldKey:   field.Key,
						MatchValue: variant.Encode(),
						Keyword:    variant.Encode(),
						Price:      matrix.Rates[key],
						Type:       models.RuleAdd,
					})
				}
			}
			continue
		}

		for _, opt := range field.Options {
			rate, ok := matrix.Rates[field.Key+":"+opt]
			if !ok {
				continue
			}
			rules = append(rules, &models.PriceRule{
				GameName:   gameName,
				FieldKey:   field.Key,
				MatchValue: opt,
				Keyword:    opt,
				Price:      rate,
				Type:       models.RuleAdd,
			})
		}
	}

	if matrix.RealNameDiscount != 1 {
		rules = append(rules, &models.PriceRule{
			GameName:   gameName,
			FieldKey:   "real_name_status",
			MatchValue: "不可二次实名",
			Keyword:    "不可二次实名折扣",
			Price:      matrix.RealNameDiscount,
			Type:       models.RuleMultiply,
		})
	}

	return rules
}

func decodeVariantKey(fieldKey, rateKey string) (catalog.WeaponVariant, bool) {
	prefix := fieldKey + ":"
	if !strings.HasPrefix(rateKey, prefix) {
		return catalog.WeaponVariant{}, false
	}
	return catalog.ParseWeaponVariant(strings.TrimPrefix(rateKey, prefix)), true
}
