package engine

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru"
)

const rateCacheSize = 2048

// Flat credit for a skin attribute that matched no rate at all. Keeps a
// cosmetic-heavy account from pricing as if the slot were empty.
const unratedSkinValue = 10.0

// ComponentBreakdown is the per-category result of pricing a request
// directly against the matrix.
type ComponentBreakdown struct {
	AssetsValue         float64
	SkinValue           float64
	InfrastructureValue float64
	ExtraValue          float64
	RawTotal            float64
	RealNameDiscount    float64
	FinalCalculated     float64
}

// ComponentPricer prices a request attribute by attribute against the
// calibrated matrix. Rate lookups cache across requests; cache keys carry
// the matrix timestamp so a recalibration invalidates naturally.
type ComponentPricer struct {
	matrices MatrixStore
	cache    *lru.Cache
}

func NewComponentPricer(matrices MatrixStore) (*ComponentPricer, error) {
	cache, err := lru.New(rateCacheSize)
	if err != nil {
		return nil, err
	}
	return &ComponentPricer{matrices: matrices, cache: cache}, nil
}

// Price walks every attribute of the request, resolves a rate for it and
// routes the value into the matching category bucket.
func (p *ComponentPricer) Price(ctx context.Context, req Request) (ComponentBreakdown, error) {
	matrix, err := p.matrices.GetByGame(ctx, req.GameName)
	if err != nil {
		return ComponentBreakdown{}, fmt.Errorf("failed to load matrix: %w", err)
	}

	result := ComponentBreakdown{RealNameDiscount: 1}
	cachePrefix := fmt.Sprintf("%s|%d|", req.GameName, matrix.LastUpdated.UnixNano())

	for key, raw := range req.Attributes {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		if key == "real_name_status" {
			if strings.Contains(raw, "不可") {
				result.RealNameDiscount = matrix.RealNameDiscount
			}
			continue
		}

		// Numeric attribute with a bare unit rate: value is amount times rate.
		if rate, ok := matrix.Rates[key]; ok {
			if num, err := strconv.ParseFloat(raw, 64); err == nil {
				result.AssetsValue += num * rate
				continue
			}
		}

		for _, opt := range strings.Split(raw, ",") {
			opt = strings.TrimSpace(opt)
			if opt == "" {
				continue
			}
			rate := p.cachedRate(matrix.Rates, cachePrefix, key, opt)
			switch {
			case rate > 0:
				switch {
				case containsAny(key, "skin", "suit", "god", "collection", "charm"):
					result.SkinValue += rate
				case containsAny(key, "infra", "safe_box"):
					result.InfrastructureValue += rate
				default:
					result.ExtraValue += rate
				}
			case containsAny(key, "skin", "suit") && !strings.Contains(key, "count"):
				result.SkinValue += unratedSkinValue
			}
		}
	}

	result.RawTotal = result.AssetsValue + result.SkinValue + result.InfrastructureValue + result.ExtraValue
	result.FinalCalculated = math.Round(result.RawTotal * result.RealNameDiscount)
	return result, nil
}

func (p *ComponentPricer) cachedRate(rates map[string]float64, cachePrefix, key, opt string) float64 {
	cacheKey := cachePrefix + key + ":" + opt
	if v, ok := p.cache.Get(cacheKey); ok {
		return v.(float64)
	}
	rate := getRate(rates, key, opt)
	p.cache.Add(cacheKey, rate)
	return rate
}

// getRate resolves a choice rate in three passes of decreasing strictness:
// the exact composite key, normalized equality among the field's rates, then
// containment on the token after the last hyphen.
func getRate(rates map[string]float64, key, opt string) float64 {
	if rate, ok := rates[key+":"+opt]; ok {
		return rate
	}

	prefix := key + ":"
	optNorm := Normalize(opt)
	for rateKey, rate := range rates {
		if !strings.HasPrefix(rateKey, prefix) {
			continue
		}
		if Normalize(strings.TrimPrefix(rateKey, prefix)) == optNorm {
			return rate
		}
	}

	optSuffix := Normalize(lastHyphenToken(opt))
	if optSuffix == "" {
		return 0
	}
	for rateKey, rate := range rates {
		if !strings.HasPrefix(rateKey, prefix) {
			continue
		}
		if Similar(Normalize(lastHyphenToken(strings.TrimPrefix(rateKey, prefix))), optSuffix) {
			return rate
		}
	}
	return 0
}

func lastHyphenToken(s string) string {
	if i := strings.LastIndex(s, "-"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
