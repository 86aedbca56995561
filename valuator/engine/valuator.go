package engine

import (
	"context"
	"log/slog"
	"math"
)

const (
	anchorRuleShare   = 0.4
	anchorCompShare   = 0.6
	matrixRuleShare   = 0.7
	matrixCompShare   = 0.3
	riskySafetyFloor  = 50
	riskyPenalty      = 0.7
	highBandMarkup    = 1.15
	recyclingDiscount = 0.75
)

// Valuation is the final answer for one request: a suggested band plus the
// intermediate figures it was blended from.
type Valuation struct {
	PriceLow       float64
	PriceHigh      float64
	RecyclingPrice float64

	RulePrice      float64
	ComponentPrice float64
	AnchorPrice    float64
	AnchorUsed     bool

	SafetyScore int
	Comparables []Comparable
	Breakdown   ComponentBreakdown
}

// Valuator blends the three pricing signals into one estimate.
type Valuator struct {
	rules      *RuleEngine
	components *ComponentPricer
	finder     *ComparableFinder
}

func NewValuator(rules *RuleEngine, components *ComponentPricer, finder *ComparableFinder) *Valuator {
	return &Valuator{rules: rules, components: components, finder: finder}
}

// Evaluate prices a request. A strong comparable anchor outweighs the matrix
// component; without one the deterministic rule price dominates. The safety
// score comes from the caller's risk assessment and only penalizes, never
// boosts.
func (v *Valuator) Evaluate(ctx context.Context, req Request, safetyScore int) (*Valuation, error) {
	rulePrice, err := v.rules.PriceFromRules(ctx, req)
	if err != nil {
		return nil, err
	}
	breakdown, err := v.components.Price(ctx, req)
	if err != nil {
		return nil, err
	}
	comps, err := v.finder.Find(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &Valuation{
		RulePrice:      rulePrice,
		ComponentPrice: breakdown.FinalCalculated,
		SafetyScore:    safetyScore,
		Comparables:    comps,
		Breakdown:      breakdown,
	}

	var blended float64
	if StrongAnchor(comps) {
		result.AnchorUsed = true
		result.AnchorPrice = comps[0].Record.Price
		blended = anchorRuleShare*rulePrice + anchorCompShare*result.AnchorPrice
	} else {
		blended = matrixRuleShare*rulePrice + matrixCompShare*breakdown.FinalCalculated
	}

	if safetyScore < riskySafetyFloor {
		blended *= riskyPenalty
	}

	result.PriceLow = math.Round(blended)
	result.PriceHigh = math.Round(result.PriceLow * highBandMarkup)
	result.RecyclingPrice = math.Floor(result.PriceLow * recyclingDiscount)

	slog.Info("Valuation computed",
		slog.String("type", "val"),
		slog.String("game", req.GameName),
		slog.Float64("low", result.PriceLow),
		slog.Float64("high", result.PriceHigh),
		slog.Bool("anchor", result.AnchorUsed),
		slog.Int("comparables", len(comps)))

	return result, nil
}
