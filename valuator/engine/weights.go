package engine

import (
	"math"
	"strings"

	"github.com/pznebula/valuator/valuator/catalog"
)

// Category point weights. Tunable constants, not derived from data.
const (
	weightOperator    = 6.0
	weightOperatorHot = 15.0

	weightTierS     = 30.0
	weightTierA     = 15.0
	weightTierB     = 8.0
	weightTierC     = 4.0
	weightUntiered  = 5.0

	weightMelee    = 5.0
	weightMeleeHot = 12.0

	weightSafeBoxBase = 2.0
	weightSafeBoxMid  = 8.0
	weightSafeBoxTop  = 20.0

	weightInfraBase = 1.0
	weightInfraMax  = 3.0

	weightCharm = 3.0

	assetMillionChunk  = 10.0
	assetMillionFactor = 1.5
	currencyChunk      = 200.0
	currencyFactor     = 0.8
)

// WeightedItem carries one matched attribute with the multiplier used both
// for the record's total weight and for value distribution.
type WeightedItem struct {
	RateKey    string
	Multiplier float64
}

// Weighted is the weight breakdown of one classified record.
type Weighted struct {
	Total   float64
	Items   []WeightedItem
	AssetsM float64
	AssetsW float64
	// Chunk weights of the numeric slots, included in Total.
	AssetsMWeight float64
	AssetsWWeight float64
}

// Weigh assigns category point weights to every matched slot of a classified
// record. A Total of zero means the record carries no signal and must be
// skipped by the caller.
func Weigh(c Classified, cat *catalog.Catalog) Weighted {
	var w Weighted

	for _, key := range c.Ops {
		m := weightOperator
		if cat.IsHot(key) {
			m = weightOperatorHot
		}
		w.Items = append(w.Items, WeightedItem{RateKey: key, Multiplier: m})
		w.Total += m
	}

	for _, key := range c.Collections {
		m := collectibleWeight(key)
		w.Items = append(w.Items, WeightedItem{RateKey: key, Multiplier: m})
		w.Total += m
	}

	for _, key := range c.Melee {
		m := weightMelee
		if cat.IsHot(key) {
			m = weightMeleeHot
		}
		w.Items = append(w.Items, WeightedItem{RateKey: key, Multiplier: m})
		w.Total += m
	}

	if c.AssetsM > 0 {
		w.AssetsM = c.AssetsM
		w.AssetsMWeight = math.Max(1, c.AssetsM/assetMillionChunk) * assetMillionFactor
		w.Total += w.AssetsMWeight
	}
	if c.AssetsW > 0 {
		w.AssetsW = c.AssetsW
		w.AssetsWWeight = math.Max(1, c.AssetsW/currencyChunk) * currencyFactor
		w.Total += w.AssetsWWeight
	}

	for _, key := range c.SafeBox {
		m := safeBoxWeight(key)
		w.Items = append(w.Items, WeightedItem{RateKey: key, Multiplier: m})
		w.Total += m
	}

	for _, key := range c.Infra {
		m := infraWeight(key)
		w.Items = append(w.Items, WeightedItem{RateKey: key, Multiplier: m})
		w.Total += m
	}

	for _, key := range c.Charms {
		w.Items = append(w.Items, WeightedItem{RateKey: key, Multiplier: weightCharm})
		w.Total += weightCharm
	}

	return w
}

func collectibleWeight(key string) float64 {
	switch {
	case strings.Contains(key, "极品S"):
		return weightTierS
	case strings.Contains(key, "极品A"):
		return weightTierA
	case strings.Contains(key, "极品B"):
		return weightTierB
	case strings.Contains(key, "极品C"):
		return weightTierC
	default:
		return weightUntiered
	}
}

func safeBoxWeight(key string) float64 {
	switch {
	case strings.Contains(key, "3x3") || strings.Contains(key, "S7顶级"):
		return weightSafeBoxTop
	case strings.Contains(key, "2x3"):
		return weightSafeBoxMid
	default:
		return weightSafeBoxBase
	}
}

func infraWeight(key string) float64 {
	if strings.Contains(key, "满级") || strings.Contains(key, "Lv.10") {
		return weightInfraMax
	}
	return weightInfraBase
}
