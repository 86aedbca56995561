package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/pznebula/valuator/valuator/database/models"
)

const (
	comparableThreshold = 0.35
	strongAnchorScore   = 0.8

	cosmeticWeight = 30.0
	numericWeight  = 15.0
	hitCredit      = 1.2
)

// Comparable is a historical record scored against a request.
type Comparable struct {
	Record *models.MarketRecord
	Score  float64
}

// SoldRecordSource supplies confirmed sales only. Listings carry asking
// prices nobody paid, so they must never anchor a valuation.
type SoldRecordSource interface {
	GetSoldByGame(ctx context.Context, gameName string) ([]*models.MarketRecord, error)
}

// ComparableFinder ranks confirmed sales by attribute overlap with a request.
type ComparableFinder struct {
	records SoldRecordSource
}

func NewComparableFinder(records SoldRecordSource) *ComparableFinder {
	return &ComparableFinder{records: records}
}

// Find returns the sold records scoring at least the keep threshold, best
// first. Identity fields live outside the attribute map so only
// pricing-relevant attributes enter the score.
func (f *ComparableFinder) Find(ctx context.Context, req Request) ([]Comparable, error) {
	all, err := f.records.GetSoldByGame(ctx, req.GameName)
	if err != nil {
		return nil, fmt.Errorf("failed to load sold records: %w", err)
	}

	var out []Comparable
	for _, r := range all {
		score := Similarity(req, r.Description)
		if score >= comparableThreshold {
			out = append(out, Comparable{Record: r, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// StrongAnchor reports whether the best comparable is close enough to drive
// the valuation instead of merely informing it.
func StrongAnchor(comps []Comparable) bool {
	return len(comps) > 0 && comps[0].Score > strongAnchorScore
}

// Similarity scores a record description against the request attributes in
// [0, 1]. Cosmetic attributes score by the fraction of selected items found
// in the description, numeric asset attributes by the mere presence of
// digits.
func Similarity(req Request, description string) float64 {
	descNorm := Normalize(StripAdminNoise(description))

	scoreSum := 0.0
	weightSum := 0.0

	for key, raw := range req.Attributes {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		switch {
		case containsAny(key, "skin", "suit", "collection", "bundle"):
			items := splitSelections(raw)
			if len(items) == 0 {
				continue
			}
			hits := 0.0
			for _, item := range items {
				norm := Normalize(item)
				if norm != "" && strings.Contains(descNorm, norm) {
					hits += hitCredit
				}
			}
			scoreSum += math.Min(1, hits/float64(len(items))) * cosmeticWeight
			weightSum += cosmeticWeight

		case containsAny(key, "asset", "balance", "ticket"):
			if hasDigit(description) {
				scoreSum += numericWeight * 0.5
			}
			weightSum += numericWeight
		}
	}

	if weightSum == 0 {
		return 0
	}
	return scoreSum / weightSum
}

func splitSelections(raw string) []string {
	var items []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			items = append(items, s)
		}
	}
	return items
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
