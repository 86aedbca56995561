package engine

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pznebula/valuator/valuator/catalog"
)

// Classified is the result of matching a record description against the
// catalog: seven weighting slots. String slots hold rate keys
// ("fieldKey:option"), numeric slots hold extracted amounts.
type Classified struct {
	Ops         []string
	Collections []string
	Melee       []string
	AssetsM     float64
	AssetsW     float64
	SafeBox     []string
	Infra       []string
	Charms      []string
}

// Empty reports whether classification found nothing usable.
func (c Classified) Empty() bool {
	return len(c.Ops) == 0 && len(c.Collections) == 0 && len(c.Melee) == 0 &&
		c.AssetsM == 0 && c.AssetsW == 0 &&
		len(c.SafeBox) == 0 && len(c.Infra) == 0 && len(c.Charms) == 0
}

var (
	assetMillionRe     = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(m|亿)`)
	currencyTenThouRe  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(w|万)`)
	weaponCountRe      = regexp.MustCompile(`(?i)(\d+)\s*(V|英雄)`)
	skinCountRe        = regexp.MustCompile(`(?i)(\d+)\s*(皮|skin)`)
)

// ExtractNumericValue pulls an amount for a numeric field out of free text.
// The unit token decides the field family; "亿" is a hundred-million marker
// and scales the million amount by 100. First match wins.
func ExtractNumericValue(desc, key string) float64 {
	isM := strings.Contains(key, "_m") || strings.Contains(key, "asset")
	isW := strings.Contains(key, "_w") || strings.Contains(key, "coin") || strings.Contains(key, "ticket")

	switch {
	case isM:
		if m := assetMillionRe.FindStringSubmatch(desc); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return 0
			}
			if m[2] == "亿" {
				v *= 100
			}
			return v
		}
	case isW:
		if m := currencyTenThouRe.FindStringSubmatch(desc); m != nil {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return 0
			}
			return v
		}
	case key == "v_weapon_count":
		if m := weaponCountRe.FindStringSubmatch(desc); m != nil {
			v, _ := strconv.ParseFloat(m[1], 64)
			return v
		}
	case key == "skin_count":
		if m := skinCountRe.FindStringSubmatch(desc); m != nil {
			v, _ := strconv.ParseFloat(m[1], 64)
			return v
		}
	}
	return 0
}

// Classify matches a raw description against the field catalog and routes
// every hit into one of the seven weighting slots. The description is noise
// stripped and normalized once; every option term is normalized the same way.
func Classify(desc string, fields []catalog.Field, cat *catalog.Catalog) Classified {
	var result Classified
	cleaned := StripAdminNoise(desc)
	descNorm := Normalize(cleaned)

	result.AssetsM = ExtractNumericValue(desc, "asset_total_m")
	result.AssetsW = ExtractNumericValue(desc, "currency_havoc_w")

	for _, field := range fields {
		if len(field.Options) == 0 {
			continue
		}

		if field.Key == "collection_weapon" {
			result.Collections = append(result.Collections, matchCollectibles(descNorm, field, cat)...)
			continue
		}

		for _, opt := range field.Options {
			if !matchesAnyTerm(descNorm, searchTerms(opt)) {
				continue
			}
			rateKey := field.Key + ":" + opt
			switch {
			case field.Key == "operator_skins" || strings.Contains(field.Key, "god_suit"):
				result.Ops = append(result.Ops, rateKey)
			case field.Key == "melee_skins" || strings.Contains(field.Key, "knife"):
				result.Melee = append(result.Melee, rateKey)
			case field.Key == "safe_box":
				result.SafeBox = append(result.SafeBox, rateKey)
			case field.Group == "特勤处" || strings.Contains(field.Key, "infra"):
				result.Infra = append(result.Infra, rateKey)
			case field.Key == "legendary_charms":
				result.Charms = append(result.Charms, rateKey)
			case strings.Contains(field.Key, "bundle"):
				result.Collections = append(result.Collections, rateKey)
			}
		}
	}

	return result
}

// matchCollectibles tests each base weapon name by bidirectional containment
// and attaches any quality tokens found in the description. A base matching
// without an explicit tier defaults to the lowest one.
func matchCollectibles(descNorm string, field catalog.Field, cat *catalog.Catalog) []string {
	var matched []string
	for _, base := range field.Options {
		if !Similar(descNorm, Normalize(base)) {
			continue
		}
		foundQuality := false
		for _, q := range cat.Qualities {
			if strings.Contains(descNorm, Normalize(q)) {
				variant := catalog.WeaponVariant{Base: base, Quality: q}
				matched = append(matched, field.Key+":"+variant.Encode())
				foundQuality = true
			}
		}
		if !foundQuality {
			variant := catalog.WeaponVariant{Base: base, Quality: cat.LowestQuality()}
			matched = append(matched, field.Key+":"+variant.Encode())
		}
	}
	return matched
}

// categoryPrefixes are generic words stripped from an option to expose the
// distinctive part of its name as an extra search term.
var categoryPrefixes = []string{
	"近战", "典藏", "外观", "皮肤", "红狼", "骇爪", "露娜", "威龙", "蜂医",
	"牧羊人", "乌鲁鲁", "挂饰", "突击步枪", "战斗步枪", "冲锋枪",
}

// searchTerms derives the normalized terms used for a containment test
// against a description: the full option, the token after the last hyphen,
// and the option with category prefixes removed when long enough to be
// distinctive.
func searchTerms(option string) []string {
	terms := []string{Normalize(option)}
	if strings.Contains(option, "-") {
		parts := strings.Split(option, "-")
		terms = append(terms, Normalize(parts[len(parts)-1]))
	}
	noPrefix := option
	for _, p := range categoryPrefixes {
		noPrefix = strings.Replace(noPrefix, p, "", 1)
	}
	cleanName := Normalize(noPrefix)
	if utf8.RuneCountInString(cleanName) >= 2 {
		terms = append(terms, cleanName)
	}
	return terms
}

func matchesAnyTerm(descNorm string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(descNorm, t) {
			return true
		}
	}
	return false
}
