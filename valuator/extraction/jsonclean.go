package extraction

import (
	"regexp"
	"strings"
)

var (
	jsonFenceRe        = regexp.MustCompile("(?i)```json")
	trailingCommaObjRe = regexp.MustCompile(`,\s*}`)
	trailingCommaArrRe = regexp.MustCompile(`,\s*]`)
)

// CleanJSON salvages a JSON object from model output: code fences and any
// surrounding prose are stripped, trailing commas removed. Models in JSON
// mode still wrap output in fences often enough that every parse goes
// through this.
func CleanJSON(raw string) string {
	clean := jsonFenceRe.ReplaceAllString(raw, "")
	clean = strings.ReplaceAll(clean, "```", "")

	first := strings.Index(clean, "{")
	last := strings.LastIndex(clean, "}")
	if first != -1 && last != -1 && last > first {
		clean = clean[first : last+1]
	}

	clean = trailingCommaObjRe.ReplaceAllString(clean, "}")
	clean = trailingCommaArrRe.ReplaceAllString(clean, "]")

	return strings.TrimSpace(clean)
}
