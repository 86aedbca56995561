package engine

import (
	"regexp"
	"strings"
)

// adminNoiseRe matches account-metadata phrases (login method, real-name
// status, recovery and binding terms) that would otherwise be mistaken for
// item names during matching.
var adminNoiseRe = regexp.MustCompile(`(?i)QQ|微信|登录|实名|二次|身份证|找回|包赔|签署|协议|死绑|三无|单绑`)

// StripAdminNoise removes administrative keywords. Callers must apply it
// before Normalize so the noise terms are still recognizable.
func StripAdminNoise(text string) string {
	return adminNoiseRe.ReplaceAllString(text, "")
}

// Normalize canonicalizes free text for containment matching: lowercase,
// no whitespace, and only CJK ideographs, ASCII letters and digits survive.
// Both sides of every containment test must go through this.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 0x4e00 && r <= 0x9fa5:
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Similar reports containment in either direction, tolerating truncated or
// partially OCR'd names.
func Similar(source, target string) bool {
	if source == "" || target == "" {
		return false
	}
	return strings.Contains(source, target) || strings.Contains(target, source)
}
