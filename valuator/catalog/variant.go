package catalog

import "strings"

// WeaponVariant is a collectible weapon together with its quality tier.
// Requests and rate keys carry it in the wire form "Base(Quality)".
type WeaponVariant struct {
	Base    string
	Quality string
}

// Encode renders the wire form. A variant without a quality renders as the
// bare base name.
func (v WeaponVariant) Encode() string {
	if v.Quality == "" {
		return v.Base
	}
	return v.Base + "(" + v.Quality + ")"
}

// ParseWeaponVariant splits the wire form back into base and quality. Input
// without a trailing "(...)" yields an empty quality.
func ParseWeaponVariant(s string) WeaponVariant {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, ")") {
		return WeaponVariant{Base: s}
	}
	open := strings.LastIndex(s, "(")
	if open <= 0 {
		return WeaponVariant{Base: s}
	}
	return WeaponVariant{
		Base:    strings.TrimSpace(s[:open]),
		Quality: s[open+1 : len(s)-1],
	}
}
