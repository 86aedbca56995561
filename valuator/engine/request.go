package engine

// Request is a live valuation request: identity fields plus an open map of
// attribute values keyed by field key. Numeric fields hold numeric strings,
// choice fields hold comma-joined selections, collectible weapons encode
// quality as "Base(Quality)".
type Request struct {
	GameName    string
	Platform    string
	Server      string
	Description string
	Attributes  map[string]string
}

// Get returns an attribute value or the empty string.
func (r Request) Get(key string) string {
	if r.Attributes == nil {
		return ""
	}
	return r.Attributes[key]
}
