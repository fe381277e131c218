package core

// DisplayInfo is what the presentation layer needs to render a
// category or party reference.
type DisplayInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// fallbackColor matches the neutral grey the UI uses for unknown keys.
const fallbackColor = "#8E8E93"

// Resolver maps category/party keys to display info. Lookups are total:
// a dangling key (e.g. a deleted non-system category still referenced
// by old transactions) resolves to a raw-key fallback, never an error.
// The stored key is passed through unchanged either way.
type Resolver struct {
	cats    map[string]Category
	parties map[string]Party
}

// NewResolver builds a resolver snapshot from the store's current
// categories and parties.
func NewResolver(cats []Category, parties []Party) Resolver {
	r := Resolver{
		cats:    make(map[string]Category, len(cats)),
		parties: make(map[string]Party, len(parties)),
	}
	for _, c := range cats {
		r.cats[c.Key] = c
	}
	for _, p := range parties {
		r.parties[p.Key] = p
	}
	return r
}

// Category resolves a category key, falling back to the key itself as
// label when unknown.
func (r Resolver) Category(key string) DisplayInfo {
	if c, ok := r.cats[key]; ok {
		return DisplayInfo{Key: c.Key, Label: c.Label, Color: c.Color}
	}
	return DisplayInfo{Key: key, Label: key, Color: fallbackColor}
}

// Party resolves a party key with the same fallback rule.
func (r Resolver) Party(key string) DisplayInfo {
	if p, ok := r.parties[key]; ok {
		return DisplayInfo{Key: p.Key, Label: p.Label}
	}
	return DisplayInfo{Key: key, Label: key}
}
