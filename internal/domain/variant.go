package domain

import "strings"

// Variant is a purchasable configuration of a product model as returned by
// the commerce API. Option columns the variant does not constrain are empty
// strings, which act as wildcards during local matching.
type Variant struct {
	ID       int64  `json:"id"`
	Model    string `json:"model"`
	Color    string `json:"color,omitempty"`
	Memory   string `json:"memory,omitempty"`
	Screen   string `json:"screen_size,omitempty"`
	RAM      string `json:"ram,omitempty"`
	BandSize string `json:"band_size,omitempty"`
	DialSize string `json:"dial_size,omitempty"`
	Country  string `json:"country,omitempty"`
	Price    Money  `json:"price"`
	ImageURL string `json:"image,omitempty"`
}

// OptionSelection is the shopper's currently chosen option tuple. Empty
// fields mean "not selected".
type OptionSelection struct {
	Color    string `json:"color,omitempty"`
	Memory   string `json:"memory,omitempty"`
	Screen   string `json:"screen_size,omitempty"`
	RAM      string `json:"ram,omitempty"`
	BandSize string `json:"band_size,omitempty"`
	DialSize string `json:"dial_size,omitempty"`
	Country  string `json:"country,omitempty"`
}

// IsWearable reports whether a model uses the wearable option family
// (band and dial size) instead of memory/screen/ram.
func IsWearable(model string) bool {
	return strings.Contains(strings.ToLower(model), "watch")
}

// Matches reports whether the variant is compatible with the selection.
// Each selected option must equal the variant's value, except that an empty
// variant value is a wildcard and matches anything. Only the option family
// relevant to the model is consulted. This superset match is used purely for
// display fallback (price, image, first-variant default); the authoritative
// variant identity always comes from the commerce API's resolution endpoint.
func (v *Variant) Matches(sel OptionSelection) bool {
	if !optionMatches(v.Color, sel.Color) {
		return false
	}
	if !optionMatches(v.Country, sel.Country) {
		return false
	}

	if IsWearable(v.Model) {
		return optionMatches(v.BandSize, sel.BandSize) &&
			optionMatches(v.DialSize, sel.DialSize)
	}
	return optionMatches(v.Memory, sel.Memory) &&
		optionMatches(v.Screen, sel.Screen) &&
		optionMatches(v.RAM, sel.RAM)
}

// optionMatches applies the wildcard rule for a single option column.
func optionMatches(variantValue, selected string) bool {
	if selected == "" || variantValue == "" {
		return true
	}
	return variantValue == selected
}

// FirstMatch returns the first variant in the list compatible with the
// selection, or nil when nothing matches. An empty selection yields the
// first variant, which the product page uses as its default display.
func FirstMatch(variants []Variant, sel OptionSelection) *Variant {
	for i := range variants {
		if variants[i].Matches(sel) {
			return &variants[i]
		}
	}
	return nil
}
