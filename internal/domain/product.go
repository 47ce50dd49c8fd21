package domain

import "encoding/json"

// Product is a catalog listing entry. The commerce API is inconsistent about
// field casing ("Name" vs "name"), so decoding normalizes both spellings.
type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    Money  `json:"price"`
	ImageURL string `json:"image"`
	Category string `json:"category,omitempty"`
}

// UnmarshalJSON decodes a product record, accepting either casing for the
// name field.
func (p *Product) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		NameUpper string `json:"Name"`
		Price     Money  `json:"price"`
		ImageURL  string `json:"image"`
		Category  string `json:"category"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	name := raw.Name
	if name == "" {
		name = raw.NameUpper
	}

	*p = Product{
		ID:       raw.ID,
		Name:     name,
		Price:    raw.Price,
		ImageURL: raw.ImageURL,
		Category: raw.Category,
	}
	return nil
}

// Spec is a single specification row for a product model.
type Spec struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CountryFeature describes region-specific differences for a product model,
// keyed by country code.
type CountryFeature struct {
	Country     string `json:"country_code"`
	Feature     string `json:"feature,omitempty"`
	Description string `json:"description,omitempty"`
}

// ProductDetail aggregates everything the product page needs in one payload:
// the variant list, the spec sheet, and country features grouped by code.
type ProductDetail struct {
	Model           string                      `json:"model"`
	Variants        []Variant                   `json:"variants"`
	Specs           []Spec                      `json:"specs"`
	CountryFeatures map[string][]CountryFeature `json:"country_features"`
}
