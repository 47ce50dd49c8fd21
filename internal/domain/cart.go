package domain

import "time"

// Cart represents a shopper's cart. OwnerID is the authenticated user ID or
// an anonymous cart token supplied by the client.
type Cart struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Items     []LineItem `json:"items"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// LineItem is a single configured product in the cart. The option fields
// mirror the commerce API's variant attributes: wearables carry band/dial
// sizes, everything else carries memory/screen/ram.
type LineItem struct {
	VariantID int64    `json:"variant_id"`
	Model     string   `json:"model"`
	Color     string   `json:"color,omitempty"`
	Memory    string   `json:"memory,omitempty"`
	Screen    string   `json:"screen,omitempty"`
	RAM       string   `json:"ram,omitempty"`
	BandSize  string   `json:"band_size,omitempty"`
	DialSize  string   `json:"dial_size,omitempty"`
	Country   string   `json:"country,omitempty"`
	Price     Money    `json:"price"`
	Quantity  Quantity `json:"quantity"`
	ImageURL  string   `json:"image_url,omitempty"`

	// PendingRemovalAt is set when the shopper removes the item: the entry
	// stays in the cart (so the UI can play its exit animation) until this
	// deadline passes, at which point finalization drops it.
	PendingRemovalAt *time.Time `json:"pending_removal,omitempty"`
}

// PendingRemoval reports whether the item is marked for removal.
func (li *LineItem) PendingRemoval() bool {
	return li.PendingRemovalAt != nil
}

// TotalAmount calculates the total price of all items in the cart in minor
// units. Items awaiting removal finalization still count: they are in the
// cart until the removal window closes.
func (c *Cart) TotalAmount() Money {
	var total Money
	for _, item := range c.Items {
		total += item.Price * Money(item.Quantity)
	}
	return total
}

// ItemCount returns the total number of units in the cart.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += int(item.Quantity)
	}
	return count
}

// FindItemIndex returns the index of the cart item with the given variant ID,
// or -1 if not found. Variant ID is the sole line-item identity.
func (c *Cart) FindItemIndex(variantID int64) int {
	for i := range c.Items {
		if c.Items[i].VariantID == variantID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no items at all.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Normalize repairs quantities that decoded from bad persisted data:
// anything below 1 becomes 1. Returns true if a repair was made.
func (c *Cart) Normalize() bool {
	changed := false
	for i := range c.Items {
		if c.Items[i].Quantity < 1 {
			c.Items[i].Quantity = 1
			changed = true
		}
	}
	return changed
}

// FinalizeRemovals drops every item whose removal deadline has passed as of
// now, preserving the order of the remaining items. Returns the number of
// items dropped. Called lazily on load so correctness does not depend on the
// removal timer having fired.
func (c *Cart) FinalizeRemovals(now time.Time) int {
	kept := c.Items[:0]
	dropped := 0
	for _, item := range c.Items {
		if item.PendingRemovalAt != nil && !now.Before(*item.PendingRemovalAt) {
			dropped++
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept
	return dropped
}
