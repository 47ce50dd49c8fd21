package domain

// Shopper identifies the cart owner for a request. For authenticated users
// CartID equals the user ID; anonymous shoppers supply a client-generated
// cart token and UserID stays empty. Remote mirroring only happens for
// shoppers with a UserID.
type Shopper struct {
	CartID string `json:"cart_id"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Authenticated reports whether the shopper has a signed-in account.
func (s Shopper) Authenticated() bool {
	return s.UserID != ""
}
