package domain

import "time"

// Delivery method identifiers.
const (
	DeliveryPickup  = "pickup"
	DeliveryCourier = "courier"
)

// CourierSurcharge is the flat courier delivery fee in minor units.
const CourierSurcharge Money = 500

// CheckoutForm is the shopper's order form as submitted to the checkout
// endpoint. Validation tags mirror the storefront's form rules.
type CheckoutForm struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,phone"`
	Address   string `json:"address"`
	Comment   string `json:"comment"`
	Delivery  string `json:"delivery" validate:"required,oneof=pickup courier"`
	Payment   string `json:"payment" validate:"required,oneof=card cash"`
}

// OrderItem is the coerced line-item snapshot sent to the commerce API.
type OrderItem struct {
	VariantID int64  `json:"variant_id"`
	Model     string `json:"model"`
	Price     Money  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// OrderSubmission is everything the order-processing endpoint needs: the
// validated form, the cart snapshot, the computed totals, and the shopper's
// user id (empty for anonymous orders).
type OrderSubmission struct {
	Customer CheckoutForm `json:"customer"`
	Items    []OrderItem  `json:"items"`
	UserID   string       `json:"user_id,omitempty"`
	Subtotal Money        `json:"subtotal"`
	Delivery Money        `json:"delivery_cost"`
	Total    Money        `json:"total"`
}

// Receipt is the confirmation persisted after a successful order, shown on
// the order-success page.
type Receipt struct {
	OrderID   string      `json:"order_id"`
	Items     []OrderItem `json:"items"`
	Total     Money       `json:"total"`
	Delivery  string      `json:"delivery"`
	Email     string      `json:"email"`
	CreatedAt time.Time   `json:"created_at"`
}
