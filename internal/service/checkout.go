package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/frostmag155/shop-frontend/internal/commerce"
	"github.com/frostmag155/shop-frontend/internal/domain"
	"github.com/frostmag155/shop-frontend/internal/event"
	"github.com/frostmag155/shop-frontend/internal/repository"
	apperrors "github.com/frostmag155/shop-frontend/pkg/errors"
)

// Failure classes for order submission errors. The storefront UI picks its
// message by class, never by raw error text.
const (
	FailureNetworkUnreachable = "network_unreachable"
	FailureServerError        = "server_error"
	FailureValidationRejected = "validation_rejected"
	FailureUnknown            = "unknown"
)

// OrderProcessor is the slice of the commerce client checkout needs.
type OrderProcessor interface {
	ProcessOrder(ctx context.Context, order *domain.OrderSubmission) (*commerce.OrderResult, error)
}

// CheckoutSummary is the totals snapshot shown on the checkout page.
type CheckoutSummary struct {
	Items    []domain.OrderItem `json:"items"`
	Subtotal domain.Money       `json:"subtotal"`
	Delivery domain.Money       `json:"delivery_cost"`
	Total    domain.Money       `json:"total"`
}

// CheckoutService orchestrates order submission: validate the form, compute
// totals, submit to the commerce API, and on success clear the cart and
// persist the receipt. There is no automatic retry; a failed submission
// returns to the shopper with its failure class.
type CheckoutService struct {
	carts    *CartService
	state    repository.ShopperStateRepository
	orders   OrderProcessor
	producer *event.Producer
	logger   *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	carts *CartService,
	state repository.ShopperStateRepository,
	orders OrderProcessor,
	producer *event.Producer,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		state:    state,
		orders:   orders,
		producer: producer,
		logger:   logger,
	}
}

// Summary computes the checkout totals for the shopper's cart and the chosen
// delivery method, and snapshots the amount for the payment step.
func (s *CheckoutService) Summary(ctx context.Context, shopper domain.Shopper, delivery string) (*CheckoutSummary, error) {
	cart, err := s.carts.GetCart(ctx, shopper)
	if err != nil {
		return nil, err
	}

	summary := buildSummary(cart, delivery)

	if err := s.state.SetCheckoutAmount(ctx, shopper.CartID, summary.Total); err != nil {
		s.logger.WarnContext(ctx, "failed to snapshot checkout amount",
			slog.String("cart_id", shopper.CartID),
			slog.String("error", err.Error()),
		)
	}

	return summary, nil
}

// Submit validates the form and submits the order. Validation failures return
// an AppError carrying field-scoped messages and leave the cart untouched.
// On success the local cart is cleared, the remote cart is best-effort
// cleared, and the receipt is persisted for the confirmation page.
func (s *CheckoutService) Submit(ctx context.Context, shopper domain.Shopper, form domain.CheckoutForm) (*domain.Receipt, error) {
	cart, err := s.carts.GetCart(ctx, shopper)
	if err != nil {
		return nil, err
	}

	if fieldErrs := ValidateCheckoutForm(form); len(fieldErrs) > 0 {
		return nil, &FormValidationError{Fields: fieldErrs}
	}
	if cart.IsEmpty() {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	summary := buildSummary(cart, form.Delivery)
	submission := &domain.OrderSubmission{
		Customer: form,
		Items:    summary.Items,
		UserID:   shopper.UserID,
		Subtotal: summary.Subtotal,
		Delivery: summary.Delivery,
		Total:    summary.Total,
	}

	result, err := s.orders.ProcessOrder(ctx, submission)
	if err != nil {
		s.logger.ErrorContext(ctx, "order submission failed",
			slog.String("cart_id", shopper.CartID),
			slog.String("class", FailureClass(err)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	orderID := result.OrderID
	if orderID == "" {
		orderID = uuid.New().String()
	}

	receipt := &domain.Receipt{
		OrderID:   orderID,
		Items:     summary.Items,
		Total:     summary.Total,
		Delivery:  form.Delivery,
		Email:     form.Email,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.state.SaveReceipt(ctx, shopper.CartID, receipt); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist receipt",
			slog.String("cart_id", shopper.CartID),
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	// Clear the local cart; the remote mirror is cleared best-effort
	// inside ClearCart.
	if err := s.carts.ClearCart(ctx, shopper); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after order",
			slog.String("cart_id", shopper.CartID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishOrderSubmitted(ctx, shopper.CartID, receipt); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.submitted event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order submitted",
		slog.String("cart_id", shopper.CartID),
		slog.String("order_id", orderID),
		slog.Int64("total", int64(receipt.Total)),
	)

	return receipt, nil
}

// Receipt returns the shopper's last-order receipt for the confirmation page.
func (s *CheckoutService) Receipt(ctx context.Context, shopper domain.Shopper) (*domain.Receipt, error) {
	return s.state.GetReceipt(ctx, shopper.CartID)
}

// buildSummary coerces the cart into the order snapshot and computes totals.
// Courier delivery adds the flat surcharge; pickup is free.
func buildSummary(cart *domain.Cart, delivery string) *CheckoutSummary {
	items := make([]domain.OrderItem, 0, len(cart.Items))
	var subtotal domain.Money
	for _, li := range cart.Items {
		items = append(items, domain.OrderItem{
			VariantID: li.VariantID,
			Model:     li.Model,
			Price:     li.Price,
			Quantity:  int(li.Quantity),
		})
		subtotal += li.Price * domain.Money(li.Quantity)
	}

	var deliveryCost domain.Money
	if delivery == domain.DeliveryCourier {
		deliveryCost = domain.CourierSurcharge
	}

	return &CheckoutSummary{
		Items:    items,
		Subtotal: subtotal,
		Delivery: deliveryCost,
		Total:    subtotal + deliveryCost,
	}
}

// FormValidationError carries field-scoped validation messages back to the
// form so the shopper's input is retained.
type FormValidationError struct {
	Fields map[string]string
}

func (e *FormValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "form validation failed: " + strings.Join(parts, "; ")
}

// ValidateCheckoutForm applies the storefront's form rules and returns
// field-scoped errors, empty when the form is valid.
func ValidateCheckoutForm(form domain.CheckoutForm) map[string]string {
	fields := make(map[string]string)

	if len(strings.TrimSpace(form.FirstName)) < 2 {
		fields["first_name"] = "must be at least 2 characters"
	}
	if len(strings.TrimSpace(form.LastName)) < 2 {
		fields["last_name"] = "must be at least 2 characters"
	}
	if !validEmail(form.Email) {
		fields["email"] = "must be a valid email address"
	}
	if digitCount(form.Phone) < 10 {
		fields["phone"] = "must contain at least 10 digits"
	}
	if form.Delivery != domain.DeliveryPickup && form.Delivery != domain.DeliveryCourier {
		fields["delivery"] = "must be pickup or courier"
	}
	if form.Delivery == domain.DeliveryCourier && strings.TrimSpace(form.Address) == "" {
		fields["address"] = "is required for courier delivery"
	}

	return fields
}

// validEmail checks the local@domain.tld shape without attempting full RFC
// parsing, matching the storefront's form rule.
func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at < 1 || at != strings.LastIndex(email, "@") {
		return false
	}
	domainPart := email[at+1:]
	dot := strings.LastIndex(domainPart, ".")
	return dot >= 1 && dot < len(domainPart)-1
}

// digitCount counts decimal digits, ignoring formatting characters.
func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// FailureClass maps a submission error onto the storefront's failure
// taxonomy.
func FailureClass(err error) string {
	var formErr *FormValidationError
	switch {
	case errors.As(err, &formErr), errors.Is(err, apperrors.ErrRejected), errors.Is(err, apperrors.ErrInvalidInput):
		return FailureValidationRejected
	case errors.Is(err, apperrors.ErrUnreachable):
		return FailureNetworkUnreachable
	case errors.Is(err, apperrors.ErrInternal), errors.Is(err, apperrors.ErrServiceUnavail):
		return FailureServerError
	default:
		return FailureUnknown
	}
}
