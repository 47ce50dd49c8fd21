package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/frostmag155/shop-frontend/internal/domain"
	"github.com/frostmag155/shop-frontend/internal/service"
	"github.com/frostmag155/shop-frontend/pkg/httputil"
	"github.com/frostmag155/shop-frontend/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout endpoints.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// Summary handles GET /api/v1/checkout/summary. The delivery query parameter
// picks the method used for the totals; it defaults to pickup.
func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	shopper, ok := requireShopper(w, r)
	if !ok {
		return
	}

	delivery := r.URL.Query().Get("delivery")
	if delivery == "" {
		delivery = domain.DeliveryPickup
	}

	summary, err := h.service.Summary(r.Context(), shopper, delivery)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}

// Submit handles POST /api/v1/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	shopper, ok := requireShopper(w, r)
	if !ok {
		return
	}

	var form domain.CheckoutForm
	if err := validator.DecodeAndValidate(r, &form); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	receipt, err := h.service.Submit(r.Context(), shopper, form)
	if err != nil {
		h.writeSubmitError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: receipt})
}

// Receipt handles GET /api/v1/checkout/receipt
func (h *CheckoutHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	shopper, ok := requireShopper(w, r)
	if !ok {
		return
	}

	receipt, err := h.service.Receipt(r.Context(), shopper)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: receipt})
}

// writeSubmitError renders submission failures with their failure class so
// the UI can pick its message without parsing error text. Field-scoped
// validation failures keep the shopper's input on the form.
func (h *CheckoutHandler) writeSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	var formErr *service.FormValidationError
	if errors.As(err, &formErr) {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "order form validation failed",
				Fields:  formErr.Fields,
			},
		})
		return
	}

	class := service.FailureClass(err)
	if class == service.FailureUnknown || class == service.FailureServerError {
		h.logger.ErrorContext(r.Context(), "order submission error",
			slog.String("class", class),
			slog.String("error", err.Error()),
		)
	}

	httputil.WriteJSON(w, submitStatus(class), httputil.Response{
		Error: &httputil.ErrorResponse{
			Code:    "ORDER_FAILED",
			Message: "order submission failed: " + class,
		},
	})
}

func submitStatus(class string) int {
	switch class {
	case service.FailureValidationRejected:
		return http.StatusUnprocessableEntity
	case service.FailureNetworkUnreachable:
		return http.StatusBadGateway
	case service.FailureServerError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
