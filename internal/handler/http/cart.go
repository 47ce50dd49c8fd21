package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/frostmag155/shop-frontend/internal/domain"
	"github.com/frostmag155/shop-frontend/internal/service"
	"github.com/frostmag155/shop-frontend/pkg/httputil"
	"github.com/frostmag155/shop-frontend/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// AddItemRequest is the JSON request body for adding a resolved variant to
// the cart. The variant id must come from the resolution endpoint.
type AddItemRequest struct {
	VariantID int64  `json:"variant_id" validate:"required"`
	Model     string `json:"model" validate:"required,min=1,max=200"`
	Color     string `json:"color"`
	Memory    string `json:"memory"`
	Screen    string `json:"screen_size"`
	RAM       string `json:"ram"`
	BandSize  string `json:"band_size"`
	DialSize  string `json:"dial_size"`
	Country   string `json:"country"`
	Price     int64  `json:"price" validate:"gte=0"`
	ImageURL  string `json:"image_url"`
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	shopper, ok := requireShopper(w, r)
	if !ok {
		return
	}

	cart, err := h.service.GetCart(r.Context(), shopper)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	shopper, ok := requireShopper(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.AddItem(r.Context(), shopper, service.AddItemInput{
		VariantID: req.VariantID,
		Model:     req.Model,
		Color:     req.Color,
		Memory:    req.Memory,
		Screen:    req.Screen,
		RAM:       req.RAM,
		BandSize:  req.BandSize,
		DialSize:  req.DialSize,
		Country:   req.Country,
		Price:     domain.Money(req.Price),
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// IncrementItem handles POST /api/v1/cart/items/{variantId}/increment
func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	h.adjustQuantity(w, r, +1)
}

// DecrementItem handles POST /api/v1/cart/items/{variantId}/decrement
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	h.adjustQuantity(w, r, -1)
}

func (h *CartHandler) adjustQuantity(w http.ResponseWriter, r *http.Request, delta int) {
	shopper, ok := requireShopper(w, r)
	if !ok {
		return
	}

	variantID, ok := parseVariantID(w, r)
	if !ok {
		return
	}

	cart, err := h.service.AdjustQuantity(r.Context(), shopper, variantID, delta)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// RemoveItem handles DELETE /api/v1/cart/items/{variantId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	shopper, ok := requireShopper(w, r)
	if !ok {
		return
	}

	variantID, ok := parseVariantID(w, r)
	if !ok {
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), shopper, variantID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	shopper, ok := requireShopper(w, r)
	if !ok {
		return
	}

	if err := h.service.ClearCart(r.Context(), shopper); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "cleared"}})
}

func parseVariantID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "variantId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "variantId must be a positive integer"},
		})
		return 0, false
	}
	return id, true
}
