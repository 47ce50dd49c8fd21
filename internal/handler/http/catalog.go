package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/frostmag155/shop-frontend/internal/domain"
	"github.com/frostmag155/shop-frontend/internal/service"
	"github.com/frostmag155/shop-frontend/pkg/httputil"
	"github.com/frostmag155/shop-frontend/pkg/pagination"
	"github.com/frostmag155/shop-frontend/pkg/validator"
)

// CatalogHandler handles HTTP requests for catalog endpoints.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// ResolveVariantRequest is the JSON request body for resolving the shopper's
// option tuple to a concrete variant id.
type ResolveVariantRequest struct {
	Model    string `json:"model" validate:"required,min=1,max=200"`
	Color    string `json:"color"`
	Memory   string `json:"memory"`
	Screen   string `json:"screen_size"`
	RAM      string `json:"ram"`
	BandSize string `json:"band_size"`
	DialSize string `json:"dial_size"`
	Country  string `json:"country"`
}

func (req *ResolveVariantRequest) selection() domain.OptionSelection {
	return domain.OptionSelection{
		Color:    req.Color,
		Memory:   req.Memory,
		Screen:   req.Screen,
		RAM:      req.RAM,
		BandSize: req.BandSize,
		DialSize: req.DialSize,
		Country:  req.Country,
	}
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	result, err := h.service.ListProducts(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// ProductDetail handles GET /api/v1/products/{model}
func (h *CatalogHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")

	detail, err := h.service.ProductDetail(r.Context(), model)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

// ResolveVariant handles POST /api/v1/get-variant-id
func (h *CatalogHandler) ResolveVariant(w http.ResponseWriter, r *http.Request) {
	var req ResolveVariantRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	variant, err := h.service.ResolveVariant(r.Context(), req.Model, req.selection())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: variant})
}

// DisplayVariant handles GET /api/v1/products/{model}/display-variant.
// Selection comes from query parameters; the result is display-only and
// never used for cart identity.
func (h *CatalogHandler) DisplayVariant(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	q := r.URL.Query()
	sel := domain.OptionSelection{
		Color:    q.Get("color"),
		Memory:   q.Get("memory"),
		Screen:   q.Get("screen_size"),
		RAM:      q.Get("ram"),
		BandSize: q.Get("band_size"),
		DialSize: q.Get("dial_size"),
		Country:  q.Get("country"),
	}

	variant, err := h.service.DisplayVariant(r.Context(), model, sel)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: variant})
}
