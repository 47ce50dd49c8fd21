package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frostmag155/shop-frontend/internal/domain"
	apperrors "github.com/frostmag155/shop-frontend/pkg/errors"
	"github.com/frostmag155/shop-frontend/pkg/pagination"
)

// CatalogClient is the slice of the commerce client the catalog needs.
type CatalogClient interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Variants(ctx context.Context, model string) ([]domain.Variant, error)
	Specs(ctx context.Context, model string) ([]domain.Spec, error)
	CountryFeatures(ctx context.Context, model string) ([]domain.CountryFeature, error)
	ResolveVariantID(ctx context.Context, model string, sel domain.OptionSelection) (int64, error)
}

// CatalogService serves product listings, product detail aggregates, and
// variant resolution backed by the commerce API.
type CatalogService struct {
	commerce CatalogClient
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(commerce CatalogClient, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		commerce: commerce,
		logger:   logger,
	}
}

// ListProducts returns a page of the catalog listing. The commerce API
// returns the full list in one shot, so pagination is applied locally.
func (s *CatalogService) ListProducts(ctx context.Context, params pagination.Params) (pagination.Result[domain.Product], error) {
	products, err := s.commerce.Products(ctx)
	if err != nil {
		return pagination.Result[domain.Product]{}, fmt.Errorf("list products: %w", err)
	}

	total := len(products)
	start := params.Offset
	if start > total {
		start = total
	}
	end := start + params.PerPage
	if end > total {
		end = total
	}

	return pagination.NewResult(products[start:end], total, params), nil
}

// ProductDetail aggregates everything the product page needs: the variant
// list, the spec sheet, and country features grouped by country code. The
// three fetches hit the commerce API on every page view; variant data is
// never cached across option changes.
func (s *CatalogService) ProductDetail(ctx context.Context, model string) (*domain.ProductDetail, error) {
	if model == "" {
		return nil, apperrors.InvalidInput("model is required")
	}

	variants, err := s.commerce.Variants(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("fetch variants for %s: %w", model, err)
	}
	if len(variants) == 0 {
		return nil, apperrors.NotFound("product", model)
	}

	specs, err := s.commerce.Specs(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("fetch specs for %s: %w", model, err)
	}

	features, err := s.commerce.CountryFeatures(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("fetch country features for %s: %w", model, err)
	}

	grouped := make(map[string][]domain.CountryFeature)
	for _, f := range features {
		grouped[f.Country] = append(grouped[f.Country], f)
	}

	return &domain.ProductDetail{
		Model:           model,
		Variants:        variants,
		Specs:           specs,
		CountryFeatures: grouped,
	}, nil
}

// ResolveVariant resolves the shopper's option tuple to a concrete variant.
// Identity always comes from the commerce API's resolution endpoint; the
// fetched variant list only fills in display data (price, image) for the
// resolved ID. Resolution happens fresh on every call.
func (s *CatalogService) ResolveVariant(ctx context.Context, model string, sel domain.OptionSelection) (*domain.Variant, error) {
	if model == "" {
		return nil, apperrors.InvalidInput("model is required")
	}

	id, err := s.commerce.ResolveVariantID(ctx, model, sel)
	if err != nil {
		return nil, fmt.Errorf("resolve variant for %s: %w", model, err)
	}

	variants, err := s.commerce.Variants(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("fetch variants for %s: %w", model, err)
	}

	for i := range variants {
		if variants[i].ID == id {
			return &variants[i], nil
		}
	}

	// The resolved ID is authoritative even when the variant list lags
	// behind it; fall back to a local match for display data.
	if match := domain.FirstMatch(variants, sel); match != nil {
		v := *match
		v.ID = id
		return &v, nil
	}

	return &domain.Variant{ID: id, Model: model}, nil
}

// DisplayVariant picks the variant to show for the current selection without
// consulting the resolution endpoint: first compatible match, or the first
// variant when nothing is selected. Display fallback only; never used for
// cart identity.
func (s *CatalogService) DisplayVariant(ctx context.Context, model string, sel domain.OptionSelection) (*domain.Variant, error) {
	variants, err := s.commerce.Variants(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("fetch variants for %s: %w", model, err)
	}

	if match := domain.FirstMatch(variants, sel); match != nil {
		return match, nil
	}
	return nil, apperrors.NotFound("variant", model)
}
