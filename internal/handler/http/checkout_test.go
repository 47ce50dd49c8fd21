package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/frostmag155/shop-frontend/internal/commerce"
	"github.com/frostmag155/shop-frontend/internal/domain"
	"github.com/frostmag155/shop-frontend/internal/service"
	apperrors "github.com/frostmag155/shop-frontend/pkg/errors"
)

// ============================================================================
// Mocks
// ============================================================================

type mockStateRepository struct {
	mock.Mock
}

func (m *mockStateRepository) SaveReceipt(ctx context.Context, cartID string, receipt *domain.Receipt) error {
	args := m.Called(ctx, cartID, receipt)
	return args.Error(0)
}

func (m *mockStateRepository) GetReceipt(ctx context.Context, cartID string) (*domain.Receipt, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *mockStateRepository) SetLastMirroredAt(ctx context.Context, cartID string, at time.Time) error {
	args := m.Called(ctx, cartID, at)
	return args.Error(0)
}

func (m *mockStateRepository) LastMirroredAt(ctx context.Context, cartID string) (time.Time, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *mockStateRepository) SetCheckoutAmount(ctx context.Context, cartID string, amount domain.Money) error {
	args := m.Called(ctx, cartID, amount)
	return args.Error(0)
}

func (m *mockStateRepository) CheckoutAmount(ctx context.Context, cartID string) (domain.Money, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).(domain.Money), args.Error(1)
}

type mockOrderProcessor struct {
	mock.Mock
}

func (m *mockOrderProcessor) ProcessOrder(ctx context.Context, order *domain.OrderSubmission) (*commerce.OrderResult, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.OrderResult), args.Error(1)
}

// ============================================================================
// Test helpers
// ============================================================================

type checkoutEnv struct {
	repo   *mockCartRepository
	state  *mockStateRepository
	orders *mockOrderProcessor
	router *chi.Mux
}

func setupCheckout(t *testing.T) *checkoutEnv {
	t.Helper()
	repo := new(mockCartRepository)
	state := new(mockStateRepository)
	orders := new(mockOrderProcessor)
	carts := testCartService(repo)
	svc := service.NewCheckoutService(carts, state, orders, testEventProducer(), testLogger())
	handler := NewCheckoutHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Get("/summary", handler.Summary)
		r.Post("/", handler.Submit)
		r.Get("/receipt", handler.Receipt)
	})

	return &checkoutEnv{repo: repo, state: state, orders: orders, router: r}
}

func validCheckoutJSON() []byte {
	form := domain.CheckoutForm{
		FirstName: "Ivan",
		LastName:  "Petrov",
		Email:     "ivan@example.com",
		Phone:     "+7 (999) 123-45-67",
		Address:   "Moscow, Tverskaya 1",
		Delivery:  domain.DeliveryCourier,
		Payment:   "card",
	}
	b, _ := json.Marshal(form)
	return b
}

// ============================================================================
// GET /api/v1/checkout/summary
// ============================================================================

func TestCheckoutSummary_CourierSurcharge(t *testing.T) {
	env := setupCheckout(t)

	env.repo.On("Get", mock.Anything, "guest-42").Return(sampleCart(), nil)
	env.state.On("SetCheckoutAmount", mock.Anything, "guest-42", mock.AnythingOfType("domain.Money")).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/summary?delivery=courier", nil)
	req.Header.Set("X-Cart-ID", "guest-42")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var summary service.CheckoutSummary
	require.NoError(t, json.Unmarshal(data, &summary))

	// 79990 x 2 plus the flat courier surcharge.
	assert.Equal(t, domain.Money(159980), summary.Subtotal)
	assert.Equal(t, domain.CourierSurcharge, summary.Delivery)
	assert.Equal(t, domain.Money(160480), summary.Total)
}

func TestCheckoutSummary_DefaultsToPickup(t *testing.T) {
	env := setupCheckout(t)

	env.repo.On("Get", mock.Anything, "guest-42").Return(sampleCart(), nil)
	env.state.On("SetCheckoutAmount", mock.Anything, "guest-42", domain.Money(159980)).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/summary", nil)
	req.Header.Set("X-Cart-ID", "guest-42")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.state.AssertCalled(t, "SetCheckoutAmount", mock.Anything, "guest-42", domain.Money(159980))
}

// ============================================================================
// POST /api/v1/checkout
// ============================================================================

func TestCheckoutSubmit_Success(t *testing.T) {
	env := setupCheckout(t)

	env.repo.On("Get", mock.Anything, "guest-42").Return(sampleCart(), nil)
	env.repo.On("Delete", mock.Anything, "guest-42").Return(nil)
	env.orders.On("ProcessOrder", mock.Anything, mock.AnythingOfType("*domain.OrderSubmission")).
		Return(&commerce.OrderResult{Success: true, OrderID: "ORD-100"}, nil)
	env.state.On("SaveReceipt", mock.Anything, "guest-42", mock.AnythingOfType("*domain.Receipt")).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/", bytes.NewReader(validCheckoutJSON()))
	req.Header.Set("X-Cart-ID", "guest-42")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var receipt domain.Receipt
	require.NoError(t, json.Unmarshal(data, &receipt))
	assert.Equal(t, "ORD-100", receipt.OrderID)

	env.repo.AssertCalled(t, "Delete", mock.Anything, "guest-42")
}

func TestCheckoutSubmit_BadPhone_FieldError(t *testing.T) {
	env := setupCheckout(t)

	var form domain.CheckoutForm
	require.NoError(t, json.Unmarshal(validCheckoutJSON(), &form))
	form.Phone = "12345"
	body, _ := json.Marshal(form)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/", bytes.NewReader(body))
	req.Header.Set("X-Cart-ID", "guest-42")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Fields, "phone")
	env.orders.AssertNotCalled(t, "ProcessOrder", mock.Anything, mock.Anything)
}

func TestCheckoutSubmit_EmptyCart_Rejected(t *testing.T) {
	env := setupCheckout(t)

	empty := sampleCart()
	empty.Items = nil
	env.repo.On("Get", mock.Anything, "guest-42").Return(empty, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/", bytes.NewReader(validCheckoutJSON()))
	req.Header.Set("X-Cart-ID", "guest-42")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ORDER_FAILED", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, service.FailureValidationRejected)
}

func TestCheckoutSubmit_UpstreamUnreachable_Returns502(t *testing.T) {
	env := setupCheckout(t)

	env.repo.On("Get", mock.Anything, "guest-42").Return(sampleCart(), nil)
	env.orders.On("ProcessOrder", mock.Anything, mock.Anything).
		Return(nil, apperrors.Unreachable("commerce api unreachable"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/", bytes.NewReader(validCheckoutJSON()))
	req.Header.Set("X-Cart-ID", "guest-42")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, service.FailureNetworkUnreachable)
	// The cart must survive a failed submission.
	env.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// ============================================================================
// GET /api/v1/checkout/receipt
// ============================================================================

func TestCheckoutReceipt_Success(t *testing.T) {
	env := setupCheckout(t)

	env.state.On("GetReceipt", mock.Anything, "guest-42").
		Return(&domain.Receipt{OrderID: "ORD-100", Total: 500}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/receipt", nil)
	req.Header.Set("X-Cart-ID", "guest-42")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckoutReceipt_NotFound(t *testing.T) {
	env := setupCheckout(t)

	env.state.On("GetReceipt", mock.Anything, "guest-42").
		Return(nil, apperrors.NotFound("receipt", "guest-42"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/receipt", nil)
	req.Header.Set("X-Cart-ID", "guest-42")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
