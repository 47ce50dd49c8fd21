// Package commerce implements the HTTP client for the remote commerce API
// that backs the storefront: catalog reads, variant resolution, cart
// mirroring, auth, and order processing.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/frostmag155/shop-frontend/internal/domain"
	apperrors "github.com/frostmag155/shop-frontend/pkg/errors"
	"github.com/frostmag155/shop-frontend/pkg/httpclient"
)

// Credentials is the login/register payload proxied to the commerce API.
type Credentials struct {
	Name       string `json:"name,omitempty"`
	SecondName string `json:"second_name,omitempty"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// User is the account record nested in the commerce API's login response.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// authResponse is the {success, user?, message?} envelope the auth endpoints
// answer with. Register omits the user.
type authResponse struct {
	Success bool   `json:"success"`
	User    User   `json:"user"`
	Message string `json:"message,omitempty"`
}

// OrderResult is the commerce API's response to a processed order.
type OrderResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Message string `json:"message,omitempty"`
}

// Client talks to the commerce API. Catalog reads go through a circuit
// breaker so a flapping upstream degrades the product pages instead of
// hanging them. Writes use a client with retries disabled: cart mirroring
// and order submission must never repeat a request.
type Client struct {
	baseURL string
	reads   *httpclient.Client
	writes  *httpclient.Client
	catalog *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// New creates a commerce API client rooted at baseURL.
func New(baseURL string, httpCfg httpclient.Config, logger *slog.Logger) *Client {
	reads := httpclient.New(httpCfg)

	writeCfg := httpCfg
	writeCfg.MaxRetries = 0
	writes := httpclient.New(writeCfg)

	cbCfg := httpclient.DefaultCircuitBreakerConfig("commerce-catalog")

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		reads:   reads,
		writes:  writes,
		catalog: httpclient.NewCircuitBreakerClient(reads, cbCfg, logger),
		logger:  logger,
	}
}

// Login authenticates a shopper against the commerce API. The response
// envelope is {success, user?, message?}; a 200 with success=false is still
// a rejected login.
func (c *Client) Login(ctx context.Context, creds Credentials) (*User, error) {
	var resp authResponse
	if err := c.postJSON(ctx, "/login", creds, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "login rejected"
		}
		return nil, apperrors.Unauthorized(msg)
	}
	return &resp.User, nil
}

// Register creates a new shopper account. The response carries only
// {success, message?}; signing the shopper in afterwards is a separate
// login call.
func (c *Client) Register(ctx context.Context, creds Credentials) error {
	var resp authResponse
	if err := c.postJSON(ctx, "/register", creds, &resp); err != nil {
		return err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "registration rejected"
		}
		return apperrors.UpstreamRejected(msg)
	}
	return nil
}

// Products fetches the catalog listing.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.getJSON(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Variants fetches all purchasable configurations of a product model.
func (c *Client) Variants(ctx context.Context, model string) ([]domain.Variant, error) {
	var variants []domain.Variant
	if err := c.getJSON(ctx, "/variants/"+url.PathEscape(model), &variants); err != nil {
		return nil, err
	}
	return variants, nil
}

// Specs fetches the specification sheet for a product model.
func (c *Client) Specs(ctx context.Context, model string) ([]domain.Spec, error) {
	var specs []domain.Spec
	if err := c.getJSON(ctx, "/specs/"+url.PathEscape(model), &specs); err != nil {
		return nil, err
	}
	return specs, nil
}

// CountryFeatures fetches region-specific feature rows for a product model.
func (c *Client) CountryFeatures(ctx context.Context, model string) ([]domain.CountryFeature, error) {
	var features []domain.CountryFeature
	if err := c.getJSON(ctx, "/country-features/"+url.PathEscape(model), &features); err != nil {
		return nil, err
	}
	return features, nil
}

// variantIDRequest is the option tuple sent for authoritative resolution.
type variantIDRequest struct {
	Model string `json:"model"`
	domain.OptionSelection
}

// ResolveVariantID resolves the option tuple to a variant ID. This is the
// single source of variant identity; local matching is display-only.
func (c *Client) ResolveVariantID(ctx context.Context, model string, sel domain.OptionSelection) (int64, error) {
	var result struct {
		Success   bool  `json:"success"`
		VariantID int64 `json:"variantId"`
	}
	req := variantIDRequest{Model: model, OptionSelection: sel}
	if err := c.postJSON(ctx, "/get-variant-id", req, &result); err != nil {
		return 0, err
	}
	if !result.Success || result.VariantID == 0 {
		return 0, apperrors.NotFound("variant", model)
	}
	return result.VariantID, nil
}

// cartWireItem is a cart line item in the commerce API's camelCase shape.
type cartWireItem struct {
	VariantID int64        `json:"variantId"`
	Model     string       `json:"model"`
	Color     string       `json:"color,omitempty"`
	Memory    string       `json:"memory,omitempty"`
	Screen    string       `json:"screenSize,omitempty"`
	RAM       string       `json:"ram,omitempty"`
	BandSize  string       `json:"bandSize,omitempty"`
	DialSize  string       `json:"dialSize,omitempty"`
	Country   string       `json:"country,omitempty"`
	Price     domain.Money `json:"price"`
	Quantity  int          `json:"quantity"`
	Image     string       `json:"image,omitempty"`
}

func toCartWireItems(items []domain.LineItem) []cartWireItem {
	wire := make([]cartWireItem, 0, len(items))
	for _, item := range items {
		wire = append(wire, cartWireItem{
			VariantID: item.VariantID,
			Model:     item.Model,
			Color:     item.Color,
			Memory:    item.Memory,
			Screen:    item.Screen,
			RAM:       item.RAM,
			BandSize:  item.BandSize,
			DialSize:  item.DialSize,
			Country:   item.Country,
			Price:     item.Price,
			Quantity:  int(item.Quantity),
			Image:     item.ImageURL,
		})
	}
	return wire
}

// cartSnapshot is the {userId, cartItems} mirror payload for /save-cart.
// Version is an additive ordering token: the remote accepts a push only when
// it is >= the last accepted one.
type cartSnapshot struct {
	UserID    string         `json:"userId"`
	CartItems []cartWireItem `json:"cartItems"`
	Version   int            `json:"version"`
}

// SaveCart pushes the cart snapshot to the remote mirror.
func (c *Client) SaveCart(ctx context.Context, userID string, cart *domain.Cart) error {
	snapshot := cartSnapshot{
		UserID:    userID,
		CartItems: toCartWireItems(cart.Items),
		Version:   cart.Version,
	}
	return c.postJSON(ctx, "/save-cart", snapshot, nil)
}

// ClearCart empties the remote cart mirror.
func (c *Client) ClearCart(ctx context.Context, userID string) error {
	payload := map[string]string{"userId": userID}
	return c.postJSON(ctx, "/clear-cart", payload, nil)
}

// orderWireItem is a coerced cart entry in the process-order payload.
type orderWireItem struct {
	VariantID int64        `json:"variantId"`
	Model     string       `json:"model"`
	Price     domain.Money `json:"price"`
	Quantity  int          `json:"quantity"`
}

// orderRequest is the flat /api/process-order payload the commerce API
// expects: contact fields at the top level, the cart snapshot under "cart",
// and the computed total under "totalAmount".
type orderRequest struct {
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	Cart        []orderWireItem `json:"cart"`
	UserID      string          `json:"userId,omitempty"`
	TotalAmount domain.Money    `json:"totalAmount"`
	Delivery    string          `json:"delivery,omitempty"`
	Address     string          `json:"address,omitempty"`
	Comment     string          `json:"comment,omitempty"`
	Payment     string          `json:"payment,omitempty"`
}

// ProcessOrder submits the order to the commerce API.
func (c *Client) ProcessOrder(ctx context.Context, order *domain.OrderSubmission) (*OrderResult, error) {
	items := make([]orderWireItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderWireItem{
			VariantID: item.VariantID,
			Model:     item.Model,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	req := orderRequest{
		FirstName:   order.Customer.FirstName,
		LastName:    order.Customer.LastName,
		Email:       order.Customer.Email,
		Phone:       order.Customer.Phone,
		Cart:        items,
		UserID:      order.UserID,
		TotalAmount: order.Total,
		Delivery:    order.Customer.Delivery,
		Address:     order.Customer.Address,
		Comment:     order.Customer.Comment,
		Payment:     order.Customer.Payment,
	}

	var result OrderResult
	if err := c.postJSON(ctx, "/api/process-order", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// getJSON performs a catalog GET through the circuit breaker and decodes the
// response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.catalog.Get(ctx, c.baseURL+path)
	if err != nil {
		return c.classifyTransportError(path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, path)
	}

	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// postJSON performs a POST with a JSON body and optionally decodes the
// response into out (pass nil to discard it).
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}

	resp, err := c.writes.Post(ctx, c.baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return c.classifyTransportError(path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, path)
	}

	defer func() { _ = resp.Body.Close() }()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// classifyTransportError maps transport-level failures onto the unreachable
// error class. Circuit-open short-circuits count as unavailable, not
// unreachable, since the upstream was recently failing rather than absent.
func (c *Client) classifyTransportError(path string, err error) error {
	if errors.Is(err, httpclient.ErrCircuitOpen) {
		return apperrors.ServiceUnavailable(path + ": " + err.Error())
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return apperrors.Unreachable(fmt.Sprintf("%s: %v", path, err))
}

// Healthy pings the catalog endpoint, used by the readiness probe.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products", http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.reads.Do(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 500 {
		return fmt.Errorf("commerce api unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
