package http

import (
	"net/http"
	"strings"

	"github.com/frostmag155/shop-frontend/internal/domain"
	"github.com/frostmag155/shop-frontend/pkg/httputil"
	"github.com/frostmag155/shop-frontend/pkg/middleware"
)

// shopperFromRequest derives the cart owner from the request. Authenticated
// shoppers come from the session token claims the OptionalAuth middleware put
// in context; their user id doubles as the cart id. Anonymous shoppers
// supply a client-generated X-Cart-ID token instead. An empty CartID means
// the request carries neither.
func shopperFromRequest(r *http.Request) domain.Shopper {
	ctx := r.Context()
	if userID := middleware.UserIDFromContext(ctx); userID != "" {
		return domain.Shopper{
			CartID: userID,
			UserID: userID,
			Email:  middleware.EmailFromContext(ctx),
		}
	}
	return domain.Shopper{CartID: strings.TrimSpace(r.Header.Get("X-Cart-ID"))}
}

// requireShopper resolves the shopper and rejects the request with 400 when
// no cart identity is present.
func requireShopper(w http.ResponseWriter, r *http.Request) (domain.Shopper, bool) {
	shopper := shopperFromRequest(r)
	if shopper.CartID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{
				Code:    "INVALID_INPUT",
				Message: "a session token or X-Cart-ID header is required",
			},
		})
		return domain.Shopper{}, false
	}
	return shopper, true
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
