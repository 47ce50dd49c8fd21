package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/frostmag155/shop-frontend/pkg/errors"
)

// UpstreamErrorResponse mirrors the error bodies returned by the commerce
// API. The API is not fully consistent: some endpoints answer with
// {"error":"..."}, others with {"success":false,"message":"..."}, so both
// fields are decoded and the first non-empty one wins.
type UpstreamErrorResponse struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Detail returns the human-readable error text from whichever field the
// upstream populated, or empty if neither was set.
func (r UpstreamErrorResponse) Detail() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Message
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an appropriate AppError. If the body matches one of the commerce
// API's error shapes, the message is preserved. Otherwise a generic error is
// returned with the status code and raw body.
//
// The caller should only invoke this when resp.StatusCode indicates an error
// (i.e., not 2xx). The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, endpoint string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", endpoint, resp.StatusCode, err)
	}

	var upstream UpstreamErrorResponse
	if json.Unmarshal(bodyBytes, &upstream) == nil && upstream.Detail() != "" {
		return mapUpstreamError(resp.StatusCode, upstream.Detail(), endpoint)
	}

	// Fallback: unstructured error body.
	return mapUpstreamError(resp.StatusCode, string(bodyBytes), endpoint)
}

// mapUpstreamError translates a commerce API HTTP status code into an
// AppError that preserves the error class the status implies.
func mapUpstreamError(status int, detail, endpoint string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", endpoint, detail)

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(endpoint, detail)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperrors.UpstreamRejected(qualifiedMsg)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualifiedMsg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualifiedMsg)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualifiedMsg)
	case status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(qualifiedMsg)
	case status >= 500:
		return &apperrors.AppError{
			Code:    "UPSTREAM_ERROR",
			Message: qualifiedMsg,
			Status:  http.StatusBadGateway,
			Err:     apperrors.ErrInternal,
		}
	default:
		return &apperrors.AppError{
			Code:    "UPSTREAM_ERROR",
			Message: qualifiedMsg,
			Status:  status,
		}
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
// Client errors mean the request itself was refused; retrying the same
// request will not help.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
