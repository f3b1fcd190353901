package connpass

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody bounds how much of an error response body is retained.
const maxErrorBody = 64 << 10

// Kind classifies errors returned by the client.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindRateLimited
	KindAPI
	KindTimeout
	KindNetwork
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRateLimited:
		return "rate_limited"
	case KindAPI:
		return "api"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// KindOf reports the Kind of err, looking through wrapped errors.
func KindOf(err error) Kind {
	var (
		validationErr *ValidationError
		rateErr       *RateLimitError
		apiErr        *ErrorResponse
		timeoutErr    *TimeoutError
		networkErr    *NetworkError
		notFoundErr   *NotFoundError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &rateErr):
		return KindRateLimited
	case errors.As(err, &apiErr):
		return KindAPI
	case errors.As(err, &timeoutErr):
		return KindTimeout
	case errors.As(err, &networkErr):
		return KindNetwork
	case errors.As(err, &notFoundErr):
		return KindNotFound
	}
	return KindUnknown
}

// ValidationError reports a request rejected before any network activity.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ErrorResponse reports a non-2xx response other than 429.
type ErrorResponse struct {
	Response *http.Response `json:"-"`

	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"` // message from the response body, if any
	Body       []byte `json:"-"`
}

func (r *ErrorResponse) Error() string {
	if r.Response != nil && r.Response.Request != nil {
		return fmt.Sprintf("%v %v: %d %v",
			r.Response.Request.Method, r.Response.Request.URL.Path,
			r.StatusCode, r.Message)
	}
	return fmt.Sprintf("api error: %d %v", r.StatusCode, r.Message)
}

// RateLimitError occurs when connpass answers with 429 Too Many Requests.
type RateLimitError struct {
	Rate     Rate
	Response *http.Response
	Message  string
	Body     []byte
}

func (r *RateLimitError) Error() string {
	if r.Response != nil && r.Response.Request != nil {
		return fmt.Sprintf("%v %v: %d %v",
			r.Response.Request.Method, r.Response.Request.URL.Path,
			r.Response.StatusCode, r.Message)
	}
	return "rate limit exceeded: " + r.Message
}

// TimeoutError reports a request that did not complete within the
// configured timeout.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string { return "request timeout: " + e.Err.Error() }
func (e *TimeoutError) Unwrap() error { return e.Err }

// NetworkError reports a request that produced no response at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// NotFoundError reports a lookup with no matching entity.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s was not found", e.Resource, e.Key)
}

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Bad Request",
	http.StatusUnauthorized:        "Unauthorized - Invalid API key",
	http.StatusForbidden:           "Forbidden",
	http.StatusNotFound:            "Not Found",
	http.StatusInternalServerError: "Internal Server Error",
}

// CheckResponse checks the API response for errors, and returns them if
// present. A response is considered an error if it has a status code outside
// the 200 range. A 429 yields a *RateLimitError; any other failure yields an
// *ErrorResponse.
func CheckResponse(r *http.Response) error {
	if c := r.StatusCode; 200 <= c && c <= 299 {
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(r.Body, maxErrorBody))

	if r.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{
			Rate:     parseRate(r),
			Response: r,
			Message:  "rate limit exceeded",
			Body:     data,
		}
	}

	message, ok := statusMessages[r.StatusCode]
	if !ok {
		message = fmt.Sprintf("HTTP %d", r.StatusCode)
	}
	errorResponse := &ErrorResponse{
		Response:   r,
		StatusCode: r.StatusCode,
		Message:    message,
		Body:       data,
	}
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if len(data) > 0 && json.Unmarshal(data, &body) == nil {
		errorResponse.Detail = body.Detail
		if errorResponse.Detail == "" {
			errorResponse.Detail = body.Message
		}
	}
	return errorResponse
}
