package spotify

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/coverart/internal/shared"
	spotifyapi "github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// DefaultRetryAfter is used when a 429 response has no usable Retry-After header.
const DefaultRetryAfter = 5 * time.Second

// UpstreamError is a non-2xx answer from the accounts token endpoint.
type UpstreamError struct {
	StatusCode int
	// Details is the upstream body: decoded JSON when it parses, the raw text otherwise.
	Details any
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("token endpoint returned status %d", e.StatusCode)
}

// upstreamError converts an [oauth2.RetrieveError] into an [UpstreamError].
//
// ok is false for errors that never got a response (network failures, malformed bodies).
func upstreamError(err error) (*UpstreamError, bool) {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) || re.Response == nil {
		return nil, false
	}
	return &UpstreamError{StatusCode: re.Response.StatusCode, Details: decodeDetails(re.Body)}, true
}

func decodeDetails(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}

// RateLimitError reports a 429 from the Web API.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%v: retry after %v", shared.ErrRateLimited, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return shared.ErrRateLimited
}

// StatusError reports a non-2xx Web API response other than 401 and 429.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v: status %d", shared.ErrAPIRequest, e.StatusCode)
	}
	return fmt.Sprintf("%v: status %d: %s", shared.ErrAPIRequest, e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return shared.ErrAPIRequest
}

// apiErrorMessage extracts the message from a Web API error object, falling back to the status text.
func apiErrorMessage(status int, body []byte) string {
	var payload struct {
		Error spotifyapi.Error `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	if len(body) > 0 && len(body) < 512 && !json.Valid(body) {
		return string(body)
	}
	return http.StatusText(status)
}
