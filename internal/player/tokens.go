package player

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/coverart/internal/shared"
)

// Token is what the token service hands the page: an access token and nothing else secret.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// TokenService is the page's view of the exchange and refresh endpoints.
type TokenService interface {
	Exchange(ctx context.Context, code string) (*Token, error)
	// Refresh relies on the refresh token cookie the service set earlier.
	Refresh(ctx context.Context) (*Token, error)
}

// ServiceError is a non-2xx answer from the token service.
type ServiceError struct {
	StatusCode int
	Message    string
	Details    json.RawMessage
	op         error
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("%v: status %d", e.op, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if len(e.Details) > 0 {
		msg += " " + string(e.Details)
	}
	return msg
}

func (e *ServiceError) Unwrap() error {
	return e.op
}

// TokenClient calls the token service over HTTP.
//
// Its client must carry a cookie jar (see [NewCookieJar]) for the refresh token cookie to round-trip.
type TokenClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewTokenClient creates a [TokenClient] for the service rooted at serviceURL.
func NewTokenClient(serviceURL string, client *http.Client) *TokenClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &TokenClient{baseURL: strings.TrimRight(serviceURL, "/"), httpClient: client}
}

// Exchange posts the authorization code to the exchange endpoint.
func (c *TokenClient) Exchange(ctx context.Context, code string) (*Token, error) {
	body, err := json.Marshal(map[string]string{"code": code})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return c.post(ctx, "/exchange-token", body, shared.ErrExchangeFailed)
}

// Refresh posts to the refresh endpoint; the jar supplies the cookie.
func (c *TokenClient) Refresh(ctx context.Context) (*Token, error) {
	return c.post(ctx, "/refresh-token", nil, shared.ErrRefreshFailed)
}

func (c *TokenClient) post(ctx context.Context, path string, body []byte, op error) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		svcErr := &ServiceError{StatusCode: resp.StatusCode, op: op}
		var payload struct {
			Error   string          `json:"error"`
			Details json.RawMessage `json:"details"`
		}
		if json.Unmarshal(data, &payload) == nil {
			svcErr.Message, svcErr.Details = payload.Error, payload.Details
		} else {
			svcErr.Message = strings.TrimSpace(string(data))
		}
		return nil, svcErr
	}

	var token Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", op, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: response carried no access token", op)
	}
	return &token, nil
}
