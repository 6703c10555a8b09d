package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coverart/internal/spotify"
)

const (
	// RefreshCookieName is the cookie carrying the refresh token between page and service.
	RefreshCookieName = "refresh_token"
	// RefreshCookieMaxAge is thirty days in seconds.
	RefreshCookieMaxAge = 2592000

	ExchangePath = "/exchange-token"
	RefreshPath  = "/refresh-token"

	maxRequestBody = 1 << 16
)

type exchangeRequest struct {
	Code string `json:"code"`
}

// TokenHandler serves the token exchange and token refresh endpoints.
//
// It is stateless: the refresh token arrives in and leaves through the cookie, and the access token is only ever
// returned in the response body.
type TokenHandler struct {
	accounts Granter
}

// NewTokenHandler creates a [TokenHandler] backed by accounts.
func NewTokenHandler(accounts Granter) *TokenHandler {
	return &TokenHandler{accounts: accounts}
}

// Routes returns the HTTP routes this handler serves.
func (h *TokenHandler) Routes() []string {
	return []string{ExchangePath, RefreshPath}
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
		return
	}

	switch r.URL.Path {
	case ExchangePath:
		h.Exchange(w, r)
	case RefreshPath:
		h.Refresh(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found", nil)
	}
}

// Exchange trades the authorization code in the JSON body for tokens.
//
// On success the access token is returned and the refresh token, when one was issued, is set as a cookie.
// Upstream rejections keep the upstream status and body.
func (h *TokenHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	var req exchangeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		logger.Warn("invalid exchange request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "No authorization code provided", nil)
		return
	}

	grant, err := h.accounts.Exchange(r.Context(), req.Code)
	if err != nil {
		var upstream *spotify.UpstreamError
		if errors.As(err, &upstream) {
			logger.Warn("token exchange rejected", "status", upstream.StatusCode)
			writeError(w, upstream.StatusCode, "Failed to exchange token", upstream.Details)
			return
		}
		logger.Error("token exchange failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error during token exchange", nil)
		return
	}

	if grant.RefreshToken != "" {
		http.SetCookie(w, refreshCookie(grant.RefreshToken))
	} else {
		logger.Warn("token exchange issued no refresh token")
	}

	logger.Info("token exchange succeeded")
	writeJSON(w, http.StatusOK, tokenResponse(grant))
}

// Refresh mints a new access token from the refresh token cookie.
//
// A rotated refresh token replaces the cookie. A missing cookie is rejected without contacting upstream.
func (h *TokenHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusBadRequest, "No refresh token provided", nil)
		return
	}

	grant, err := h.accounts.Refresh(r.Context(), cookie.Value)
	if err != nil {
		var upstream *spotify.UpstreamError
		if errors.As(err, &upstream) {
			logger.Warn("token refresh rejected", "status", upstream.StatusCode)
			writeError(w, upstream.StatusCode, "Failed to refresh token", upstream.Details)
			return
		}
		logger.Error("token refresh failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error during token refresh", nil)
		return
	}

	if grant.RefreshToken != "" && grant.RefreshToken != cookie.Value {
		logger.Debug("refresh token rotated")
		http.SetCookie(w, refreshCookie(grant.RefreshToken))
	}

	logger.Info("token refresh succeeded")
	writeJSON(w, http.StatusOK, tokenResponse(grant))
}

func tokenResponse(g *spotify.Grant) TokenResponse {
	return TokenResponse{AccessToken: g.AccessToken, TokenType: g.TokenType, ExpiresIn: g.ExpiresIn()}
}

func refreshCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   RefreshCookieMaxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}
