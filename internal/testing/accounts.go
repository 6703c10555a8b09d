package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// FakeGrant is what [FakeAccounts] issues for a code or refresh token.
type FakeGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// FakeAccounts is an in-process Spotify accounts token endpoint.
//
// Codes are single use. Every request is recorded, including rejected ones.
type FakeAccounts struct {
	*httptest.Server

	ClientID     string
	ClientSecret string
	RedirectURI  string

	mu       sync.Mutex
	codes    map[string]FakeGrant
	refresh  map[string]FakeGrant
	used     map[string]bool
	requests []url.Values
}

// NewFakeAccounts starts a fake accounts service and closes it when the test ends.
func NewFakeAccounts(t *testing.T, clientID, clientSecret, redirectURI string) *FakeAccounts {
	t.Helper()

	f := &FakeAccounts{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		codes:        map[string]FakeGrant{},
		refresh:      map[string]FakeGrant{},
		used:         map[string]bool{},
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serveToken))
	t.Cleanup(f.Close)
	return f
}

// AddCode registers an authorization code and the grant it exchanges for.
func (f *FakeAccounts) AddCode(code string, g FakeGrant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[code] = g
}

// AddRefreshToken registers a refresh token and the grant it refreshes to.
func (f *FakeAccounts) AddRefreshToken(token string, g FakeGrant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh[token] = g
}

// Requests returns the form bodies received so far.
func (f *FakeAccounts) Requests() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.requests...)
}

func (f *FakeAccounts) serveToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/api/token" {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.PostForm)

	id, secret, ok := r.BasicAuth()
	if !ok || id != f.ClientID || secret != f.ClientSecret {
		writeOAuthError(w, http.StatusUnauthorized, "invalid_client", "Invalid client")
		return
	}

	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		code := r.PostForm.Get("code")
		g, known := f.codes[code]
		if !known || f.used[code] {
			writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "Invalid authorization code")
			return
		}
		if r.PostForm.Get("redirect_uri") != f.RedirectURI {
			writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "Invalid redirect URI")
			return
		}
		f.used[code] = true
		writeGrant(w, g)
	case "refresh_token":
		g, known := f.refresh[r.PostForm.Get("refresh_token")]
		if !known {
			writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "Invalid refresh token")
			return
		}
		writeGrant(w, g)
	default:
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "")
	}
}

func writeGrant(w http.ResponseWriter, g FakeGrant) {
	body := map[string]any{
		"access_token": g.AccessToken,
		"token_type":   "Bearer",
		"scope":        "user-read-currently-playing",
	}
	if g.RefreshToken != "" {
		body["refresh_token"] = g.RefreshToken
	}
	if g.ExpiresIn > 0 {
		body["expires_in"] = g.ExpiresIn
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

func writeOAuthError(w http.ResponseWriter, status int, code, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "error_description": desc})
}
