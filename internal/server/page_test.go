package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/coverart/internal/shared"
)

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestPageHandler(t *testing.T) {
	cfg := shared.DefaultConfig()
	cfg.Credentials.Spotify = shared.SpotifyConfig{ClientID: testClientID, ClientSecret: testSecret, RedirectURI: testRedirectURI}
	h := New(Options{Config: cfg, Accounts: &stubGranter{}, Logger: shared.NewLogger(&bytes.Buffer{})})

	t.Run("Index", func(t *testing.T) {
		w := get(h, "/")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("expected HTML, got %s", ct)
		}

		body := w.Body.String()
		for _, want := range []string{`id="login-button"`, `href="/login"`, `id="album-art"`, `data-poll-interval="5000"`, `src="/script.js"`} {
			if !strings.Contains(body, want) {
				t.Errorf("expected %s in page", want)
			}
		}
		if strings.Contains(body, testSecret) {
			t.Error("page leaked client secret")
		}
	})

	t.Run("Callback Lands On Index", func(t *testing.T) {
		if w := get(h, "/?code=abc123"); w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}
	})

	t.Run("Script", func(t *testing.T) {
		w := get(h, ScriptPath)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/javascript") {
			t.Errorf("expected javascript, got %s", ct)
		}
		if !strings.Contains(w.Body.String(), "currently-playing") {
			t.Error("expected page script body")
		}
	})

	t.Run("Script Accepts Only Digit Retry-After", func(t *testing.T) {
		body := get(h, ScriptPath).Body.String()
		if !strings.Contains(body, `/^\d+$/.test(raw)`) {
			t.Error("expected Retry-After to be validated as plain digits")
		}
		if strings.Contains(body, "parseInt(") {
			t.Error("parseInt accepts trailing garbage in Retry-After")
		}
	})

	t.Run("Login Redirect", func(t *testing.T) {
		w := get(h, LoginPath)
		if w.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", w.Code)
		}

		loc, err := url.Parse(w.Header().Get("Location"))
		if err != nil {
			t.Fatalf("invalid Location: %v", err)
		}
		if loc.Host != "accounts.spotify.com" || loc.Path != "/authorize" {
			t.Errorf("unexpected redirect target %s", loc)
		}
		q := loc.Query()
		if q.Get("client_id") != testClientID || q.Get("redirect_uri") != testRedirectURI {
			t.Errorf("unexpected query %v", q)
		}
		if strings.Contains(loc.String(), testSecret) {
			t.Error("login redirect leaked client secret")
		}
	})

	t.Run("Unknown Path", func(t *testing.T) {
		if w := get(h, "/nope"); w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
	})

	t.Run("Wrong Method", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", w.Code)
		}
	})

	t.Run("Health", func(t *testing.T) {
		w := get(h, "/healthz")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
			t.Errorf("unexpected health response %d %s", w.Code, w.Body.String())
		}
	})
}
