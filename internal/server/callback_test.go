package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/coverart/internal/shared"
)

func TestCallbackCapture(t *testing.T) {
	t.Run("Captures Code", func(t *testing.T) {
		capture := NewCallbackCapture("/")
		router := NewBasicRouter()
		router.Handler(capture)

		w := get(router, "/?code=abc123")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}

		u, err := capture.Wait(context.Background())
		if err != nil {
			t.Fatalf("Wait failed: %v", err)
		}
		if u.Query().Get("code") != "abc123" {
			t.Errorf("expected captured code, got %s", u)
		}
	})

	t.Run("Only Once", func(t *testing.T) {
		capture := NewCallbackCapture("/callback")

		get(capture, "/callback?code=first")
		if w := get(capture, "/callback?code=second"); w.Code != http.StatusBadRequest {
			t.Errorf("expected second callback to be rejected, got %d", w.Code)
		}

		res := <-capture.Result()
		if res.URL.Query().Get("code") != "first" {
			t.Errorf("expected first code, got %s", res.URL)
		}
	})

	t.Run("Ignores Requests Without Code", func(t *testing.T) {
		capture := NewCallbackCapture("/")

		if w := get(capture, "/"); w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		select {
		case <-capture.Result():
			t.Error("expected no result for a bare request")
		default:
		}
	})

	t.Run("Authorization Denied", func(t *testing.T) {
		capture := NewCallbackCapture("/")
		get(capture, "/?error=access_denied")

		_, err := capture.Wait(context.Background())
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("Timeout", func(t *testing.T) {
		capture := NewCallbackCapture("/")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := capture.Wait(ctx)
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})

	t.Run("Routes", func(t *testing.T) {
		if got := NewCallbackCapture("").Routes(); got[0] != "/{$}" {
			t.Errorf("expected exact root route, got %v", got)
		}
		if got := NewCallbackCapture("/cb").Routes(); got[0] != "/cb" {
			t.Errorf("expected /cb, got %v", got)
		}
	})
}

func TestWithMiddleware(t *testing.T) {
	var hit bool
	mark := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hit = true
			next.ServeHTTP(w, r)
		})
	}

	h := WithMiddleware(NewCallbackCapture("/cb"), mark)
	if got := h.Routes(); len(got) != 1 || got[0] != "/cb" {
		t.Errorf("expected routes to be kept, got %v", got)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cb", nil))
	if !hit {
		t.Error("expected middleware to run")
	}
}
