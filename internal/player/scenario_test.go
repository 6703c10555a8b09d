package player

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"testing"

	"github.com/desertthunder/coverart/internal/shared"
	"github.com/desertthunder/coverart/internal/spotify"
	tu "github.com/desertthunder/coverart/internal/testing"
)

func TestEndToEnd(t *testing.T) {
	setup := func(t *testing.T) (*Controller, *fakeScheduler, *fakePage, *tu.FakeAccounts, *tu.FakeWebAPI) {
		t.Helper()

		svc, fake, client := newService(t)
		api := tu.NewFakeWebAPI(t)
		sched, page := &fakeScheduler{}, &fakePage{}

		ctrl := NewController(Options{
			Tokens:    NewTokenClient(svc.URL, client),
			Player:    spotify.NewPlayer(api.URL, api.Client()),
			Page:      page,
			Scheduler: sched,
			Logger:    shared.NewLogger(&bytes.Buffer{}),
		})
		return ctrl, sched, page, fake, api
	}

	callback := func(t *testing.T, ctrl *Controller, code string) error {
		t.Helper()
		u, _ := url.Parse(testRedirectURI + "?code=" + code)
		return ctrl.HandleCallback(context.Background(), u)
	}

	t.Run("Login Poll Expiry Refresh", func(t *testing.T) {
		ctrl, sched, page, fake, api := setup(t)
		fake.AddCode("abc123", tu.FakeGrant{AccessToken: "AT1", RefreshToken: "RT1", ExpiresIn: 3600})
		fake.AddRefreshToken("RT1", tu.FakeGrant{AccessToken: "AT2", ExpiresIn: 3600})
		api.Enqueue(
			tu.NowPlaying("First", "https://i.scdn.co/image/first"),
			tu.FakeResponse{Status: http.StatusUnauthorized, Body: `{"error":{"status":401,"message":"The access token expired"}}`},
			tu.NowPlaying("Second", "https://i.scdn.co/image/second"),
		)

		if err := callback(t, ctrl, "abc123"); err != nil {
			t.Fatalf("HandleCallback failed: %v", err)
		}
		if page.Last() != "show https://i.scdn.co/image/first" {
			t.Fatalf("expected first artwork, got %v", page.Events())
		}

		polls := sched.active(true)
		if len(polls) != 1 {
			t.Fatalf("expected polling to start, got %d tasks", len(polls))
		}
		sched.fire(polls[0])

		if page.Last() != "show https://i.scdn.co/image/second" {
			t.Errorf("expected retried artwork, got %v", page.Events())
		}
		if got := api.Tokens(); !slices.Equal(got, []string{"Bearer AT1", "Bearer AT1", "Bearer AT2"}) {
			t.Errorf("unexpected bearer sequence %v", got)
		}

		reqs := fake.Requests()
		if len(reqs) != 2 || reqs[1].Get("refresh_token") != "RT1" {
			t.Errorf("expected one exchange and one refresh with RT1, got %v", reqs)
		}
	})

	t.Run("Revoked Refresh Token Navigates To Root", func(t *testing.T) {
		ctrl, sched, page, fake, api := setup(t)
		fake.AddCode("abc123", tu.FakeGrant{AccessToken: "AT1", RefreshToken: "RT1"})
		api.Enqueue(
			tu.NowPlaying("First", "https://i.scdn.co/image/first"),
			tu.FakeResponse{Status: http.StatusUnauthorized},
		)

		if err := callback(t, ctrl, "abc123"); err != nil {
			t.Fatalf("HandleCallback failed: %v", err)
		}
		sched.fire(sched.active(true)[0])

		if page.Last() != "navigate /" {
			t.Errorf("expected navigation to root, got %v", page.Events())
		}
		if err := ctrl.Run(context.Background()); !errors.Is(err, shared.ErrReauthRequired) {
			t.Errorf("expected ErrReauthRequired, got %v", err)
		}
	})

	t.Run("Reused Code Fails Callback", func(t *testing.T) {
		ctrl, sched, page, fake, _ := setup(t)
		fake.AddCode("abc123", tu.FakeGrant{AccessToken: "AT1", RefreshToken: "RT1"})

		if err := callback(t, ctrl, "abc123"); err != nil {
			t.Fatalf("first callback failed: %v", err)
		}

		other := NewController(Options{
			Tokens:    ctrl.tokens,
			Player:    ctrl.player,
			Page:      &fakePage{},
			Scheduler: &fakeScheduler{},
			Logger:    shared.NewLogger(&bytes.Buffer{}),
		})
		err := callback(t, other, "abc123")

		var svcErr *ServiceError
		if !errors.As(err, &svcErr) || svcErr.StatusCode != http.StatusBadRequest {
			t.Errorf("expected upstream 400 on reuse, got %v", err)
		}
		if len(sched.active(true)) != 1 || slices.Contains(page.Events(), "navigate /") {
			t.Error("first controller must be unaffected")
		}
	})
}
