package player

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coverart/internal/shared"
	"github.com/desertthunder/coverart/internal/spotify"
)

// PollInterval is the period of the repeating now-playing fetch.
const PollInterval = 5000 * time.Millisecond

// NowPlaying reads the currently playing item with an access token. [spotify.Player] implements it.
type NowPlaying interface {
	CurrentlyPlaying(ctx context.Context, accessToken string) (*spotify.Snapshot, error)
}

// Options configures a [Controller].
type Options struct {
	Tokens    TokenService
	Player    NowPlaying
	Page      Page
	Scheduler Scheduler
	Logger    *log.Logger
}

// Controller is the page logic: callback handling, the session and the polling loop.
type Controller struct {
	tokens  TokenService
	player  NowPlaying
	page    Page
	sched   Scheduler
	logger  *log.Logger
	session *Session

	// fetchMu serializes fetches; ticks that cannot take it are dropped.
	fetchMu sync.Mutex

	mu        sync.Mutex
	ctx       context.Context
	poll      Task
	retry     Task
	navigated bool
	done      chan struct{}
}

// NewController creates a [Controller]. A nil scheduler uses a [TimerScheduler].
func NewController(opts Options) *Controller {
	if opts.Scheduler == nil {
		opts.Scheduler = NewTimerScheduler()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Controller{
		tokens:  opts.Tokens,
		player:  opts.Player,
		page:    opts.Page,
		sched:   opts.Scheduler,
		logger:  opts.Logger,
		session: &Session{},
		ctx:     context.Background(),
		done:    make(chan struct{}),
	}
}

// Session exposes the controller's session.
func (c *Controller) Session() *Session {
	return c.session
}

// HandleCallback processes a page load at pageURL.
//
// Without a code it does nothing. With one it exchanges the code, hides the login control, fetches once
// and starts polling. A failed exchange is returned and nothing is started.
func (c *Controller) HandleCallback(ctx context.Context, pageURL *url.URL) error {
	q := pageURL.Query()
	if denied := q.Get("error"); denied != "" {
		c.logger.Warn("authorization was not granted", "error", denied)
	}

	code := q.Get("code")
	if code == "" {
		c.logger.Debug("no authorization code in page URL")
		return nil
	}

	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()

	token, err := c.tokens.Exchange(ctx, code)
	if err != nil {
		c.logger.Error("token exchange failed", "error", err)
		return fmt.Errorf("callback: %w", err)
	}

	c.session.Set(token.AccessToken)
	c.logger.Info("authorized", "access_token", shared.Redact(token.AccessToken), "expires_in", token.ExpiresIn)
	c.page.HideLogin()

	c.Tick()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.navigated && c.poll == nil {
		c.poll = c.sched.Every(PollInterval, c.Tick)
	}
	return nil
}

// Run blocks until the page navigates away or ctx ends, and stops every task on return.
//
// Navigation yields [shared.ErrReauthRequired]; cancellation yields nil.
func (c *Controller) Run(ctx context.Context) error {
	select {
	case <-c.done:
		return shared.ErrReauthRequired
	case <-ctx.Done():
		c.Stop()
		return nil
	}
}

// Stop cancels the poll task and any pending retry.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelTasks()
}

// Tick runs one fetch unless one is already in flight.
func (c *Controller) Tick() {
	if !c.fetchMu.TryLock() {
		c.logger.Debug("fetch in flight, skipping tick")
		return
	}
	defer c.fetchMu.Unlock()
	c.fetchLocked()
}

// retryTick waits for an in-flight fetch instead of dropping the backoff retry.
func (c *Controller) retryTick() {
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()
	c.fetchLocked()
}

// fetchLocked must be called with fetchMu held.
func (c *Controller) fetchLocked() {
	c.mu.Lock()
	ctx, navigated := c.ctx, c.navigated
	c.mu.Unlock()
	if navigated || ctx.Err() != nil {
		return
	}

	c.fetch(ctx)
}

func (c *Controller) fetch(ctx context.Context) {
	if _, ok := c.session.Token(); !ok {
		if err := c.refresh(ctx); err != nil {
			c.navigateRoot(err)
			return
		}
	}

	snap, err := c.currentlyPlaying(ctx)
	if errors.Is(err, shared.ErrTokenExpired) {
		c.logger.Warn("access token rejected, refreshing", "error", err)
		c.session.Clear()

		if err := c.refresh(ctx); err != nil {
			c.navigateRoot(err)
			return
		}

		snap, err = c.currentlyPlaying(ctx)
		if errors.Is(err, shared.ErrTokenExpired) {
			c.navigateRoot(fmt.Errorf("access token rejected after refresh: %w", err))
			return
		}
	}

	c.render(ctx, snap, err)
}

func (c *Controller) currentlyPlaying(ctx context.Context) (*spotify.Snapshot, error) {
	token, _ := c.session.Token()
	return c.player.CurrentlyPlaying(ctx, token)
}

func (c *Controller) refresh(ctx context.Context) error {
	token, err := c.tokens.Refresh(ctx)
	if err != nil {
		c.logger.Error("token refresh failed", "error", err)
		return err
	}
	c.session.Set(token.AccessToken)
	c.logger.Debug("access token refreshed", "access_token", shared.Redact(token.AccessToken))
	return nil
}

func (c *Controller) render(ctx context.Context, snap *spotify.Snapshot, err error) {
	var rl *spotify.RateLimitError
	var se *spotify.StatusError

	switch {
	case err == nil:
		if art, ok := snap.ArtworkURL(); ok {
			c.logger.Debug("showing artwork", "track", snap.Track, "url", art)
			c.page.ShowArtwork(art, snap)
			return
		}
		c.logger.Debug("nothing to show", "has_item", snap.HasItem)
		c.page.HideArtwork(snap)
	case errors.As(err, &rl):
		c.scheduleRetry(rl.RetryAfter)
	case errors.As(err, &se):
		c.logger.Error("currently playing request failed", "status", se.StatusCode, "message", se.Message)
	case ctx.Err() != nil:
		c.logger.Debug("fetch cancelled", "error", err)
	default:
		c.logger.Warn("currently playing fetch error", "error", err)
	}
}

// scheduleRetry replaces any pending one-off retry. The repeating task is left alone.
func (c *Controller) scheduleRetry(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.navigated {
		return
	}
	if c.retry != nil {
		c.retry.Cancel()
	}

	c.logger.Warn("rate limited", "retry_after", d)
	var task Task
	task = c.sched.After(d, func() {
		c.mu.Lock()
		if c.retry == task {
			c.retry = nil
		}
		c.mu.Unlock()
		c.retryTick()
	})
	c.retry = task
}

// navigateRoot stops every task, drops the session and sends the page back to the root.
func (c *Controller) navigateRoot(reason error) {
	c.mu.Lock()
	if c.navigated {
		c.mu.Unlock()
		return
	}
	c.navigated = true
	c.cancelTasks()
	c.mu.Unlock()

	c.sched.Stop()
	c.session.Clear()
	c.logger.Error("re-authentication required, navigating to root", "reason", reason)
	c.page.Navigate(RootPath)
	close(c.done)
}

// cancelTasks must be called with mu held.
func (c *Controller) cancelTasks() {
	if c.poll != nil {
		c.poll.Cancel()
		c.poll = nil
	}
	if c.retry != nil {
		c.retry.Cancel()
		c.retry = nil
	}
}
