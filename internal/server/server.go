package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/coverart/internal/shared"
	"github.com/desertthunder/coverart/internal/spotify"
	"golang.org/x/time/rate"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows the path patterns it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Granter performs the confidential token grants. [spotify.Accounts] implements it.
type Granter interface {
	Exchange(ctx context.Context, code string) (*spotify.Grant, error)
	Refresh(ctx context.Context, refreshToken string) (*spotify.Grant, error)
}

// Options configures [New].
type Options struct {
	Config   *shared.Config
	Accounts Granter
	Logger   *log.Logger
}

// New assembles the service: the page, the login redirect, the health check and the rate limited token endpoints.
func New(opts Options) http.Handler {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	router := NewBasicRouter()
	router.Use(Logging(opts.Logger), Recover())

	page := NewPageHandler(opts.Config)
	router.Handler(page)
	router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(Health))

	limit := RateLimit(rate.Limit(opts.Config.Server.RateLimit), opts.Config.Server.RateBurst)
	router.Handler(WithMiddleware(NewTokenHandler(opts.Accounts), limit))

	return router
}

// Health reports that the service is up.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
