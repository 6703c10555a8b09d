package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/coverart/internal/player"
	"github.com/desertthunder/coverart/internal/server"
	"github.com/desertthunder/coverart/internal/shared"
	"github.com/desertthunder/coverart/internal/spotify"
	"github.com/desertthunder/coverart/internal/ui"
	"github.com/urfave/cli/v3"
)

const defaultCallbackTimeout = 2 * time.Minute

// Watch runs the page controller in the terminal.
//
// The page URL comes from --callback-url, or from a redirect captured with --listen. The controller exchanges
// the code with the token service, then polls until interrupted or until the session ends.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	serviceURL := cmd.String("service-url")
	if serviceURL == "" {
		serviceURL = r.config.Watch.ServiceURL
	}
	if serviceURL == "" {
		return fmt.Errorf("%w: --service-url or [watch].service_url", shared.ErrMissingArgument)
	}

	pageURL, err := r.pageURL(ctx, cmd)
	if err != nil {
		return err
	}
	if pageURL.Query().Get("code") == "" {
		return fmt.Errorf("%w: callback URL has no code parameter", shared.ErrMissingArgument)
	}

	jar, err := player.NewCookieJar()
	if err != nil {
		return fmt.Errorf("failed to create cookie jar: %w", err)
	}
	client := &http.Client{Jar: jar, Transport: r.httpClient.Transport, Timeout: r.httpClient.Timeout}

	opts := player.Options{
		Tokens: player.NewTokenClient(serviceURL, client),
		Player: spotify.NewPlayer(r.config.Spotify.APIURL, r.httpClient),
		Logger: r.logger,
	}

	if cmd.Bool("tui") {
		loginURL, _ := r.authorizeURL()
		return r.watchTUI(ctx, pageURL, opts, loginURL)
	}

	opts.Page = ui.NewConsolePage(r.output)
	ctrl := player.NewController(opts)
	defer ctrl.Stop()

	if err := ctrl.HandleCallback(ctx, pageURL); err != nil {
		return err
	}
	return ctrl.Run(ctx)
}

func (r *Runner) watchTUI(ctx context.Context, pageURL *url.URL, opts player.Options, loginURL string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(loginURL, r.openBrowser)
	program := tea.NewProgram(model, tea.WithContext(ctx))
	opts.Page = ui.NewProgramPage(program)
	ctrl := player.NewController(opts)
	defer ctrl.Stop()

	runErr := make(chan error, 1)
	go func() {
		err := ctrl.HandleCallback(ctx, pageURL)
		if err == nil {
			err = ctrl.Run(ctx)
		}
		runErr <- err
		program.Send(ui.StoppedMsg(err))
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal page: %w", err)
	}
	cancel()

	if err := model.Err(); err != nil {
		return err
	}
	select {
	case err := <-runErr:
		return err
	default:
		return nil
	}
}

// pageURL resolves the URL the page was loaded at after the authorization redirect.
func (r *Runner) pageURL(ctx context.Context, cmd *cli.Command) (*url.URL, error) {
	if raw := cmd.String("callback-url"); raw != "" {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: callback URL: %v", shared.ErrInvalidArgument, err)
		}
		return u, nil
	}

	if !cmd.Bool("listen") {
		return nil, fmt.Errorf("%w: pass --callback-url or --listen", shared.ErrMissingArgument)
	}

	return r.captureCallback(ctx, cmd.Duration("timeout"))
}

// captureCallback listens on the redirect URI, opens the authorization page and waits for one redirect.
func (r *Runner) captureCallback(ctx context.Context, timeout time.Duration) (*url.URL, error) {
	authURL, err := r.authorizeURL()
	if err != nil {
		return nil, err
	}
	redirect, err := url.Parse(r.config.Credentials.Spotify.RedirectURI)
	if err != nil || redirect.Host == "" {
		return nil, fmt.Errorf("%w: redirect_uri %q", shared.ErrInvalidConfig, r.config.Credentials.Spotify.RedirectURI)
	}

	capture := server.NewCallbackCapture(redirect.Path)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(capture)

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", redirect.Host, err)
	}
	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	r.writePlain("→ Opening browser for Spotify login...\n")
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err)
		r.writePlain("⚠ Could not open browser automatically.\nPlease open this URL in your browser:\n%s\n", authURL)
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return capture.Wait(waitCtx)
}
