package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/desertthunder/coverart/internal/server"
	"github.com/desertthunder/coverart/internal/spotify"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the token service until ctx is cancelled, then shuts down gracefully.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if host := cmd.String("host"); host != "" {
		r.config.Server.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		r.config.Server.Port = int(port)
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	accounts, err := spotify.NewAccounts(r.config.Credentials.Spotify, r.config.Spotify.AccountsURL, r.httpClient)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              r.config.Server.Addr(),
		Handler:           server.New(server.Options{Config: r.config, Accounts: accounts, Logger: r.logger}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}

	if !cmd.Bool("no-banner") {
		r.displayAppname("coverart")
	}
	r.logger.Info("server listening", "addr", ln.Addr().String(), "redirect_uri", r.config.Credentials.Spotify.RedirectURI)

	return r.serveUntilDone(ctx, srv, ln)
}

func (r *Runner) serveUntilDone(ctx context.Context, srv *http.Server, ln net.Listener) error {
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func (r *Runner) displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	r.writePlain("%s\n", myFigure.String())
}
