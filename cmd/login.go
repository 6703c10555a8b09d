package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/coverart/internal/shared"
	"github.com/desertthunder/coverart/internal/spotify"
	"github.com/urfave/cli/v3"
)

// Login prints the authorization URL and opens it in the system browser.
//
// After consent the browser is redirected to the configured redirect URI with the code.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	authURL, err := r.authorizeURL()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]string{"url": authURL}, false)
	}

	if cmd.Bool("no-browser") {
		return r.writePlain("%s\n", authURL)
	}

	r.writePlain("→ Opening browser for Spotify login...\n")
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser automatically", "error", err)
		r.writePlain("⚠ Could not open browser automatically.\nPlease open this URL in your browser:\n%s\n", authURL)
	}
	return nil
}

func (r *Runner) authorizeURL() (string, error) {
	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" {
		return "", fmt.Errorf("%w: spotify client_id must be set", shared.ErrMissingCredentials)
	}
	if creds.RedirectURI == "" {
		return "", fmt.Errorf("%w: spotify redirect_uri must be set", shared.ErrInvalidConfig)
	}
	return spotify.AuthorizeURL(r.config.Spotify.AccountsURL, creds.ClientID, creds.RedirectURI), nil
}
