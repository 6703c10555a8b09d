package spotify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/coverart/internal/shared"
	"golang.org/x/oauth2"
)

// Grant is the result of a successful token request.
type Grant struct {
	AccessToken string
	TokenType   string
	// RefreshToken is empty when the accounts service did not issue one.
	RefreshToken string
	Expiry       time.Time
}

// ExpiresIn returns the remaining lifetime in whole seconds, or 0 when no expiry was given.
func (g *Grant) ExpiresIn() int64 {
	if g.Expiry.IsZero() {
		return 0
	}
	return int64(time.Until(g.Expiry).Round(time.Second).Seconds())
}

// Accounts performs the confidential grants against the accounts token endpoint.
//
// It holds the client secret and is only used server-side.
type Accounts struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewAccounts creates an [Accounts] client from the Spotify credentials and the accounts base URL.
//
// A nil client falls back to [http.DefaultClient]. No timeout is applied beyond the caller's context.
func NewAccounts(creds shared.SpotifyConfig, accountsURL string, client *http.Client) (*Accounts, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if client == nil {
		client = http.DefaultClient
	}

	endpoints := EndpointsFor(accountsURL)
	return &Accounts{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Scopes:       []string{Scope},
			Endpoint: oauth2.Endpoint{
				AuthURL:   endpoints.AuthURL,
				TokenURL:  endpoints.TokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: client,
	}, nil
}

// Exchange trades an authorization code for tokens.
//
// The redirect URI sent is the configured one and must equal the one used at login.
func (a *Accounts) Exchange(ctx context.Context, code string) (*Grant, error) {
	token, err := a.config.Exchange(a.context(ctx), code)
	if err != nil {
		return nil, a.wrap(shared.ErrExchangeFailed, err)
	}
	return grantFrom(token), nil
}

// Refresh mints a new access token from a refresh token.
//
// The returned grant's RefreshToken is the rotated token when the accounts service issued a new one, and
// refreshToken itself otherwise.
func (a *Accounts) Refresh(ctx context.Context, refreshToken string) (*Grant, error) {
	if refreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	src := a.config.TokenSource(a.context(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, a.wrap(shared.ErrRefreshFailed, err)
	}
	return grantFrom(token), nil
}

func (a *Accounts) context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}

// wrap returns an [UpstreamError] when the token endpoint answered, and a wrapped sentinel otherwise.
func (a *Accounts) wrap(sentinel, err error) error {
	if upstream, ok := upstreamError(err); ok {
		return upstream
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

func grantFrom(t *oauth2.Token) *Grant {
	return &Grant{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
	}
}
