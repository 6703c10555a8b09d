package spotify

import (
	"net/url"
	"strings"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
)

// Scope is the only permission the page asks for.
const Scope = spotifyauth.ScopeUserReadCurrentlyPlaying

const (
	DefaultAccountsURL = "https://accounts.spotify.com"
	DefaultAPIURL      = "https://api.spotify.com/v1"
)

// Endpoints holds the authorization and token URLs of an accounts service.
type Endpoints struct {
	AuthURL  string
	TokenURL string
}

// EndpointsFor returns the endpoints rooted at accountsURL.
//
// An empty accountsURL or the public Spotify host resolves to the library's published endpoints.
func EndpointsFor(accountsURL string) Endpoints {
	base := strings.TrimRight(accountsURL, "/")
	if base == "" || base == DefaultAccountsURL {
		return Endpoints{AuthURL: spotifyauth.AuthURL, TokenURL: spotifyauth.TokenURL}
	}
	return Endpoints{AuthURL: base + "/authorize", TokenURL: base + "/api/token"}
}

// AuthorizeURL returns the URL that starts the Authorization Code flow.
//
// The consent dialog is always shown so a different account can be picked after logging out of the page.
func AuthorizeURL(accountsURL, clientID, redirectURI string) string {
	params := url.Values{}
	params.Set("client_id", clientID)
	params.Set("response_type", "code")
	params.Set("redirect_uri", redirectURI)
	params.Set("scope", Scope)
	params.Set("show_dialog", "true")

	return EndpointsFor(accountsURL).AuthURL + "?" + params.Encode()
}
