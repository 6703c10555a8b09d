// Package spotify talks to the two Spotify services the album artwork page depends on.
//
// # Accounts service
//
// [AuthorizeURL] builds the authorization request the browser is sent to when the user logs in.
//
// [Accounts] performs the confidential token grants (authorization_code and refresh_token) with HTTP Basic
// client credentials through [oauth2.Config]. A non-2xx answer from the token endpoint becomes an
// [UpstreamError] carrying the status code and the decoded response body, so the token service can pass both
// through to the browser.
//
// # Web API
//
// [Player] reads the currently playing item with a bearer token and reduces it to a [Snapshot]. Outcomes the
// page controller must branch on are returned as errors:
//   - [shared.ErrTokenExpired] : 401, the access token expired or was revoked
//   - [RateLimitError] : 429, with the delay read from Retry-After
//   - [StatusError] : any other non-2xx status
package spotify
