// Package server is the confidential half of the artwork page: it serves the page, redirects to the
// authorization page, and exchanges and refreshes tokens with the client secret.
//
// # Routes
//
//	GET  /                the page; the authorization callback lands here with ?code=
//	GET  /script.js       the page script
//	GET  /login           302 to the authorization page
//	GET  /healthz         {"status":"ok"}
//	POST /exchange-token  {"code": "..."} -> access token, refresh token cookie
//	POST /refresh-token   refresh token cookie -> access token, rotated cookie
//
// The two token endpoints share a rate limiter. Errors are JSON objects of the form
// {"error": "...", "details": ...} where details, when present, is the accounts service's own body.
//
// # Router Infrastructure
//
// [Middleware] wraps handlers in reverse order (last added executes first). The [BasicRouter]
// implementation uses [http.ServeMux] internally. Custom handlers implement [Handler], which adds the
// list of routes to the stdlib handler interface so a handler owns its route definitions.
//
// # Callback Capture
//
// [CallbackCapture] stands in for the browser when the page controller runs in a terminal: it listens on the
// redirect URI, captures one callback and hands its URL to the controller.
package server
