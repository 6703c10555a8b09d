// Package player runs the artwork page outside a browser.
//
// A [Controller] owns the in-memory [Session] and every timer it starts. It handles the authorization callback
// once, then polls the currently playing endpoint every [PollInterval] through a [Scheduler]:
//
//   - 401 from the Web API invalidates the session, refreshes once and retries once
//   - 429 schedules a one-off retry after Retry-After without touching the repeating task
//   - a failed refresh, or a second 401, stops everything and navigates the [Page] to the root
//
// Fetches never overlap: a tick that arrives while a fetch is running is dropped.
//
// The refresh token never passes through this package's memory; it is a cookie set by the token service and
// kept by the jar from [NewCookieJar].
package player
