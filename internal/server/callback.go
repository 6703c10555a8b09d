package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"sync"

	"github.com/desertthunder/coverart/internal/shared"
)

// CallbackResult carries the captured callback URL, or why authorization failed.
type CallbackResult struct {
	URL *url.URL
	err error
}

func (c *CallbackResult) Error() error {
	return c.err
}

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { margin: 0 0 1rem 0; }
        h1.ok { color: #1DB954; }
        h1.failed { color: #E22134; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1 class="{{.Class}}">{{.Title}}</h1>
        <p>{{.Message}}</p>
    </div>
</body>
</html>
`))

// CallbackCapture receives the authorization redirect on behalf of a page controller running outside a browser.
//
// It captures exactly one callback, either a code or an authorization error, and hands the full URL over
// through [CallbackCapture.Result]. Exchanging the code is left to the controller.
type CallbackCapture struct {
	path       string
	resultChan chan CallbackResult
	once       sync.Once
	hit        bool
	mu         sync.Mutex
}

// NewCallbackCapture creates a capture for the path of the configured redirect URI.
func NewCallbackCapture(path string) *CallbackCapture {
	if path == "" {
		path = "/"
	}
	return &CallbackCapture{path: path, resultChan: make(chan CallbackResult, 1)}
}

// Routes returns the redirect URI path. The root path only matches exactly.
func (h *CallbackCapture) Routes() []string {
	if h.path == "/" {
		return []string{"/{$}"}
	}
	return []string{h.path}
}

func (h *CallbackCapture) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code, denied := q.Get("code"), q.Get("error")
	if code == "" && denied == "" {
		writeCallbackPage(w, http.StatusBadRequest, false, "Waiting for the authorization redirect.")
		return
	}

	h.mu.Lock()
	if h.hit {
		h.mu.Unlock()
		writeCallbackPage(w, http.StatusBadRequest, false, "Callback already processed.")
		return
	}
	h.hit = true
	h.mu.Unlock()

	if code == "" {
		h.Send(CallbackResult{err: fmt.Errorf("%w: %s %s", shared.ErrAuthFailed, denied, q.Get("error_description"))})
		writeCallbackPage(w, http.StatusBadRequest, false, "Authorization was not granted.")
		return
	}

	u := *r.URL
	h.Send(CallbackResult{URL: &u})
	writeCallbackPage(w, http.StatusOK, true, "You can close this window and return to the terminal.")
}

// Send sends the result through the channel (only once).
func (h *CallbackCapture) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel. It receives exactly one result and is then closed.
func (h *CallbackCapture) Result() <-chan CallbackResult {
	return h.resultChan
}

// Wait blocks until a callback arrives or ctx is done.
func (h *CallbackCapture) Wait(ctx context.Context) (*url.URL, error) {
	select {
	case res := <-h.resultChan:
		if res.err != nil {
			return nil, res.err
		}
		return res.URL, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: no authorization callback received: %v", shared.ErrTimeout, ctx.Err())
	}
}

func writeCallbackPage(w http.ResponseWriter, status int, ok bool, message string) {
	data := struct{ Title, Class, Message string }{"Authorization Failed", "failed", message}
	if ok {
		data.Title, data.Class = "✓ Authorization Received", "ok"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = callbackPage.Execute(w, data)
}
