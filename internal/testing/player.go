package testing

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// FakeResponse is one canned answer of [FakeWebAPI].
type FakeResponse struct {
	Status  int
	Headers map[string]string
	Body    string
}

// NowPlaying returns a 200 response whose item has a single album image.
func NowPlaying(track, imageURL string) FakeResponse {
	return FakeResponse{
		Status: http.StatusOK,
		Body: fmt.Sprintf(`{"is_playing":true,"item":{"name":%q,"artists":[{"name":"Artist"}],`+
			`"album":{"name":"Album","images":[{"url":%q,"height":640,"width":640}]}}}`, track, imageURL),
	}
}

// FakeWebAPI serves /me/player/currently-playing from a queue of responses.
//
// When the queue is empty it answers 204. The bearer tokens it saw are recorded in order.
type FakeWebAPI struct {
	*httptest.Server

	mu     sync.Mutex
	queue  []FakeResponse
	tokens []string
}

// NewFakeWebAPI starts a fake Web API and closes it when the test ends.
func NewFakeWebAPI(t *testing.T) *FakeWebAPI {
	t.Helper()

	f := &FakeWebAPI{}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// Enqueue appends responses to the queue.
func (f *FakeWebAPI) Enqueue(rs ...FakeResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, rs...)
}

// Tokens returns the Authorization header values received so far.
func (f *FakeWebAPI) Tokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

func (f *FakeWebAPI) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/me/player/currently-playing" {
		http.NotFound(w, r)
		return
	}

	f.mu.Lock()
	f.tokens = append(f.tokens, r.Header.Get("Authorization"))
	var resp FakeResponse
	if len(f.queue) > 0 {
		resp, f.queue = f.queue[0], f.queue[1:]
	} else {
		resp = FakeResponse{Status: http.StatusNoContent}
	}
	f.mu.Unlock()

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	if resp.Body != "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(resp.Status)
	if resp.Body != "" {
		fmt.Fprint(w, resp.Body)
	}
}
