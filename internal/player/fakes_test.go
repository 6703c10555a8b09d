package player

import (
	"context"
	"sync"
	"time"

	"github.com/desertthunder/coverart/internal/spotify"
)

type fakeTask struct {
	s         *fakeScheduler
	d         time.Duration
	fn        func()
	every     bool
	cancelled bool
}

func (t *fakeTask) Cancel() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.cancelled = true
}

// fakeScheduler records tasks and runs them only when a test fires them.
type fakeScheduler struct {
	mu      sync.Mutex
	tasks   []*fakeTask
	stopped bool
}

func (s *fakeScheduler) Every(d time.Duration, fn func()) Task {
	return s.add(d, fn, true)
}

func (s *fakeScheduler) After(d time.Duration, fn func()) Task {
	return s.add(d, fn, false)
}

func (s *fakeScheduler) add(d time.Duration, fn func(), every bool) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTask{s: s, d: d, fn: fn, every: every, cancelled: s.stopped}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *fakeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for _, t := range s.tasks {
		t.cancelled = true
	}
}

// active returns the live repeating or one-off tasks.
func (s *fakeScheduler) active(every bool) []*fakeTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTask
	for _, t := range s.tasks {
		if t.every == every && !t.cancelled {
			out = append(out, t)
		}
	}
	return out
}

func (s *fakeScheduler) all(every bool) []*fakeTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTask
	for _, t := range s.tasks {
		if t.every == every {
			out = append(out, t)
		}
	}
	return out
}

// fire runs t as its timer would. One-off tasks are consumed.
func (s *fakeScheduler) fire(t *fakeTask) {
	s.mu.Lock()
	if t.cancelled {
		s.mu.Unlock()
		return
	}
	if !t.every {
		t.cancelled = true
	}
	s.mu.Unlock()
	t.fn()
}

type fakePage struct {
	mu     sync.Mutex
	events []string
}

func (p *fakePage) record(e string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *fakePage) ShowArtwork(url string, _ *spotify.Snapshot) { p.record("show " + url) }
func (p *fakePage) HideArtwork(*spotify.Snapshot)               { p.record("hide") }
func (p *fakePage) HideLogin()                                  { p.record("hide-login") }
func (p *fakePage) Navigate(path string)                        { p.record("navigate " + path) }

func (p *fakePage) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func (p *fakePage) Last() string {
	events := p.Events()
	if len(events) == 0 {
		return ""
	}
	return events[len(events)-1]
}

type fakeTokens struct {
	mu          sync.Mutex
	exchange    *Token
	exchangeErr error
	refreshes   []tokenResult
	exchanges   int
	refreshed   int
}

type tokenResult struct {
	token *Token
	err   error
}

func (f *fakeTokens) Exchange(context.Context, string) (*Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchanges++
	return f.exchange, f.exchangeErr
}

func (f *fakeTokens) Refresh(context.Context) (*Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed++
	if len(f.refreshes) == 0 {
		return nil, errRefreshExhausted
	}
	r := f.refreshes[0]
	f.refreshes = f.refreshes[1:]
	return r.token, r.err
}

func (f *fakeTokens) Refreshes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshed
}

type playResult struct {
	snap *spotify.Snapshot
	err  error
}

type fakePlayer struct {
	mu      sync.Mutex
	results []playResult
	tokens  []string
	block   chan struct{}
	entered chan struct{}
}

func (f *fakePlayer) CurrentlyPlaying(ctx context.Context, accessToken string) (*spotify.Snapshot, error) {
	f.mu.Lock()
	f.tokens = append(f.tokens, accessToken)
	block, entered := f.block, f.entered
	var r playResult
	if len(f.results) > 0 {
		r, f.results = f.results[0], f.results[1:]
	} else {
		r = playResult{snap: &spotify.Snapshot{}}
	}
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return r.snap, r.err
}

func (f *fakePlayer) Tokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

func artwork(url string) playResult {
	return playResult{snap: &spotify.Snapshot{
		Playing: true,
		HasItem: true,
		Track:   "Song",
		Images:  []spotify.Image{{URL: url}},
	}}
}
