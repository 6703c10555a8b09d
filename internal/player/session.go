package player

import "sync"

// Session holds the access token. At most one token is valid at a time.
type Session struct {
	mu          sync.RWMutex
	accessToken string
}

// Set replaces the access token.
func (s *Session) Set(accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
}

// Token returns the access token and whether one is held.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.accessToken != ""
}

// Clear drops the access token.
func (s *Session) Clear() {
	s.Set("")
}
