package courier

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTokenSkew refreshes tokens this long before their real expiry.
const DefaultTokenSkew = 5 * time.Minute

// RefreshFunc performs the backend-specific login exchange and returns a
// fresh token with its real expiry.
type RefreshFunc func(ctx context.Context) (Token, error)

// TokenSource caches one backend's auth token and refreshes it with
// single-flight semantics: while a refresh is in flight, concurrent callers
// await its result instead of issuing duplicate logins.
type TokenSource struct {
	refresh RefreshFunc
	skew    time.Duration
	now     func() time.Time

	mu    sync.Mutex
	token Token
	group singleflight.Group
}

// NewTokenSource creates a token source around a refresh function.
func NewTokenSource(refresh RefreshFunc, skew time.Duration) *TokenSource {
	if skew <= 0 {
		skew = DefaultTokenSkew
	}
	return &TokenSource{refresh: refresh, skew: skew, now: time.Now}
}

// Token returns the cached token, refreshing it when absent or near expiry.
// Exactly one upstream login happens per refresh window regardless of
// concurrency.
func (s *TokenSource) Token(ctx context.Context) (Token, error) {
	s.mu.Lock()
	tok := s.token
	s.mu.Unlock()
	if tok.Valid(s.now(), s.skew) {
		return tok, nil
	}

	result, err, _ := s.group.Do("token", func() (interface{}, error) {
		// Another caller may have completed a refresh while this one queued.
		s.mu.Lock()
		cached := s.token
		s.mu.Unlock()
		if cached.Valid(s.now(), s.skew) {
			return cached, nil
		}

		fresh, err := s.refresh(ctx)
		if err != nil {
			return Token{}, err
		}
		s.mu.Lock()
		s.token = fresh
		s.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return Token{}, err
	}
	return result.(Token), nil
}

// Invalidate discards the cached token, forcing a refresh on the next call.
// Used when the backend rejects a token before its advertised expiry.
func (s *TokenSource) Invalidate() {
	s.mu.Lock()
	s.token = Token{}
	s.mu.Unlock()
}
