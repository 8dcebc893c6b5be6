// Package session keeps login sessions: an opaque random token mapped to the
// authenticated identity, expiring after a fixed max age. The store is
// injected where needed instead of living as ambient global state.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/QuestionAndAnswer/vending-api/internal/core/domain"
)

// CookieName is the session cookie the HTTP layer reads and writes.
const CookieName = "vendsid"

type record struct {
	identity  domain.Identity
	expiresAt time.Time
}

// Store maps session tokens to identities. Safe for concurrent use.
type Store struct {
	maxAge time.Duration

	mu      sync.RWMutex
	records map[string]record
}

func NewStore(maxAge time.Duration) *Store {
	return &Store{
		maxAge:  maxAge,
		records: make(map[string]record),
	}
}

// Create opens a new session for identity and returns its token.
func (s *Store) Create(identity domain.Identity) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.records[token] = record{identity: identity, expiresAt: time.Now().Add(s.maxAge)}
	s.mu.Unlock()

	return token, nil
}

// Get resolves token to an identity. The second result is false when the
// token is unknown or the session has expired.
func (s *Store) Get(token string) (domain.Identity, bool) {
	s.mu.RLock()
	rec, ok := s.records[token]
	s.mu.RUnlock()

	if !ok || time.Now().After(rec.expiresAt) {
		return domain.Identity{}, false
	}
	return rec.identity, true
}

// Delete forgets the session. Deleting an unknown token is a no-op.
func (s *Store) Delete(token string) {
	s.mu.Lock()
	delete(s.records, token)
	s.mu.Unlock()
}

// StartJanitor launches a goroutine that drops expired sessions every
// interval until stop is closed.
func (s *Store) StartJanitor(interval time.Duration, stop <-chan struct{}) {
	go func() {
		slog.Info("Session janitor started", "interval", interval)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.sweep(); n > 0 {
					slog.Debug("Expired sessions removed", "count", n)
				}
			case <-stop:
				return
			}
		}
	}()
}

func (s *Store) sweep() int {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, rec := range s.records {
		if now.After(rec.expiresAt) {
			delete(s.records, token)
			removed++
		}
	}
	return removed
}

func newToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
