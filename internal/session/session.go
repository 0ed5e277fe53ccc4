// Package session holds the single unlock slot of a running vault: the key
// derived from the PIN, present only between a successful unlock and the
// next lock or wipe.
package session

import (
	"sync"

	"github.com/dmitrijs2005/nestkey/internal/common"
	"github.com/dmitrijs2005/nestkey/internal/cryptox"
)

// Session is an explicit handle passed into every vault operation. The zero
// value is a locked session.
type Session struct {
	mu  sync.RWMutex
	key *cryptox.Key
}

// New returns a locked session.
func New() *Session {
	return &Session{}
}

// Set stores a copy of key, wiping any previous one.
func (s *Session) Set(key cryptox.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		s.key.Wipe()
	}
	k := key
	s.key = &k
}

// Clear wipes the key and returns the session to the locked state.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		s.key.Wipe()
		s.key = nil
	}
}

// Unlocked reports whether a key is present.
func (s *Session) Unlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key != nil
}

// RequireUnlocked returns a copy of the key or common.ErrLocked.
// The caller owns the copy and should Wipe it when done.
func (s *Session) RequireUnlocked() (cryptox.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.key == nil {
		return cryptox.Key{}, common.ErrLocked
	}
	return *s.key, nil
}
