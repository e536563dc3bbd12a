package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/Str1k3rFl0/Afira-ChatBotAI/models"
)

// Store holds every user's in-progress dialog state for the lifetime of the
// process. Beyond plain get/set/delete it provides two things the dispatcher
// depends on: a per-user mutex so the read-step-write cycle is atomic for a
// given user id, and TTL eviction so abandoned dialogs don't accumulate
// forever.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	locks    map[string]*userLock
	ttl      time.Duration

	now func() time.Time
}

// userLock is a per-user mutex with a holder/waiter count. The entry is
// dropped from the map once the last unlock runs, so the map only grows
// with currently active users.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// New creates a Store. A ttl of 0 disables eviction.
func New(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*models.Session),
		locks:    make(map[string]*userLock),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Lock acquires the user's mutex and returns the matching unlock. Callers
// hold it across the whole get-step-set sequence for that user.
func (s *Store) Lock(userID string) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userID)
		}
		s.mu.Unlock()
	}
}

// Get returns the user's session, if any.
func (s *Store) Get(userID string) (*models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

// Set stores the session and stamps its activity time.
func (s *Store) Set(sess *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.LastActive = s.now()
	s.sessions[sess.UserID] = sess
}

// Delete removes the user's session. Deleting an absent session is a no-op.
func (s *Store) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len returns the number of active sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle longer than the TTL and returns how many were
// removed. With TTL 0 it does nothing.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for userID, sess := range s.sessions {
		if sess.LastActive.Before(cutoff) {
			delete(s.sessions, userID)
			removed++
		}
	}
	return removed
}

// Run sweeps on the given interval until the context is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
