package service

import (
	"time"

	"houses_market/internal/app/port"
	"houses_market/internal/app/state"
	"houses_market/internal/pkg/metrics"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionStore keeps one state record per page session and expires idle ones.
type SessionStore struct {
	sessions *cache.Cache
	ttl      time.Duration
	logger   port.Logger
}

// NewSessionStore creates a store whose records expire after ttl without access.
func NewSessionStore(ttl, cleanupInterval time.Duration, logger port.Logger) *SessionStore {
	s := &SessionStore{
		sessions: cache.New(ttl, cleanupInterval),
		ttl:      ttl,
		logger:   logger,
	}
	s.sessions.OnEvicted(func(id string, _ interface{}) {
		metrics.ActiveSessions.Dec()
		s.logger.Debug("Session state expired", "session", id)
	})
	return s
}

var _ port.SessionStore = (*SessionStore)(nil)

// Get returns the record for id and extends its lifetime.
func (s *SessionStore) Get(id string) (*state.GlobalState, bool) {
	if id == "" {
		return nil, false
	}
	v, found := s.sessions.Get(id)
	if !found {
		return nil, false
	}
	st, ok := v.(*state.GlobalState)
	if !ok {
		return nil, false
	}
	if err := s.sessions.Replace(id, st, cache.DefaultExpiration); err != nil {
		return nil, false
	}
	return st, true
}

// Create starts a new session with a fresh record.
func (s *SessionStore) Create() (string, *state.GlobalState) {
	id := uuid.NewString()
	st := state.New()
	s.sessions.Set(id, st, cache.DefaultExpiration)
	metrics.ActiveSessions.Inc()
	s.logger.Debug("Session state created", "session", id)
	return id, st
}

// Count returns the number of live sessions, expired but not yet cleaned ones included.
func (s *SessionStore) Count() int {
	return s.sessions.ItemCount()
}
