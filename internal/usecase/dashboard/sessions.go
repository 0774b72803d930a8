package dashboard

import (
	"sync"
	"time"
)

// Sessions keeps one Session per client id. Sessions unused for longer than the idle
// timeout are dropped, and when the registry is full the least recently used one goes.
type Sessions struct {
	builder Builder
	max     int
	idle    time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

type sessionEntry struct {
	session  *Session
	lastUsed time.Time
}

// NewSessions creates a registry holding at most maxSessions sessions.
// A non-positive maxSessions keeps a single session; a non-positive idle disables expiry.
func NewSessions(builder Builder, maxSessions int, idle time.Duration) *Sessions {
	if maxSessions <= 0 {
		maxSessions = 1
	}
	return &Sessions{
		builder: builder,
		max:     maxSessions,
		idle:    idle,
		now:     time.Now,
		entries: make(map[string]*sessionEntry),
	}
}

// Get returns the session of client id, creating it on first use.
func (s *Sessions) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[id]; ok && !s.expired(e, now) {
		e.lastUsed = now
		return e.session
	}

	s.evict(now)
	e := &sessionEntry{session: NewSession(s.builder), lastUsed: now}
	s.entries[id] = e
	return e.session
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Sessions) expired(e *sessionEntry, now time.Time) bool {
	return s.idle > 0 && now.Sub(e.lastUsed) > s.idle
}

// evict drops expired sessions, then the least recently used ones until there is
// room for one more. Callers hold s.mu.
func (s *Sessions) evict(now time.Time) {
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
		}
	}
	for len(s.entries) >= s.max {
		var (
			oldestID string
			oldest   time.Time
			found    bool
		)
		for id, e := range s.entries {
			if !found || e.lastUsed.Before(oldest) {
				oldestID, oldest, found = id, e.lastUsed, true
			}
		}
		delete(s.entries, oldestID)
	}
}
