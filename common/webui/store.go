package webui

import (
	"sync"
	"time"

	"imagesearch/common/session"
)

// Session is one browser's UI state plus its pending alerts
type Session struct {
	App   *session.App
	Inbox *session.Inbox
}

// Store keeps sessions in memory with a sliding TTL and a maximum size.
// When full, the least recently accessed session is evicted.
type Store struct {
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	session    *Session
	expiresAt  time.Time
	lastAccess time.Time
}

// NewStore creates an empty session store
func NewStore(ttl time.Duration, maxSize int) *Store {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Store{
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Get returns the session for id and extends its lifetime
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.After(e.expiresAt) {
		delete(s.entries, id)
		return nil, false
	}
	e.lastAccess = now
	e.expiresAt = now.Add(s.ttl)
	return e.session, true
}

// Put stores a session under id
func (s *Store) Put(id string, sess *Session) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; !exists && len(s.entries) >= s.maxSize {
		s.evictLocked(now)
	}
	s.entries[id] = &entry{
		session:    sess,
		expiresAt:  now.Add(s.ttl),
		lastAccess: now,
	}
}

// evictLocked drops expired sessions, or the least recently accessed one if none expired
func (s *Store) evictLocked(now time.Time) {
	var oldestKey string
	var oldestTime time.Time
	expired := false
	for k, v := range s.entries {
		if now.After(v.expiresAt) {
			delete(s.entries, k)
			expired = true
			continue
		}
		if oldestKey == "" || v.lastAccess.Before(oldestTime) {
			oldestKey = k
			oldestTime = v.lastAccess
		}
	}
	if !expired && oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}

// Len returns the number of stored sessions, expired ones included
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// removeExpired drops every expired session and reports how many were removed
func (s *Store) removeExpired() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, v := range s.entries {
		if now.After(v.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}
