package webui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(ttl time.Duration, maxSize int) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore(ttl, maxSize)
	s.now = clock.now
	return s, clock
}

func TestStoreGetPut(t *testing.T) {
	s, _ := newTestStore(time.Minute, 10)

	_, ok := s.Get("missing")
	assert.False(t, ok)

	sess := &Session{}
	s.Put("a", sess)
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Same(t, sess, got)
}

func TestStoreExpiry(t *testing.T) {
	s, clock := newTestStore(time.Minute, 10)
	s.Put("a", &Session{})

	clock.advance(50 * time.Second)
	_, ok := s.Get("a")
	require.True(t, ok, "access inside the TTL")

	// Access slid the expiry forward
	clock.advance(50 * time.Second)
	_, ok = s.Get("a")
	require.True(t, ok)

	clock.advance(2 * time.Minute)
	_, ok = s.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	s, clock := newTestStore(time.Hour, 2)

	s.Put("a", &Session{})
	clock.advance(time.Second)
	s.Put("b", &Session{})
	clock.advance(time.Second)
	_, ok := s.Get("a")
	require.True(t, ok)
	clock.advance(time.Second)

	s.Put("c", &Session{})
	assert.Equal(t, 2, s.Len())

	_, ok = s.Get("b")
	assert.False(t, ok, "b was least recently used")
	_, ok = s.Get("a")
	assert.True(t, ok)
	_, ok = s.Get("c")
	assert.True(t, ok)
}

func TestStoreEvictsExpiredFirst(t *testing.T) {
	s, clock := newTestStore(time.Minute, 2)

	s.Put("old", &Session{})
	clock.advance(2 * time.Minute)
	s.Put("fresh", &Session{})
	s.Put("newer", &Session{})

	assert.Equal(t, 2, s.Len())
	_, ok := s.Get("fresh")
	assert.True(t, ok)
	_, ok = s.Get("newer")
	assert.True(t, ok)
}
