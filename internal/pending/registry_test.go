package pending

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 2, 15, 17, 14, 24, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type payload struct {
	Target string
}

func TestRegistry_CreateKeyFormat(t *testing.T) {
	clock := newFakeClock()
	r := NewRegistry[payload](WithClock(clock.Now))
	t.Cleanup(r.Close)

	key := r.Create("verificar", "M1", payload{Target: "U1"}, time.Minute)

	assert.Equal(t, "verificar_M1_"+strconv.FormatInt(clock.Now().UnixMilli(), 10), key)

	s, ok := r.Get(key)
	require.True(t, ok)
	assert.Equal(t, "M1", s.CreatedBy)
	assert.Equal(t, "U1", s.Payload.Target)
	assert.Equal(t, clock.Now().Add(time.Minute), s.ExpiresAt)
}

func TestRegistry_KeysUniqueWithinSameMillisecond(t *testing.T) {
	clock := newFakeClock()
	r := NewRegistry[payload](WithClock(clock.Now))
	t.Cleanup(r.Close)

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		key := r.Create("solicitud", "R1", payload{}, time.Minute)
		_, dup := seen[key]
		require.False(t, dup, "duplicate key %s", key)
		seen[key] = struct{}{}
	}

	// A removed key is not handed out again.
	first := r.Create("solicitud", "R2", payload{}, time.Minute)
	_, ok := r.Remove(first)
	require.True(t, ok)
	second := r.Create("solicitud", "R2", payload{}, time.Minute)
	assert.NotEqual(t, first, second)
}

func TestRegistry_IssuedScopesStayBounded(t *testing.T) {
	clock := newFakeClock()
	r := NewRegistry[payload](WithClock(clock.Now))
	t.Cleanup(r.Close)

	for i := 0; i < 200; i++ {
		// Resolved within its own millisecond, so only a later sweep can drop it.
		key := r.Create("verificar", "M"+strconv.Itoa(i), payload{}, time.Minute)
		_, ok := r.Remove(key)
		require.True(t, ok)
		clock.Advance(time.Millisecond)
	}
	r.Create("verificar", "M-last", payload{}, time.Minute)

	r.mu.Lock()
	issued := len(r.issued)
	r.mu.Unlock()
	assert.LessOrEqual(t, issued, minSweep+1)

	// A scope with a live session keeps its last millisecond.
	key := r.Create("solicitud", "R1", payload{}, time.Minute)
	clock.Advance(time.Hour)
	r.mu.Lock()
	_, tracked := r.issued["solicitud_R1"]
	r.mu.Unlock()
	assert.True(t, tracked)

	_, ok := r.Remove(key)
	require.True(t, ok)
	r.mu.Lock()
	_, tracked = r.issued["solicitud_R1"]
	r.mu.Unlock()
	assert.False(t, tracked, "idle scope past its millisecond is dropped")
}

func TestRegistry_ExpiredSessionReleasesScope(t *testing.T) {
	r := NewRegistry[payload]()
	t.Cleanup(r.Close)

	r.Create("verificar", "M1", payload{}, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		_, tracked := r.issued["verificar_M1"]
		return len(r.entries) == 0 && !tracked
	}, time.Second, 5*time.Millisecond)
}

func TestRegistry_GetMissing(t *testing.T) {
	r := NewRegistry[payload]()
	t.Cleanup(r.Close)

	_, ok := r.Get("verificar_nobody_1")
	assert.False(t, ok)
}

func TestRegistry_RemoveIsAtMostOnce(t *testing.T) {
	r := NewRegistry[payload]()
	t.Cleanup(r.Close)

	key := r.Create("verificar", "M1", payload{Target: "U1"}, time.Minute)

	const workers = 64
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok := r.Remove(key); ok {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_RemoveIfConcurrent(t *testing.T) {
	r := NewRegistry[payload]()
	t.Cleanup(r.Close)

	key := r.Create("solicitud", "R1", payload{}, time.Minute)

	var wins, misses atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.RemoveIf(key, nil)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrSessionNotFound):
				misses.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(31), misses.Load())
}

func TestRegistry_RemoveIfRejectedCheckKeepsSession(t *testing.T) {
	r := NewRegistry[payload]()
	t.Cleanup(r.Close)

	key := r.Create("verificar", "M1", payload{}, time.Minute)
	errNotOwner := errors.New("not owner")

	s, err := r.RemoveIf(key, func(s Session[payload]) error {
		if s.CreatedBy != "M2" {
			return errNotOwner
		}
		return nil
	})
	require.ErrorIs(t, err, errNotOwner)
	assert.Equal(t, key, s.Key)

	_, ok := r.Get(key)
	assert.True(t, ok, "session must survive a failed check")

	_, err = r.RemoveIf(key, func(s Session[payload]) error { return nil })
	require.NoError(t, err)
	_, ok = r.Get(key)
	assert.False(t, ok)
}

func TestRegistry_ExpiryBoundary(t *testing.T) {
	clock := newFakeClock()
	r := NewRegistry[payload](WithClock(clock.Now))
	t.Cleanup(r.Close)

	key := r.Create("verificar", "M1", payload{}, 5*time.Minute)

	clock.Advance(5*time.Minute - time.Millisecond)
	_, ok := r.Get(key)
	assert.True(t, ok, "retrievable before the deadline")

	clock.Advance(time.Millisecond)
	_, ok = r.Get(key)
	assert.False(t, ok, "absent at the deadline")

	_, err := r.RemoveIf(key, nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistry_ResolveAfterExpiry(t *testing.T) {
	clock := newFakeClock()
	r := NewRegistry[payload](WithClock(clock.Now))
	t.Cleanup(r.Close)

	key := r.Create("verificar", "M1", payload{}, 5*time.Minute)
	clock.Advance(5*time.Minute + time.Second)

	_, ok := r.Remove(key)
	assert.False(t, ok)
	assert.False(t, r.Update(key, func(p *payload) { p.Target = "x" }))
	_, err := r.Lock(key, "S1", time.Minute)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistry_TimerEvicts(t *testing.T) {
	r := NewRegistry[payload]()
	t.Cleanup(r.Close)

	r.Create("verificar", "M1", payload{}, 20*time.Millisecond)
	require.Equal(t, 1, r.Len())

	assert.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestRegistry_RemoveStopsTimer(t *testing.T) {
	r := NewRegistry[payload]()
	t.Cleanup(r.Close)

	key := r.Create("verificar", "M1", payload{}, time.Hour)
	r.mu.Lock()
	e := r.entries[key]
	r.mu.Unlock()

	_, ok := r.Remove(key)
	require.True(t, ok)
	assert.False(t, e.timer.Stop(), "timer must already be stopped")
}

func TestRegistry_Update(t *testing.T) {
	r := NewRegistry[payload]()
	t.Cleanup(r.Close)

	key := r.Create("solicitud", "R1", payload{Target: "a"}, time.Minute)
	require.True(t, r.Update(key, func(p *payload) { p.Target = "b" }))

	s, ok := r.Get(key)
	require.True(t, ok)
	assert.Equal(t, "b", s.Payload.Target)
	assert.False(t, r.Update("missing", func(p *payload) {}))
}

func TestRegistry_Lock(t *testing.T) {
	clock := newFakeClock()
	r := NewRegistry[payload](WithClock(clock.Now))
	t.Cleanup(r.Close)

	key := r.Create("solicitud", "R1", payload{}, 24*time.Hour)

	s, err := r.Lock(key, "S1", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "S1", s.LockedBy)

	s, err = r.Lock(key, "S2", 15*time.Minute)
	assert.ErrorIs(t, err, ErrSessionLocked)
	assert.Equal(t, "S1", s.LockedBy)

	// Removal by another actor is refused while the lease is live.
	_, err = r.RemoveIf(key, r.UnlessLockedByOther("S2"))
	assert.ErrorIs(t, err, ErrSessionLocked)

	// Same actor refreshes the lease.
	clock.Advance(10 * time.Minute)
	s, err = r.Lock(key, "S1", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(15*time.Minute), s.LockedUntil)

	// Abandoned form: once the lease lapses another actor may proceed.
	clock.Advance(15 * time.Minute)
	_, err = r.RemoveIf(key, r.UnlessLockedByOther("S2"))
	assert.NoError(t, err)
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry[payload]()
	r.Create("a", "1", payload{}, time.Hour)
	r.Create("b", "2", payload{}, time.Hour)

	r.Close()
	assert.Equal(t, 0, r.Len())
}

func TestSession_HeldBy(t *testing.T) {
	now := time.Now()
	s := Session[payload]{LockedBy: "S1", LockedUntil: now.Add(time.Second)}

	holder, held := s.HeldBy(now)
	assert.True(t, held)
	assert.Equal(t, "S1", holder)

	_, held = s.HeldBy(now.Add(time.Second))
	assert.False(t, held)

	_, held = Session[payload]{}.HeldBy(now)
	assert.False(t, held)
}

func TestRegistry_CloseStopsTimers(t *testing.T) {
	r := NewRegistry[payload]()
	r.Create("verificar", "M1", payload{}, 5*time.Minute)
	r.Create("solicitud", "R1", payload{}, 24*time.Hour)

	r.mu.Lock()
	var entries []*entry[payload]
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	r.Close()

	for _, e := range entries {
		assert.False(t, e.timer.Stop(), "eviction timer still pending after Close")
	}
	assert.Equal(t, 0, r.Len())
}
