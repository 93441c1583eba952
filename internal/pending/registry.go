// Package pending keeps short-lived sessions that bridge a command and the later
// button press or form submission resolving it.
package pending

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrSessionNotFound reports a key that expired or was already resolved.
	ErrSessionNotFound = errors.New("session expired or already resolved")
	// ErrSessionLocked reports a session held by another actor's in-flight resolution.
	ErrSessionLocked = errors.New("session is being resolved by another actor")
)

// Session is a pending interaction awaiting a second human action.
type Session[T any] struct {
	Key         string
	CreatedBy   string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	Payload     T
	LockedBy    string
	LockedUntil time.Time
}

// HeldBy returns the actor holding a live lock at now.
func (s Session[T]) HeldBy(now time.Time) (string, bool) {
	if s.LockedBy == "" || !now.Before(s.LockedUntil) {
		return "", false
	}
	return s.LockedBy, true
}

type entry[T any] struct {
	session Session[T]
	scope   string
	timer   *time.Timer
}

// scopeState remembers the last millisecond issued for a prefix and actor.
type scopeState struct {
	last int64
	live int
}

// minSweep is the scope count below which idle scopes are left alone.
const minSweep = 16

// Registry is a concurrency-safe keyed store of sessions with per-key eviction timers.
type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	issued  map[string]*scopeState
	now     func() time.Time
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the clock used for keys and deadlines.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// NewRegistry creates an empty registry.
func NewRegistry[T any](opts ...Option) *Registry[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Registry[T]{
		entries: make(map[string]*entry[T]),
		issued:  make(map[string]*scopeState),
		now:     o.now,
	}
}

// Create stores payload under a fresh key of the form <prefix>_<createdBy>_<millis>
// and schedules its eviction after expiresAfter.
func (r *Registry[T]) Create(prefix, createdBy string, payload T, expiresAfter time.Duration) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	scope := prefix + "_" + createdBy
	key := r.newKeyLocked(scope, now)

	e := &entry[T]{
		scope: scope,
		session: Session[T]{
			Key:       key,
			CreatedBy: createdBy,
			CreatedAt: now,
			ExpiresAt: now.Add(expiresAfter),
			Payload:   payload,
		},
	}
	e.timer = time.AfterFunc(expiresAfter, func() { r.evict(key, e) })
	r.entries[key] = e

	return key
}

// Timestamps are monotonic per scope, so a key is never issued twice. A scope is
// remembered while it has live sessions or its last millisecond has not passed.
func (r *Registry[T]) newKeyLocked(scope string, now time.Time) string {
	r.sweepLocked(now)

	ts := now.UnixMilli()
	st, ok := r.issued[scope]
	if !ok {
		st = &scopeState{}
		r.issued[scope] = st
	} else if ts <= st.last {
		ts = st.last + 1
	}
	st.last = ts
	st.live++

	return fmt.Sprintf("%s_%d", scope, ts)
}

// sweepLocked drops idle scopes once they outnumber live sessions.
func (r *Registry[T]) sweepLocked(now time.Time) {
	if len(r.issued) <= minSweep || len(r.issued) <= 2*len(r.entries) {
		return
	}
	ms := now.UnixMilli()
	for scope, st := range r.issued {
		if st.live == 0 && st.last < ms {
			delete(r.issued, scope)
		}
	}
}

func (r *Registry[T]) release(scope string) {
	st, ok := r.issued[scope]
	if !ok {
		return
	}
	st.live--
	if st.live <= 0 && st.last < r.now().UnixMilli() {
		delete(r.issued, scope)
	}
}

func (r *Registry[T]) evict(key string, e *entry[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.entries[key]; ok && cur == e {
		r.deleteLocked(key, e)
	}
}

// liveLocked returns the entry for key unless it is missing or past its deadline.
// An expired entry is dropped on the spot.
func (r *Registry[T]) liveLocked(key string) (*entry[T], bool) {
	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	if !r.now().Before(e.session.ExpiresAt) {
		r.deleteLocked(key, e)
		return nil, false
	}
	return e, true
}

func (r *Registry[T]) deleteLocked(key string, e *entry[T]) {
	e.timer.Stop()
	delete(r.entries, key)
	r.release(e.scope)
}

// Get looks a session up without side effects on live sessions.
func (r *Registry[T]) Get(key string) (Session[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.liveLocked(key)
	if !ok {
		return Session[T]{}, false
	}
	return e.session, true
}

// Remove atomically looks up and deletes a session. Only the first of several
// concurrent callers gets it.
func (r *Registry[T]) Remove(key string) (Session[T], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.liveLocked(key)
	if !ok {
		return Session[T]{}, false
	}
	r.deleteLocked(key, e)

	return e.session, true
}

// RemoveIf removes the session only when check accepts it. check runs under the
// registry lock; when it fails the session stays in place and its error is returned.
func (r *Registry[T]) RemoveIf(key string, check func(Session[T]) error) (Session[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.liveLocked(key)
	if !ok {
		return Session[T]{}, ErrSessionNotFound
	}
	if check != nil {
		if err := check(e.session); err != nil {
			return e.session, err
		}
	}
	r.deleteLocked(key, e)

	return e.session, nil
}

// Update mutates the payload of a live session in place.
func (r *Registry[T]) Update(key string, fn func(*T)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.liveLocked(key)
	if !ok {
		return false
	}
	fn(&e.session.Payload)

	return true
}

// Lock marks the session as being resolved by actor for lease. The same actor may
// re-lock to refresh the lease; anyone else gets ErrSessionLocked until it lapses.
func (r *Registry[T]) Lock(key, actor string, lease time.Duration) (Session[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.liveLocked(key)
	if !ok {
		return Session[T]{}, ErrSessionNotFound
	}

	now := r.now()
	if holder, held := e.session.HeldBy(now); held && holder != actor {
		return e.session, ErrSessionLocked
	}
	e.session.LockedBy = actor
	e.session.LockedUntil = now.Add(lease)

	return e.session, nil
}

// UnlessLockedByOther returns a RemoveIf check refusing sessions held by anyone but actor.
func (r *Registry[T]) UnlessLockedByOther(actor string) func(Session[T]) error {
	return func(s Session[T]) error {
		if holder, held := s.HeldBy(r.now()); held && holder != actor {
			return ErrSessionLocked
		}
		return nil
	}
}

// Len returns the number of stored sessions, including ones whose timer is due.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// Close stops every eviction timer and drops all sessions.
func (r *Registry[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, e := range r.entries {
		r.deleteLocked(key, e)
	}
}
