// Package greeting records which members already welcomed a newly verified member.
package greeting

import "sync"

// Set is an at-most-once guard per (target, greeter) pair. When maxTargets is
// positive the oldest target is forgotten once the limit is exceeded.
type Set struct {
	mu         sync.Mutex
	greeted    map[string]map[string]struct{}
	order      []string
	maxTargets int
}

// NewSet creates an empty Set. maxTargets <= 0 means unbounded.
func NewSet(maxTargets int) *Set {
	return &Set{
		greeted:    make(map[string]map[string]struct{}),
		maxTargets: maxTargets,
	}
}

// Claim records that greeterID greeted targetID. It returns false if that pair was
// already recorded.
func (s *Set) Claim(targetID, greeterID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	greeters, ok := s.greeted[targetID]
	if !ok {
		greeters = make(map[string]struct{})
		s.greeted[targetID] = greeters
		s.order = append(s.order, targetID)
		s.trimLocked()
	}
	if _, done := greeters[greeterID]; done {
		return false
	}
	greeters[greeterID] = struct{}{}

	return true
}

func (s *Set) trimLocked() {
	if s.maxTargets <= 0 {
		return
	}
	for len(s.order) > s.maxTargets {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.greeted, oldest)
	}
}

// Targets returns the number of targets tracked.
func (s *Set) Targets() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.greeted)
}
