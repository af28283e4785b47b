package engine

import "sync"

// learnerLocks hands out one mutex per learner. An entry lives only while
// someone holds or waits on it, so the map stays as small as the number
// of learners with work in flight.
type learnerLocks struct {
	mu sync.Mutex
	m  map[string]*learnerLock
}

type learnerLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until learnerID is free and returns the unlock func.
func (l *learnerLocks) lock(learnerID string) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*learnerLock)
	}
	ll, ok := l.m[learnerID]
	if !ok {
		ll = &learnerLock{}
		l.m[learnerID] = ll
	}
	ll.refs++
	l.mu.Unlock()

	ll.mu.Lock()
	return func() {
		ll.mu.Unlock()
		l.mu.Lock()
		ll.refs--
		if ll.refs == 0 {
			delete(l.m, learnerID)
		}
		l.mu.Unlock()
	}
}

// size is the number of learners with a lock held or awaited.
func (l *learnerLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
