package handler

import "sync"

// emitter releases results in index order no matter the order in which they
// complete. flush is called under the lock, so its output never interleaves.
type emitter struct {
	mu      sync.Mutex
	pending []*Result
	next    int
	flush   func(Result)
}

func newEmitter(n int, flush func(Result)) *emitter {
	return &emitter{pending: make([]*Result, n), flush: flush}
}

func (e *emitter) done(i int, r Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pending[i] = &r
	for e.next < len(e.pending) && e.pending[e.next] != nil {
		e.flush(*e.pending[e.next])
		e.next++
	}
}
