// Package queue implements the prover service's admission queue: a
// capacity-one container expressing "at most one active proof at a time".
// A bounded channel with try-send semantics expresses that invariant more
// directly than a manual "check length under lock, then push" pattern.
package queue

import (
	"sync"

	"github.com/rollupwatch/prove-responder/prover/types"
)

// Queue holds at most one ProveRequest. TryEnqueue, Peek, Pop, and Len are
// the only operations; admission and the worker's peek+pop are the only
// critical sections. The lock is never held across proving.
type Queue struct {
	mu  sync.Mutex
	ch  chan types.ProveRequest
	cur *types.ProveRequest
}

// New returns an empty capacity-one queue.
func New() *Queue {
	return &Queue{ch: make(chan types.ProveRequest, 1)}
}

// TryEnqueue attempts to admit req. It returns false if a request is already
// resident, in which case the caller should answer "Proving". On success it
// returns true and req is published for Peek/Pop.
func (q *Queue) TryEnqueue(req types.ProveRequest) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	select {
	case q.ch <- req:
		q.cur = &req
		return true
	default:
		return false
	}
}

// Peek returns the resident request without removing it, and true if one is
// present.
func (q *Queue) Peek() (types.ProveRequest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cur == nil {
		return types.ProveRequest{}, false
	}
	return *q.cur, true
}

// Pop removes the resident request, regardless of whether the worker
// succeeded or failed at proving it; success is only observable through
// artifact presence on disk.
func (q *Queue) Pop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cur == nil {
		return
	}
	<-q.ch
	q.cur = nil
}

// Len reports 0 or 1, backing the /query_status endpoint.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cur == nil {
		return 0
	}
	return 1
}
