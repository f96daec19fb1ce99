package pool

import (
	"sync"

	"github.com/jzx17/graphsum/pkg/types"
)

// taskQueue is the shared state all workers and the submitter coordinate
// through: the pending FIFO, the idle-worker count and the one-way shutdown
// flag, all guarded by a single mutex. taskReady wakes workers blocked for
// work; drained wakes submitters blocked in drainWait.
type taskQueue struct {
	mu        sync.Mutex
	taskReady *sync.Cond
	drained   *sync.Cond

	pending  []*Task
	idle     int
	workers  int
	seeded   bool
	shutdown bool
}

func newTaskQueue(workers int) *taskQueue {
	q := &taskQueue{workers: workers}
	q.taskReady = sync.NewCond(&q.mu)
	q.drained = sync.NewCond(&q.mu)
	return q
}

// enqueue appends a task and wakes one idle worker if any is blocked. A single
// signal suffices: the woken worker re-checks the queue under the lock before
// consuming.
func (q *taskQueue) enqueue(t *Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.shutdown {
		return types.ErrPoolClosed
	}

	q.pending = append(q.pending, t)
	q.seeded = true
	if q.idle > 0 {
		q.taskReady.Signal()
	}
	return nil
}

// dequeue returns the oldest pending task, blocking while none is available.
// It returns ok == false once the pool is quiescent: no task pending and every
// worker idle.
//
// Quiescence is detected here and only here. When a worker finds the queue
// empty it increments idle first, then tests idle == workers together with
// emptiness under the same lock hold. Only the last worker to go idle can pass
// that test, and at that instant no peer can be mid-execution and about to
// enqueue more work. Testing the threshold before the increment, or testing
// emptiness under a separate lock acquisition, would let a task enqueued in
// between be missed and shutdown declared with work still outstanding.
func (q *taskQueue) dequeue() (*Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if len(q.pending) > 0 {
			t := q.pending[0]
			q.pending[0] = nil
			q.pending = q.pending[1:]
			q.drained.Signal()
			return t, true
		}

		if q.shutdown {
			return nil, false
		}

		q.idle++
		if q.seeded && q.idle == q.workers {
			// Last worker idle and the queue is empty under this same
			// lock hold: no thread can produce more work. Detection
			// arms only once the first task has been enqueued, so a
			// freshly started pool does not shut down in the window
			// before the submitter seeds it.
			q.shutdown = true
			q.idle--
			q.taskReady.Broadcast()
			q.drained.Broadcast()
			return nil, false
		}

		q.taskReady.Wait()
		q.idle--
	}
}

// drainWait blocks until the queue reaches quiescence, or returns immediately
// if it already has. Spurious wakes are tolerated by re-testing the flag.
func (q *taskQueue) drainWait() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.shutdown {
		q.drained.Wait()
	}
}

// close declares shutdown directly if no task was ever enqueued. Quiescence
// detection arms on the first enqueue, so on a never-seeded pool no worker can
// trigger it and teardown has to.
func (q *taskQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.seeded {
		q.shutdown = true
		q.taskReady.Broadcast()
		q.drained.Broadcast()
	}
}

// flush removes and returns any tasks still pending. Under correct usage the
// queue is empty by the time teardown runs; this covers teardown without a
// preceding full drain so pending arguments are still released.
func (q *taskQueue) flush() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	leftover := q.pending
	q.pending = nil
	return leftover
}
