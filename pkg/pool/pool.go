package pool

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jzx17/graphsum/pkg/types"
)

// Config defines configuration for a worker pool
type Config struct {
	// Workers is the fixed number of worker goroutines
	Workers int

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// ErrorHandler receives failures recovered from task actions (optional)
	ErrorHandler types.ErrorHandler
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Workers: runtime.GOMAXPROCS(0),
		Clock:   types.NewRealClock(),
	}
}

// Pool is a fixed-size worker pool over an unbounded shared task queue.
// Tasks may submit further tasks from inside their own action; the pool shuts
// down on its own once every worker is idle and no task is pending, which is
// the only point at which no more work can appear.
type Pool struct {
	config *Config
	queue  *taskQueue
	wg     sync.WaitGroup

	// state management: 0 new, 1 running, 2 closed
	state     int32
	closeOnce sync.Once

	// statistics
	executed  int64
	panicked  int64
	busyNanos int64
}

// New creates a worker pool. The pool must be started before tasks can be
// submitted.
func New(config *Config) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if config.Workers <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", config.Workers)
	}
	if config.Clock == nil {
		config.Clock = types.NewRealClock()
	}

	return &Pool{
		config: config,
		queue:  newTaskQueue(config.Workers),
	}, nil
}

// Start spawns the worker goroutines
func (p *Pool) Start() error {
	if !atomic.CompareAndSwapInt32(&p.state, 0, 1) {
		if atomic.LoadInt32(&p.state) == 1 {
			return types.ErrPoolRunning
		}
		return types.ErrPoolClosed
	}

	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return nil
}

// Submit enqueues a task. It is safe to call from the submitter goroutine or
// from inside a running task's action; fan-out submission is how recursive
// workloads feed the pool. A submission from inside an action can never be
// rejected, because the pool cannot go quiescent while that action runs.
// External submissions after the pool has drained return ErrPoolClosed.
func (p *Pool) Submit(t *Task) error {
	switch atomic.LoadInt32(&p.state) {
	case 0:
		return types.ErrPoolNotStarted
	case 2:
		return types.ErrPoolClosed
	}
	if t == nil {
		return types.ErrNilTask
	}
	if t.action == nil {
		return types.ErrNilAction
	}
	return p.queue.enqueue(t)
}

// Drain blocks until the pool is quiescent: no task pending and no worker
// executing. It returns immediately if the pool already drained. On a pool
// that was never seeded Drain keeps waiting for the first task; use Close to
// tear such a pool down.
func (p *Pool) Drain() {
	p.queue.drainWait()
}

// Close drains the pool, joins all workers and releases their resources. Any
// task still pending at teardown is disposed without executing. The pool is
// unusable afterwards.
func (p *Pool) Close() error {
	if atomic.LoadInt32(&p.state) == 0 {
		return types.ErrPoolNotStarted
	}

	p.closeOnce.Do(func() {
		p.queue.close()
		p.Drain()
		p.wg.Wait()
		atomic.StoreInt32(&p.state, 2)

		for _, t := range p.queue.flush() {
			t.dispose()
		}
	})
	return nil
}

// Stats is a snapshot of pool activity
type Stats struct {
	Workers  int
	Executed int64
	Panicked int64
	BusyTime time.Duration
}

// Stats gets basic pool statistics
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:  p.config.Workers,
		Executed: atomic.LoadInt64(&p.executed),
		Panicked: atomic.LoadInt64(&p.panicked),
		BusyTime: time.Duration(atomic.LoadInt64(&p.busyNanos)),
	}
}

// Workers returns the fixed worker count
func (p *Pool) Workers() int {
	return p.config.Workers
}

// IsRunning checks if the pool is running
func (p *Pool) IsRunning() bool {
	return atomic.LoadInt32(&p.state) == 1
}

// worker is the loop every worker goroutine runs: take a task, run it to
// completion, dispose it, repeat until the queue reports quiescence.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		t, ok := p.queue.dequeue()
		if !ok {
			return
		}
		p.runTask(id, t)
	}
}

// runTask executes a single task with panic recovery. Disposal is
// unconditional: the destructor runs whether or not the action failed.
func (p *Pool) runTask(id int, t *Task) {
	start := p.config.Clock.Now()
	defer func() {
		atomic.AddInt64(&p.executed, 1)
		atomic.AddInt64(&p.busyNanos, int64(p.config.Clock.Since(start)))
		t.dispose()
	}()

	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&p.panicked, 1)
			if handler := p.config.ErrorHandler; handler != nil {
				var buf [4096]byte
				n := runtime.Stack(buf[:], false)
				handler(types.NewTaskPanicError(t.id, id, r, string(buf[:n])))
			}
		}
	}()

	t.action(t.arg)
}
