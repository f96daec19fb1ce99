package pool

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/graphsum/internal/testutils"
	"github.com/jzx17/graphsum/pkg/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectError bool
	}{
		{
			name:        "nil config should use default",
			config:      nil,
			expectError: false,
		},
		{
			name:        "valid config",
			config:      &Config{Workers: 4},
			expectError: false,
		},
		{
			name:        "zero workers should error",
			config:      &Config{Workers: 0},
			expectError: true,
		},
		{
			name:        "negative workers should error",
			config:      &Config{Workers: -1},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.config)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, p)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, p)
				if tt.config != nil {
					assert.Equal(t, tt.config.Workers, p.Workers())
				}
			}
		})
	}
}

func TestPool_Lifecycle(t *testing.T) {
	p, err := New(&Config{Workers: 2})
	require.NoError(t, err)

	assert.ErrorIs(t, p.Submit(NewTask(func(interface{}) {}, nil, nil)), types.ErrPoolNotStarted)
	assert.ErrorIs(t, p.Close(), types.ErrPoolNotStarted)

	require.NoError(t, p.Start())
	assert.True(t, p.IsRunning())
	assert.ErrorIs(t, p.Start(), types.ErrPoolRunning)
	assert.ErrorIs(t, p.Submit(nil), types.ErrNilTask)
	assert.ErrorIs(t, p.Submit(NewTask(nil, nil, nil)), types.ErrNilAction)

	require.NoError(t, p.Close())
	assert.False(t, p.IsRunning())
	assert.ErrorIs(t, p.Submit(NewTask(func(interface{}) {}, nil, nil)), types.ErrPoolClosed)

	// Close is idempotent.
	assert.NoError(t, p.Close())
}

func TestPool_ExecutesEveryTaskExactlyOnce(t *testing.T) {
	const tasks = 200

	p, err := New(&Config{Workers: 4})
	require.NoError(t, err)
	require.NoError(t, p.Start())

	// One external seed fans the real tasks out from inside its action, the
	// way producers are meant to feed this pool: while the seed runs the
	// pool cannot go quiescent, so no submission can be rejected.
	executions := make([]int32, tasks)
	require.NoError(t, p.Submit(NewTask(func(interface{}) {
		for i := 0; i < tasks; i++ {
			assert.NoError(t, p.Submit(NewTask(func(arg interface{}) {
				atomic.AddInt32(&executions[arg.(int)], 1)
			}, i, nil)))
		}
	}, nil, nil)))

	require.NoError(t, p.Close())

	for i, n := range executions {
		assert.Equal(t, int32(1), n, "task %d executed %d times", i, n)
	}
	assert.Equal(t, int64(tasks+1), p.Stats().Executed)
}

func TestPool_RecursiveFanOut(t *testing.T) {
	p, err := New(&Config{Workers: 4})
	require.NoError(t, err)
	require.NoError(t, p.Start())

	// A binary tree of tasks, each node submitting its two children. Close
	// must not return before the full tree has executed.
	var count int64
	var visit func(arg interface{})
	visit = func(arg interface{}) {
		atomic.AddInt64(&count, 1)
		depth := arg.(int)
		if depth == 0 {
			return
		}
		for i := 0; i < 2; i++ {
			assert.NoError(t, p.Submit(NewTask(visit, depth-1, nil)))
		}
	}

	require.NoError(t, p.Submit(NewTask(visit, 10, nil)))
	require.NoError(t, p.Close())

	assert.Equal(t, int64(1<<11-1), atomic.LoadInt64(&count))
}

func TestPool_SingleWorkerFanOut(t *testing.T) {
	p, err := New(&Config{Workers: 1})
	require.NoError(t, err)
	require.NoError(t, p.Start())

	var count int64
	var visit func(arg interface{})
	visit = func(arg interface{}) {
		atomic.AddInt64(&count, 1)
		if n := arg.(int); n > 0 {
			assert.NoError(t, p.Submit(NewTask(visit, n-1, nil)))
		}
	}

	done := make(chan struct{})
	go func() {
		assert.NoError(t, p.Submit(NewTask(visit, 100, nil)))
		assert.NoError(t, p.Close())
		close(done)
	}()

	testutils.WaitClosed(t, done, 10*time.Second, "single-worker pool deadlocked on a fan-out chain")
	assert.Equal(t, int64(101), atomic.LoadInt64(&count))
}

func TestPool_NoPrematureShutdownDuringFanOut(t *testing.T) {
	p, err := New(&Config{Workers: 2})
	require.NoError(t, err)
	require.NoError(t, p.Start())

	seedStarted := make(chan struct{})
	release := make(chan struct{})
	childDone := make(chan struct{})

	// The seed dequeues, leaving the queue empty, and stalls before
	// submitting its child: one worker executing, one idle. The pool must
	// treat this window as in-flight work, not quiescence.
	require.NoError(t, p.Submit(NewTask(func(interface{}) {
		close(seedStarted)
		<-release
		assert.NoError(t, p.Submit(NewTask(func(interface{}) {
			close(childDone)
		}, nil, nil)))
	}, nil, nil)))

	drained := make(chan struct{})
	go func() {
		p.Drain()
		close(drained)
	}()

	testutils.WaitClosed(t, seedStarted, 5*time.Second, "seed task never started")
	testutils.AssertStillOpen(t, drained, 100*time.Millisecond,
		"pool declared quiescence while a producer was mid-execution")

	close(release)
	testutils.WaitClosed(t, childDone, 5*time.Second, "child task never executed")
	testutils.WaitClosed(t, drained, 5*time.Second, "pool never drained")
	require.NoError(t, p.Close())
}

func TestPool_DestructorRunsAfterExecution(t *testing.T) {
	p, err := New(&Config{Workers: 2})
	require.NoError(t, err)
	require.NoError(t, p.Start())

	var order []string
	executed := make(chan struct{})
	require.NoError(t, p.Submit(NewTask(
		func(interface{}) { order = append(order, "action") },
		nil,
		func(interface{}) {
			order = append(order, "destroy")
			close(executed)
		},
	)))

	testutils.WaitClosed(t, executed, 5*time.Second, "destructor never ran")
	require.NoError(t, p.Close())
	assert.Equal(t, []string{"action", "destroy"}, order)
}

func TestPool_PanicRecovery(t *testing.T) {
	var handled atomic.Value
	p, err := New(&Config{
		Workers:      2,
		ErrorHandler: func(err error) { handled.Store(err) },
	})
	require.NoError(t, err)
	require.NoError(t, p.Start())

	// Seed both from one action so the second task cannot race the drain.
	var destroyed, after int32
	require.NoError(t, p.Submit(NewTask(func(interface{}) {
		assert.NoError(t, p.Submit(NewTask(
			func(interface{}) { panic("boom") },
			nil,
			func(interface{}) { atomic.AddInt32(&destroyed, 1) },
		)))
		assert.NoError(t, p.Submit(NewTask(func(interface{}) {
			atomic.AddInt32(&after, 1)
		}, nil, nil)))
	}, nil, nil)))

	require.NoError(t, p.Close())

	err, ok := handled.Load().(error)
	require.True(t, ok, "error handler was never called")

	var panicErr *types.TaskPanicError
	require.True(t, errors.As(err, &panicErr))
	assert.Equal(t, "boom", panicErr.Value)
	assert.NotEmpty(t, panicErr.Stack)

	assert.Equal(t, int32(1), atomic.LoadInt32(&destroyed), "panicking task must still be disposed")
	assert.Equal(t, int32(1), atomic.LoadInt32(&after))
	assert.Equal(t, int64(1), p.Stats().Panicked)
	assert.Equal(t, int64(3), p.Stats().Executed)
}

func TestPool_StatsWithMockClock(t *testing.T) {
	mock := testutils.NewMockClock(t)
	p, err := New(&Config{
		Workers: 1,
		Clock:   testutils.NewClockWrapper(mock),
	})
	require.NoError(t, err)
	require.NoError(t, p.Start())

	require.NoError(t, p.Submit(NewTask(func(interface{}) {
		mock.Advance(5 * time.Millisecond)
	}, nil, nil)))
	require.NoError(t, p.Close())

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.Executed)
	assert.Equal(t, 5*time.Millisecond, stats.BusyTime)
}

func TestPool_NoShutdownBeforeSeeding(t *testing.T) {
	p, err := New(&Config{Workers: 2})
	require.NoError(t, err)
	require.NoError(t, p.Start())

	// All workers idle right after start, but the submitter has not
	// seeded the pool yet: that window is not quiescence.
	drained := make(chan struct{})
	go func() {
		p.Drain()
		close(drained)
	}()

	testutils.AssertStillOpen(t, drained, 100*time.Millisecond,
		"pool shut down before any task was submitted")

	require.NoError(t, p.Submit(NewTask(func(interface{}) {}, nil, nil)))
	testutils.WaitClosed(t, drained, 5*time.Second, "pool never drained after the seed ran")
	require.NoError(t, p.Close())
}

func TestPool_CloseWithoutTasks(t *testing.T) {
	p, err := New(&Config{Workers: 3})
	require.NoError(t, err)
	require.NoError(t, p.Start())

	done := make(chan struct{})
	go func() {
		assert.NoError(t, p.Close())
		close(done)
	}()

	testutils.WaitClosed(t, done, 5*time.Second, "Close hung on a pool that never ran a task")
}
