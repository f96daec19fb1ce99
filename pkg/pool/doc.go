/*
Package pool implements a fixed-size worker pool over a shared, unbounded task
queue, built for recursive workloads where a running task submits further
tasks.

# Overview

The total amount of work is not known up-front: executing a task may fan out
into more tasks. The pool therefore cannot shut down on a simple "queue empty"
test, because an empty queue may just mean the remaining work is still being
produced by a task in flight. Shutdown is triggered only at quiescence, the
one state in which no more work can ever appear: no task pending and every
worker idle.

# Termination protocol

Workers block inside dequeue when the queue is empty. A worker going idle
increments the idle count, and if that makes every worker idle while the queue
is still empty within the same critical section, it declares shutdown and
broadcasts to all waiters. Any task capable of producing new work would have
to be running on some worker, and none is. Workers observing shutdown drain
whatever is left and exit their loop.

Detection arms on the first submission, so the window between Start and the
seed task does not count as quiescence. After the seed, the pool is expected
to be fed from inside running actions; an external submission racing the final
drain may find the pool already closed.

Both the idle-count test and the emptiness test happen under one lock
acquisition, after the increment. Splitting them lets a task enqueued in the
gap be missed, shutting the pool down with work outstanding.

# Tasks

A Task carries an action, an argument the task exclusively owns, and an
optional destructor for that argument. The destructor runs exactly once when
the task is disposed, both for tasks that executed and for tasks flushed at
teardown. Actions are run without the queue lock held, so tasks execute
concurrently; any state shared between actions needs its own synchronization.

Actions report no errors to the pool. A panicking action is recovered, handed
to the configured ErrorHandler as a *types.TaskPanicError, and still disposed.

# Usage

	p, err := pool.New(&pool.Config{Workers: 4})
	if err != nil {
		log.Fatal(err)
	}
	if err := p.Start(); err != nil {
		log.Fatal(err)
	}

	err = p.Submit(pool.NewTask(func(arg interface{}) {
		// may call p.Submit again
	}, arg, nil))

	p.Close() // blocks until quiescent, then joins the workers

There is no cancellation, no priority and no resizing: a submitted task
eventually executes (or is flushed at teardown), and the worker count is fixed
for the pool's lifetime.
*/
package pool
