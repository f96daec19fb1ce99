package pool

import (
	"fmt"
	"sync/atomic"
)

// taskIDCounter is the global task ID counter
var taskIDCounter int64

// Task is a unit of deferred work: an action, the argument it owns, and an
// optional destructor for that argument. The argument has exactly one owner at
// any time: the producer until Submit, the queue while pending, and the
// executing worker afterwards.
type Task struct {
	id       string
	action   func(arg interface{})
	arg      interface{}
	destroy  func(arg interface{})
	disposed int32 // atomic, 0 or 1
}

// NewTask creates a task from an action, its argument and an optional
// destructor. The destructor, if non-nil, runs exactly once when the task is
// disposed, whether the task executed or was flushed at teardown. A task with
// a nil action is rejected at Submit.
func NewTask(action func(arg interface{}), arg interface{}, destroy func(arg interface{})) *Task {
	id := atomic.AddInt64(&taskIDCounter, 1)
	return &Task{
		id:      fmt.Sprintf("task-%d", id),
		action:  action,
		arg:     arg,
		destroy: destroy,
	}
}

// ID returns the task ID
func (t *Task) ID() string {
	return t.id
}

// dispose releases the task's argument through its destructor. Disposing a
// task twice is a programming error and panics rather than silently running
// the destructor again.
func (t *Task) dispose() {
	if !atomic.CompareAndSwapInt32(&t.disposed, 0, 1) {
		panic(fmt.Sprintf("pool: task %s disposed twice", t.id))
	}
	if t.destroy != nil {
		t.destroy(t.arg)
	}
}
