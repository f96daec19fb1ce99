// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrPoolClosed indicates the pool has shut down and accepts no more tasks
	ErrPoolClosed = errors.New("pool is closed")

	// ErrPoolNotStarted indicates the pool was created but never started
	ErrPoolNotStarted = errors.New("pool is not started")

	// ErrPoolRunning indicates the pool is already running
	ErrPoolRunning = errors.New("pool is already running")

	// ErrNilTask indicates a nil task was submitted
	ErrNilTask = errors.New("task cannot be nil")

	// ErrNilAction indicates a task without an action was submitted
	ErrNilAction = errors.New("task action cannot be nil")
)

// ErrorHandler receives failures the pool recovers during task execution
type ErrorHandler func(err error)

// TaskPanicError wraps a panic recovered while a worker executed a task
type TaskPanicError struct {
	// TaskID identifies the task whose action panicked
	TaskID string

	// WorkerID identifies the worker that was executing the task
	WorkerID int

	// Value is the recovered panic value
	Value interface{}

	// Stack is the goroutine stack captured at recovery
	Stack string
}

// Error implements the error interface
func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("task %s panicked on worker %d: %v", e.TaskID, e.WorkerID, e.Value)
}

// Unwrap returns the panic value if it was an error
func (e *TaskPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// NewTaskPanicError creates a new TaskPanicError
func NewTaskPanicError(taskID string, workerID int, value interface{}, stack string) *TaskPanicError {
	return &TaskPanicError{
		TaskID:   taskID,
		WorkerID: workerID,
		Value:    value,
		Stack:    stack,
	}
}
