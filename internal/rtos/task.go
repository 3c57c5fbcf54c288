package rtos

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// StepFunc is one iteration of a task body. It must return promptly once
// ctx is done.
type StepFunc func(ctx context.Context) error

// Task runs a step function repeatedly and can be suspended and resumed
// by another task. Suspension interrupts an in-progress step.
type Task struct {
	name string
	step StepFunc

	mu        sync.Mutex
	cond      *sync.Cond
	suspended bool
	running   bool
	cancel    context.CancelFunc
	steps     int
}

// NewTask creates a task that is ready to run.
func NewTask(name string, step StepFunc) *Task {
	t := &Task{name: name, step: step}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Run executes steps until ctx ends or a step fails.
func (t *Task) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		t.mu.Lock()
		t.cond.Broadcast()
		t.mu.Unlock()
	})
	defer stop()

	for {
		t.mu.Lock()
		for t.suspended && ctx.Err() == nil {
			t.cond.Wait()
		}
		if ctx.Err() != nil {
			t.mu.Unlock()
			return nil
		}
		stepCtx, cancel := context.WithCancel(ctx)
		t.cancel = cancel
		t.running = true
		t.mu.Unlock()

		err := t.step(stepCtx)
		cancel()

		t.mu.Lock()
		t.running = false
		t.cancel = nil
		if err == nil {
			t.steps++
		}
		interrupted := t.suspended || ctx.Err() != nil
		t.cond.Broadcast()
		t.mu.Unlock()

		if err != nil && !(interrupted && errors.Is(err, context.Canceled)) {
			return fmt.Errorf("task %s: %w", t.name, err)
		}
	}
}

// Suspend stops the task from running further steps and interrupts the
// current one. It returns once no step is executing. It must not be called
// from the task's own step.
func (t *Task) Suspend() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.suspended = true
	if t.cancel != nil {
		t.cancel()
	}
	for t.running {
		t.cond.Wait()
	}
}

// Resume lets a suspended task continue.
func (t *Task) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.suspended = false
	t.cond.Broadcast()
}

// Suspended reports whether the task is suspended.
func (t *Task) Suspended() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.suspended
}

// Steps returns the number of steps that completed without error.
func (t *Task) Steps() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.steps
}
