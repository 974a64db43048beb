// Package runtime manages the server's background tasks: the
// credential sweeper, the usage summary logger and the config watcher
// all run under one TaskManager so shutdown can stop them together.
package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Status is the lifecycle state of a background task.
type Status string

const (
	StatusRunning  Status = "running"
	StatusStopped  Status = "stopped"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Task describes one background task.
type Task struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartedAt   time.Time `json:"started_at"`
	Status      Status    `json:"status"`
	Err         string    `json:"error,omitempty"`

	cancel context.CancelFunc
}

// TaskFunc is the body of a background task. It should return when its
// context is canceled.
type TaskFunc func(ctx context.Context) error

// TaskManager starts, tracks and stops background tasks.
type TaskManager struct {
	mu     sync.RWMutex
	tasks  map[string]*Task
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewTaskManager creates a manager rooted at ctx. Canceling ctx stops
// every task.
func NewTaskManager(ctx context.Context) *TaskManager {
	ctx, cancel := context.WithCancel(ctx)
	return &TaskManager{
		tasks:  make(map[string]*Task),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches fn as a named task. Names must be unique.
func (tm *TaskManager) Start(name, description string, fn TaskFunc) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if _, exists := tm.tasks[name]; exists {
		return fmt.Errorf("task %q already registered", name)
	}

	taskCtx, taskCancel := context.WithCancel(tm.ctx)
	task := &Task{
		Name:        name,
		Description: description,
		StartedAt:   time.Now(),
		Status:      StatusRunning,
		cancel:      taskCancel,
	}
	tm.tasks[name] = task

	tm.wg.Add(1)
	go func() {
		defer tm.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(log.Fields{"task": name, "panic": r}).Error("background task panicked")
				tm.setStatus(task, StatusFailed, fmt.Errorf("panic: %v", r))
			}
		}()

		log.WithField("task", name).Info("background task started")
		err := fn(taskCtx)
		switch {
		case err == nil:
			tm.setStatus(task, StatusStopped, nil)
			log.WithField("task", name).Info("background task finished")
		case taskCtx.Err() != nil:
			tm.setStatus(task, StatusCanceled, nil)
		default:
			tm.setStatus(task, StatusFailed, err)
			log.WithField("task", name).WithError(err).Error("background task failed")
		}
	}()
	return nil
}

// StartPeriodic runs fn immediately and then at every interval tick
// until the task is stopped. Failures are logged, not fatal.
func (tm *TaskManager) StartPeriodic(name, description string, interval time.Duration, fn TaskFunc) error {
	return tm.Start(name, description, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		run := func() {
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				log.WithField("task", name).WithError(err).Warn("periodic task run failed")
			}
		}
		run()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				run()
			}
		}
	})
}

// Stop cancels a single task.
func (tm *TaskManager) Stop(name string) error {
	tm.mu.RLock()
	task, exists := tm.tasks[name]
	tm.mu.RUnlock()
	if !exists {
		return fmt.Errorf("task %q not found", name)
	}
	task.cancel()
	return nil
}

// StopAll cancels every task.
func (tm *TaskManager) StopAll() {
	tm.cancel()
}

// Wait blocks until every task goroutine has returned.
func (tm *TaskManager) Wait() {
	tm.wg.Wait()
}

// List returns copies of the tracked tasks.
func (tm *TaskManager) List() []Task {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	out := make([]Task, 0, len(tm.tasks))
	for _, t := range tm.tasks {
		out = append(out, *t)
	}
	return out
}

// Stats summarizes task states for the management API.
type Stats struct {
	Total    int `json:"total"`
	Running  int `json:"running"`
	Stopped  int `json:"stopped"`
	Failed   int `json:"failed"`
	Canceled int `json:"canceled"`
}

// Stats counts tasks by status.
func (tm *TaskManager) Stats() Stats {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	st := Stats{Total: len(tm.tasks)}
	for _, t := range tm.tasks {
		switch t.Status {
		case StatusRunning:
			st.Running++
		case StatusStopped:
			st.Stopped++
		case StatusFailed:
			st.Failed++
		case StatusCanceled:
			st.Canceled++
		}
	}
	return st
}

func (tm *TaskManager) setStatus(task *Task, status Status, err error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	task.Status = status
	if err != nil {
		task.Err = err.Error()
	}
}
