package task

import (
	"context"
	"log/slog"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// TaskRunner owns a queue and the worker pool consuming it.
type TaskRunner struct {
	queue  *TaskQueue
	pool   *WorkerPool
	logger *slog.Logger
}

// NewTaskRunner creates a new TaskRunner. Failed tasks are logged by the pool.
func NewTaskRunner(config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "task_runner")

	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)

	return &TaskRunner{queue: queue, pool: pool, logger: logger}
}

// SetErrorHandler allows setting a custom error handler function.
// It must be called before Start.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Submit adds a new task to the queue. It fails with ErrQueueFull or
// ErrQueueClosed rather than blocking.
func (r *TaskRunner) Submit(task Task) error {
	return r.queue.Enqueue(task)
}

// Start begins processing tasks.
func (r *TaskRunner) Start() {
	r.pool.Start()
}

// Stop closes the queue to new work and lets the workers finish what is
// already queued. If ctx ends first, running tasks are cancelled.
func (r *TaskRunner) Stop(ctx context.Context) error {
	r.queue.Close()
	err := r.pool.Drain(ctx)
	if err != nil {
		r.logger.Warn("task runner stopped before draining the queue",
			"error", err,
			"dropped", r.queue.Len())
	}
	return err
}

// Pending reports how many tasks wait in the queue.
func (r *TaskRunner) Pending() int {
	return r.queue.Len()
}

// Stats reports finished task counts.
func (r *TaskRunner) Stats() PoolStats {
	return r.pool.Stats()
}
