package task

import (
	"context"
	"log/slog"
	"sync"
)

// WorkerPool 执行到期任务
// Stop 之后不再接收任务，队列中已有的任务仍会执行完
type WorkerPool struct {
	size  int
	queue chan *Task

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewWorkerPool 创建协程池，size <= 0 时取 4
func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = 4
	}
	return &WorkerPool{
		size:   size,
		queue:  make(chan *Task, size*2),
		logger: slog.Default().With("component", "task.WorkerPool"),
	}
}

// Start 启动 worker
func (wp *WorkerPool) Start() {
	wp.wg.Add(wp.size)
	for i := range wp.size {
		go wp.loop(i)
	}
}

func (wp *WorkerPool) loop(id int) {
	defer wp.wg.Done()
	for t := range wp.queue {
		wp.run(id, t)
	}
}

func (wp *WorkerPool) run(workerID int, t *Task) {
	logger := wp.logger.With("worker", workerID, "taskId", t.ID, "gameId", t.Target)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("task panicked", "panic", r)
		}
	}()

	if err := t.Execute(context.Background()); err != nil {
		logger.Error("task failed", "error", err)
	}
}

// Submit 投递任务，队列满时阻塞；已停止返回 false
func (wp *WorkerPool) Submit(t *Task) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		wp.logger.Warn("worker pool stopped, task dropped", "taskId", t.ID)
		return false
	}
	wp.queue <- t
	return true
}

// Stop 关闭队列并等待 worker 退出
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.queue)
	wp.mu.Unlock()

	wp.wg.Wait()
}
