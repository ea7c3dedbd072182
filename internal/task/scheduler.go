package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrNotRunning     = errors.New("scheduler is not running")
	ErrAlreadyRunning = errors.New("scheduler is already running")
	ErrInvalidTask    = errors.New("task must have an id")
)

// Scheduler 时间轮 + 协程池
// 用于回合超时：每个对局同时只有一个回合任务，回合结束即取消
type Scheduler struct {
	wheel      *TimeWheel
	workerPool *WorkerPool
	interval   time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
	running    bool
	runningMu  sync.RWMutex
}

// NewScheduler 创建调度器，interval 为每格的时长
func NewScheduler(workerCount int, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		wheel:      NewTimeWheel(),
		workerPool: NewWorkerPool(workerCount),
		interval:   interval,
		ctx:        ctx,
		cancel:     cancel,
		logger:     slog.Default().With("component", "task.Scheduler"),
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.running = true

	s.workerPool.Start()
	s.wg.Add(1)
	go s.tickLoop()

	s.logger.Info("任务调度器已启动", "interval", s.interval)
	return nil
}

func (s *Scheduler) tickLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			for _, t := range s.wheel.Tick() {
				s.workerPool.Submit(t)
			}
		}
	}
}

// Stop 停止调度器，未到期的任务被丢弃
func (s *Scheduler) Stop() {
	s.runningMu.Lock()
	if !s.running {
		s.runningMu.Unlock()
		return
	}
	s.running = false
	s.runningMu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.workerPool.Stop()
	s.logger.Info("任务调度器已停止", "pending", s.wheel.Len())
}

// Add 添加任务
func (s *Scheduler) Add(t *Task) error {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()
	if !s.running {
		return ErrNotRunning
	}
	if t == nil || t.ID == "" {
		return ErrInvalidTask
	}
	s.wheel.Add(t)
	return nil
}

// AfterFunc 在 d 之后执行 fn，不足一格按一格计
func (s *Scheduler) AfterFunc(id, target string, d time.Duration, fn Func) error {
	ticks := int((d + s.interval - 1) / s.interval)
	return s.Add(NewTask(id, target, ticks, fn))
}

// Cancel 取消任务
func (s *Scheduler) Cancel(id string) bool {
	return s.wheel.Remove(id)
}

// IsRunning 是否运行中
func (s *Scheduler) IsRunning() bool {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()
	return s.running
}
