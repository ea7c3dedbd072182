package task

import (
	"context"
	"time"
)

// Func 到期执行的函数
type Func func(ctx context.Context, t *Task) error

// Task 挂在时间轮上的延迟任务，同一 ID 再次添加会顶替旧任务
type Task struct {
	ID        string
	Target    string // 对局 id，仅用于日志
	Ticks     int    // 延迟格数，至少为 1
	Fn        Func
	CreatedAt time.Time

	rounds int
	slot   int
}

// NewTask 创建任务
func NewTask(id, target string, ticks int, fn Func) *Task {
	if ticks < 1 {
		ticks = 1
	}
	return &Task{ID: id, Target: target, Ticks: ticks, Fn: fn, CreatedAt: time.Now()}
}

// Execute 执行任务
func (t *Task) Execute(ctx context.Context) error {
	if t.Fn == nil {
		return nil
	}
	return t.Fn(ctx, t)
}
