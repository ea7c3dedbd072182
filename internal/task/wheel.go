package task

import "sync"

// SlotCount 时间轮槽位数量
const SlotCount = 60

// TimeWheel 单层时间轮
// 超过一圈的任务记录剩余圈数；按任务 ID 建索引，取消时不需要知道延迟
type TimeWheel struct {
	mu      sync.Mutex
	slots   [SlotCount]map[string]*Task
	index   map[string]*Task
	current int
}

// NewTimeWheel 创建时间轮
func NewTimeWheel() *TimeWheel {
	tw := &TimeWheel{index: make(map[string]*Task)}
	for i := range tw.slots {
		tw.slots[i] = make(map[string]*Task)
	}
	return tw
}

// Add 添加任务，同 ID 的旧任务被替换
func (tw *TimeWheel) Add(t *Task) {
	ticks := t.Ticks
	if ticks < 1 {
		ticks = 1
	}

	tw.mu.Lock()
	defer tw.mu.Unlock()

	tw.removeLocked(t.ID)

	t.rounds = (ticks - 1) / SlotCount
	t.slot = (tw.current + ticks) % SlotCount
	tw.slots[t.slot][t.ID] = t
	tw.index[t.ID] = t
}

// Remove 取消任务
func (tw *TimeWheel) Remove(id string) bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.removeLocked(id)
}

func (tw *TimeWheel) removeLocked(id string) bool {
	t, ok := tw.index[id]
	if !ok {
		return false
	}
	delete(tw.slots[t.slot], id)
	delete(tw.index, id)
	return true
}

// Tick 推进一格，返回到期任务
func (tw *TimeWheel) Tick() []*Task {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	tw.current = (tw.current + 1) % SlotCount
	slot := tw.slots[tw.current]
	if len(slot) == 0 {
		return nil
	}

	var due []*Task
	for id, t := range slot {
		if t.rounds > 0 {
			t.rounds--
			continue
		}
		due = append(due, t)
		delete(slot, id)
		delete(tw.index, id)
	}
	return due
}

// Len 待执行任务总数
func (tw *TimeWheel) Len() int {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return len(tw.index)
}

// Current 当前槽位
func (tw *TimeWheel) Current() int {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.current
}
