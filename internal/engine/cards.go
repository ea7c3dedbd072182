package engine

import (
	"fmt"
	"sort"
)

// Cards 按种类计数的卡牌多重集合（手牌、公开区、加成区都用它表示）
type Cards map[CardKind]int

// NewCards 从种类列表构造集合，每出现一次计一张
func NewCards(kinds ...CardKind) Cards {
	c := make(Cards, len(kinds))
	for _, k := range kinds {
		c[k]++
	}
	return c
}

// Add 增加 n 张
func (c Cards) Add(kind CardKind, n int) {
	if n <= 0 {
		return
	}
	c[kind] += n
}

// Remove 移除 n 张，数量不足时不修改并返回 false
func (c Cards) Remove(kind CardKind, n int) bool {
	if n <= 0 {
		return true
	}
	have := c[kind]
	if have < n {
		return false
	}
	if have == n {
		delete(c, kind)
	} else {
		c[kind] = have - n
	}
	return true
}

// Count 获取某种卡牌的数量
func (c Cards) Count(kind CardKind) int {
	return c[kind]
}

// Total 卡牌总数
func (c Cards) Total() int {
	total := 0
	for _, n := range c {
		if n > 0 {
			total += n
		}
	}
	return total
}

// IsEmpty 是否为空
func (c Cards) IsEmpty() bool {
	return c.Total() == 0
}

// Kinds 按种类升序返回数量大于 0 的种类
// 所有影响结果的遍历都必须走这里，避免 map 随机顺序破坏确定性
func (c Cards) Kinds() []CardKind {
	kinds := make([]CardKind, 0, len(c))
	for k, n := range c {
		if n > 0 {
			kinds = append(kinds, k)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Clone 深拷贝，同时去掉数量为 0 的条目
func (c Cards) Clone() Cards {
	out := make(Cards, len(c))
	for k, n := range c {
		if n > 0 {
			out[k] = n
		}
	}
	return out
}

// Merge 返回两个集合的并集（多重集合相加）
func (c Cards) Merge(other Cards) Cards {
	out := c.Clone()
	for k, n := range other {
		out.Add(k, n)
	}
	return out
}

// Equal 比较两个集合，忽略数量为 0 的条目
func (c Cards) Equal(other Cards) bool {
	a, b := c.Clone(), other.Clone()
	if len(a) != len(b) {
		return false
	}
	for k, n := range a {
		if b[k] != n {
			return false
		}
	}
	return true
}

// validate 检查集合中没有未知种类和负数
func (c Cards) validate() error {
	for k, n := range c {
		if !k.Valid() {
			return fmt.Errorf("unknown card kind %d", int(k))
		}
		if n < 0 {
			return fmt.Errorf("negative count %d for %s", n, k.Name())
		}
	}
	return nil
}
