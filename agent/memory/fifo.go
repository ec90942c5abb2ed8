package memory

import "sync"

// FIFO 是定长先进先出缓冲区，超出容量时丢弃最旧的元素
type FIFO[T any] struct {
	mu       sync.RWMutex
	capacity int
	items    []T
}

// NewFIFO 创建缓冲区，capacity<=0 时按 1 处理
func NewFIFO[T any](capacity int) *FIFO[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &FIFO[T]{capacity: capacity, items: make([]T, 0, capacity)}
}

// Push 追加元素，返回是否淘汰了最旧的元素
func (f *FIFO[T]) Push(v T) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, v)
	if len(f.items) > f.capacity {
		copy(f.items, f.items[1:])
		f.items = f.items[:f.capacity]
		return true
	}
	return false
}

// Items 按从旧到新返回全部元素的副本
func (f *FIFO[T]) Items() []T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]T(nil), f.items...)
}

// Last 返回最新的 n 个元素（从旧到新），n 超过长度时返回全部
func (f *FIFO[T]) Last(n int) []T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if n <= 0 {
		return nil
	}
	if n > len(f.items) {
		n = len(f.items)
	}
	return append([]T(nil), f.items[len(f.items)-n:]...)
}

// Len 返回当前元素数
func (f *FIFO[T]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items)
}

// Cap 返回容量
func (f *FIFO[T]) Cap() int { return f.capacity }

// Clear 清空缓冲区
func (f *FIFO[T]) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = f.items[:0]
}
