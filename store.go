package main

import (
	"slices"
	"sync/atomic"
)

// MemoryBudget tracks decoded bytes against a fixed limit.
type MemoryBudget struct {
	total int64
	used  atomic.Int64
}

func NewMemoryBudget(total int64) *MemoryBudget {
	return &MemoryBudget{total: total}
}

// TryAllocate reserves n bytes, failing when the budget would be exceeded.
func (b *MemoryBudget) TryAllocate(n int64) bool {
	if n <= 0 {
		return true
	}
	for {
		used := b.used.Load()
		if used+n > b.total {
			return false
		}
		if b.used.CompareAndSwap(used, used+n) {
			return true
		}
	}
}

// Release returns n bytes to the budget.
func (b *MemoryBudget) Release(n int64) {
	if n <= 0 {
		return
	}
	for {
		used := b.used.Load()
		next := max(used-n, 0)
		if b.used.CompareAndSwap(used, next) {
			return
		}
	}
}

func (b *MemoryBudget) Used() int64  { return b.used.Load() }
func (b *MemoryBudget) Total() int64 { return b.total }

func (b *MemoryBudget) Available() int64 {
	return max(b.total-b.used.Load(), 0)
}

// ImageStore owns one slot per image and keeps their total size within the
// budget. Insert, EvictFar and MakeRoom are called from a single goroutine;
// slots may be read concurrently.
type ImageStore struct {
	slots  []ImageSlot
	budget *MemoryBudget
}

func NewImageStore(count int, budget *MemoryBudget) *ImageStore {
	return &ImageStore{
		slots:  make([]ImageSlot, count),
		budget: budget,
	}
}

func (s *ImageStore) Len() int { return len(s.slots) }

func (s *ImageStore) Budget() *MemoryBudget { return s.budget }

// Slot returns the slot at index, or nil when out of range.
func (s *ImageStore) Slot(index int) *ImageSlot {
	if index < 0 || index >= len(s.slots) {
		return nil
	}
	return &s.slots[index]
}

// Insert upgrades the slot at index with data. It returns false when the
// upgrade was refused or the budget cannot cover the growth.
func (s *ImageStore) Insert(index int, data *ImageData) bool {
	slot := s.Slot(index)
	if slot == nil || data == nil {
		return false
	}

	oldSize := int64(slot.MemoryUsed())
	newSize := int64(data.MemorySize())
	growth := newSize - oldSize

	if growth > 0 && !s.budget.TryAllocate(growth) {
		return false
	}
	if !slot.Upgrade(data) {
		if growth > 0 {
			s.budget.Release(growth)
		}
		return false
	}
	if growth < 0 {
		s.budget.Release(-growth)
	}
	return true
}

// clear empties one slot and returns the freed bytes to the budget.
func (s *ImageStore) clear(index int) int64 {
	old := s.slots[index].Clear()
	freed := int64(old.MemorySize())
	s.budget.Release(freed)
	return freed
}

// EvictFar clears every slot further than keep from current.
func (s *ImageStore) EvictFar(current, keep int) int64 {
	var freed int64
	for i := range s.slots {
		if s.slots[i].IsEmpty() {
			continue
		}
		if circularDistance(i, current, len(s.slots)) > keep {
			freed += s.clear(i)
		}
	}
	if freed > 0 {
		debugLog("Evicted %d bytes beyond distance %d of %d", freed, keep, current)
	}
	return freed
}

// MakeRoom clears slots, furthest from current first, until needed bytes
// are available. The current slot is never cleared.
func (s *ImageStore) MakeRoom(needed int64, current int) int64 {
	if s.budget.Available() >= needed {
		return 0
	}

	var candidates []int
	for i := range s.slots {
		if i != current && !s.slots[i].IsEmpty() {
			candidates = append(candidates, i)
		}
	}
	n := len(s.slots)
	slices.SortStableFunc(candidates, func(a, b int) int {
		return circularDistance(b, current, n) - circularDistance(a, current, n)
	})

	var freed int64
	for _, i := range candidates {
		if s.budget.Available() >= needed {
			break
		}
		freed += s.clear(i)
	}
	if freed > 0 {
		debugLog("Made room: freed %d bytes around %d", freed, current)
	}
	return freed
}

// MemoryUsed returns the bytes currently accounted against the budget.
func (s *ImageStore) MemoryUsed() int64 {
	return s.budget.Used()
}

// circularDistance is the shortest distance between a and b on a ring of n.
func circularDistance(a, b, n int) int {
	if n <= 0 {
		return 0
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	d %= n
	return min(d, n-d)
}
