package service

import "sync"

type BusySet struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewBusySet() *BusySet {
	return &BusySet{ids: make(map[string]struct{})}
}

// TryMark возвращает false, если задача уже ждёт ответа
func (b *BusySet) TryMark(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.ids[id]; ok {
		return false
	}
	b.ids[id] = struct{}{}
	return true
}

func (b *BusySet) Unmark(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.ids, id)
}

func (b *BusySet) Contains(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.ids[id]
	return ok
}
