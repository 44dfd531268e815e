package service

import (
	"sync"

	"aiPlanner/internal/models/task"
)

const DefaultUndoDepth = 10

// UndoStore хранит для каждой задачи ограниченный стек снимков до изменений AI
type UndoStore struct {
	mu     sync.Mutex
	depth  int
	stacks map[string][]*task.Task
}

func NewUndoStore(depth int) *UndoStore {
	if depth <= 0 {
		depth = DefaultUndoDepth
	}
	return &UndoStore{depth: depth, stacks: make(map[string][]*task.Task)}
}

// Push вытесняет самый старый снимок при переполнении
func (u *UndoStore) Push(snapshot *task.Task) {
	u.mu.Lock()
	defer u.mu.Unlock()

	stack := append(u.stacks[snapshot.ID], snapshot.Clone())
	if len(stack) > u.depth {
		stack = stack[len(stack)-u.depth:]
	}
	u.stacks[snapshot.ID] = stack
}

func (u *UndoStore) Peek(taskID string) (*task.Task, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	stack := u.stacks[taskID]
	if len(stack) == 0 {
		return nil, false
	}
	return stack[len(stack)-1].Clone(), true
}

func (u *UndoStore) Pop(taskID string) (*task.Task, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	stack := u.stacks[taskID]
	if len(stack) == 0 {
		return nil, false
	}
	top := stack[len(stack)-1]
	if len(stack) == 1 {
		delete(u.stacks, taskID)
	} else {
		u.stacks[taskID] = stack[:len(stack)-1]
	}
	return top, true
}

func (u *UndoStore) Clear(taskID string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.stacks, taskID)
}

func (u *UndoStore) Len(taskID string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.stacks[taskID])
}
