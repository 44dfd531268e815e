package service

import (
	"context"
	"sync"
	"time"

	"aiPlanner/internal/models/task"
)

type PartitionStore interface {
	Load(ctx context.Context, username string) ([]*task.Task, error)
	Save(ctx context.Context, username string, tasks []*task.Task) error
	Move(ctx context.Context, from, to string) error
	Drop(ctx context.Context, username string) error
}

// Core общее состояние сервисов: одна блокировка на все изменения,
// стеки отмены и множество задач, ждущих ответа AI
type Core struct {
	mu         sync.Mutex
	partitions PartitionStore
	undo       *UndoStore
	busy       *BusySet
	now        func() time.Time
}

func NewCore(partitions PartitionStore, undoDepth int) *Core {
	return &Core{
		partitions: partitions,
		undo:       NewUndoStore(undoDepth),
		busy:       NewBusySet(),
		now:        time.Now,
	}
}

// SetClock подменяет часы, используется в тестах и CLI
func (c *Core) SetClock(now func() time.Time) {
	c.now = now
}

func (c *Core) IsBusy(taskID string) bool {
	return c.busy.Contains(taskID)
}

func (c *Core) UndoAvailable(taskID string) int {
	return c.undo.Len(taskID)
}

func findTask(tasks []*task.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
