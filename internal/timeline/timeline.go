// Package timeline строит видимый список задач из раздела пользователя.
// Все функции чистые: на вход задачи, фильтр и текущее время.
package timeline

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"aiPlanner/internal/models/task"
)

type Mode string

const (
	ModeActive    Mode = "ACTIVE"
	ModeCompleted Mode = "COMPLETED"
	ModeTrash     Mode = "TRASH"
)

const TypeAll = "ALL"

const DefaultCompletedGrace = 12 * time.Hour

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToUpper(s)) {
	case "", ModeActive:
		return ModeActive, nil
	case ModeCompleted:
		return ModeCompleted, nil
	case ModeTrash:
		return ModeTrash, nil
	default:
		return "", fmt.Errorf("неизвестный режим %q", s)
	}
}

type Filter struct {
	Search string
	Type   string // task.Type или ALL
	Tags   []string
	Date   string // префикс даты дедлайна, обычно YYYY-MM-DD
	Mode   Mode
}

type View struct {
	Focus   []*task.Task `json:"focus"`
	Regular []*task.Task `json:"regular"`
}

type Deriver struct {
	grace time.Duration
	loc   *time.Location
}

func New(grace time.Duration, loc *time.Location) *Deriver {
	if grace <= 0 {
		grace = DefaultCompletedGrace
	}
	if loc == nil {
		loc = time.Local
	}
	return &Deriver{grace: grace, loc: loc}
}

func (d *Deriver) Derive(tasks []*task.Task, f Filter, now time.Time) View {
	if f.Mode == "" {
		f.Mode = ModeActive
	}
	search := strings.ToLower(f.Search)

	filtered := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !matchesSearch(t, search) {
			continue
		}
		if !d.matchesMode(t, f.Mode, now) {
			continue
		}
		if f.Mode == ModeActive && !d.matchesActiveFilters(t, f) {
			continue
		}
		filtered = append(filtered, t)
	}

	slices.SortStableFunc(filtered, compareTasks)

	view := View{Focus: []*task.Task{}, Regular: []*task.Task{}}
	for _, t := range filtered {
		if f.Mode == ModeActive && t.IsFocus {
			view.Focus = append(view.Focus, t)
		} else {
			view.Regular = append(view.Regular, t)
		}
	}
	return view
}

func matchesSearch(t *task.Task, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), search) ||
		strings.Contains(strings.ToLower(t.Description), search)
}

func (d *Deriver) matchesMode(t *task.Task, mode Mode, now time.Time) bool {
	switch mode {
	case ModeActive:
		if t.IsDeleted() {
			return false
		}
		if !t.IsCompleted() {
			return true
		}
		// только что завершённые ещё видны
		return t.CompletedAt != nil && now.Sub(*t.CompletedAt) < d.grace
	case ModeCompleted:
		return !t.IsDeleted() && t.IsCompleted()
	case ModeTrash:
		return t.IsDeleted()
	}
	return false
}

func (d *Deriver) matchesActiveFilters(t *task.Task, f Filter) bool {
	if f.Type != "" && f.Type != TypeAll && string(t.Type) != f.Type {
		return false
	}
	if len(f.Tags) > 0 && !t.HasAnyTag(f.Tags) {
		return false
	}
	if f.Date != "" {
		if t.Deadline == nil {
			return false
		}
		if !strings.HasPrefix(t.Deadline.In(d.loc).Format("2006-01-02T15:04:05"), f.Date) {
			return false
		}
	}
	return true
}

// датированные раньше недатированных, между собой по возрастанию;
// равные даты остаются в исходном порядке
func compareTasks(a, b *task.Task) int {
	switch {
	case a.Deadline != nil && b.Deadline != nil:
		return a.Deadline.Compare(*b.Deadline)
	case a.Deadline != nil:
		return -1
	case b.Deadline != nil:
		return 1
	}
	return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
}
