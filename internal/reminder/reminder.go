// Package reminder раскладывает открытые задачи с дедлайном по корзинам напоминаний.
package reminder

import (
	"slices"
	"time"

	"aiPlanner/internal/models/task"
)

const (
	DefaultOverdueDays  = 7
	DefaultUpcomingDays = 3
)

type Buckets struct {
	Today    []*task.Task `json:"today"`
	Tomorrow []*task.Task `json:"tomorrow"`
	Upcoming []*task.Task `json:"upcoming"`
}

func (b Buckets) Empty() bool {
	return len(b.Today) == 0 && len(b.Tomorrow) == 0 && len(b.Upcoming) == 0
}

type Surfacer struct {
	overdueDays  int
	upcomingDays int
	loc          *time.Location
}

func New(overdueDays, upcomingDays int, loc *time.Location) *Surfacer {
	if loc == nil {
		loc = time.Local
	}
	return &Surfacer{overdueDays: overdueDays, upcomingDays: upcomingDays, loc: loc}
}

func (s *Surfacer) Surface(tasks []*task.Task, now time.Time) Buckets {
	relevant := make([]*task.Task, 0)
	for _, t := range tasks {
		if t.Deadline == nil || t.IsCompleted() || t.IsDeleted() {
			continue
		}
		days := DaysRemaining(*t.Deadline, now, s.loc)
		if days >= -s.overdueDays && days <= s.upcomingDays {
			relevant = append(relevant, t)
		}
	}

	slices.SortStableFunc(relevant, func(a, b *task.Task) int {
		return a.Deadline.Compare(*b.Deadline)
	})

	buckets := Buckets{Today: []*task.Task{}, Tomorrow: []*task.Task{}, Upcoming: []*task.Task{}}
	for _, t := range relevant {
		switch days := DaysRemaining(*t.Deadline, now, s.loc); {
		case days <= 0:
			buckets.Today = append(buckets.Today, t)
		case days == 1:
			buckets.Tomorrow = append(buckets.Tomorrow, t)
		default:
			buckets.Upcoming = append(buckets.Upcoming, t)
		}
	}
	return buckets
}

// DaysRemaining считает разницу в календарных днях в часовом поясе loc
func DaysRemaining(deadline, now time.Time, loc *time.Location) int {
	d := deadline.In(loc)
	n := now.In(loc)
	// полночь в UTC, чтобы переход на летнее время не сдвигал деление
	dm := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	nm := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	return int(dm.Sub(nm).Hours() / 24)
}
