package timeline

import (
	"cmp"
	"slices"

	"aiPlanner/internal/models/task"
)

type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// AvailableTags собирает теги открытых задач: чаще встречающиеся первыми, дальше по имени
func AvailableTags(tasks []*task.Task) []TagCount {
	counts := map[string]int{}
	for _, t := range tasks {
		if t.IsDeleted() || t.IsCompleted() {
			continue
		}
		for _, tag := range t.Tags {
			counts[tag]++
		}
	}

	result := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		result = append(result, TagCount{Tag: tag, Count: n})
	}
	slices.SortFunc(result, func(a, b TagCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Tag, b.Tag)
	})
	return result
}

type Stats struct {
	Upcoming  int               `json:"upcoming"`
	Urgent    int               `json:"urgent"`
	Trash     int               `json:"trash"`
	Completed int               `json:"completed"`
	ByType    map[task.Type]int `json:"byType"`
}

func ComputeStats(tasks []*task.Task) Stats {
	stats := Stats{ByType: make(map[task.Type]int, len(task.Types))}
	for _, tp := range task.Types {
		stats.ByType[tp] = 0
	}

	for _, t := range tasks {
		switch {
		case t.IsDeleted():
			stats.Trash++
		case t.IsCompleted():
			stats.Completed++
		default:
			stats.Upcoming++
			stats.ByType[t.Type]++
			if t.Priority == task.PriorityHigh {
				stats.Urgent++
			}
		}
	}
	return stats
}

type TagStats struct {
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Count     int `json:"count"`
}

// ComputeTagStats возвращает nil, если теги не выбраны
func ComputeTagStats(tasks []*task.Task, tags []string) *TagStats {
	if len(tags) == 0 {
		return nil
	}

	stats := &TagStats{Count: len(tags)}
	for _, t := range tasks {
		if t.IsDeleted() || !t.HasAnyTag(tags) {
			continue
		}
		if t.IsCompleted() {
			stats.Completed++
		} else {
			stats.Pending++
		}
	}
	return stats
}
