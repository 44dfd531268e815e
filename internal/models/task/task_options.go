package task

import (
	"time"

	"github.com/google/uuid"
)

type TaskOption func(*Task)

// New создаёт активную задачу со свежим id; nil-опции пропускаются
func New(now time.Time, options ...TaskOption) *Task {
	t := &Task{
		ID:          uuid.NewString(),
		Type:        TypeTodo,
		Priority:    PriorityMedium,
		State:       StateActive,
		CreatedAt:   now,
		Tags:        []string{},
		Attachments: []Attachment{},
		Checklist:   []Subtask{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

func NewSubtask(text string) Subtask {
	return Subtask{
		ID:   uuid.NewString(),
		Text: text,
	}
}

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	if description == "" {
		return nil
	}
	return func(task *Task) {
		task.Description = description
	}
}

func WithType(taskType Type) TaskOption {
	if taskType == "" {
		return nil
	}
	return func(task *Task) {
		task.Type = taskType
	}
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

func WithDeadline(deadline *time.Time) TaskOption {
	if deadline == nil || deadline.IsZero() {
		return nil
	}
	return func(task *Task) {
		d := *deadline
		task.Deadline = &d
	}
}

func WithEstimatedDuration(duration string) TaskOption {
	if duration == "" {
		return nil
	}
	return func(task *Task) {
		task.EstimatedDuration = duration
	}
}

func WithTags(tags []string) TaskOption {
	if len(tags) == 0 {
		return nil
	}
	return func(task *Task) {
		task.Tags = append([]string{}, tags...)
	}
}

func WithChecklist(items []string) TaskOption {
	if len(items) == 0 {
		return nil
	}
	return func(task *Task) {
		for _, item := range items {
			task.Checklist = append(task.Checklist, NewSubtask(item))
		}
	}
}

func WithFocus(focus bool) TaskOption {
	return func(task *Task) {
		task.IsFocus = focus
	}
}
