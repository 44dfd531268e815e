package task

import (
	"encoding/json"
	"fmt"
	"time"
)

// формат хранения совместим со старыми документами: состояние раскладывается
// на независимые флаги isCompleted/isDeleted
type wireTask struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Description       string       `json:"description,omitempty"`
	Type              Type         `json:"type"`
	Deadline          *string      `json:"deadline"`
	EstimatedDuration string       `json:"estimatedDuration,omitempty"`
	IsCompleted       bool         `json:"isCompleted"`
	CompletedAt       *string      `json:"completedAt,omitempty"`
	IsDeleted         bool         `json:"isDeleted"`
	IsFocus           bool         `json:"isFocus"`
	Priority          Priority     `json:"priority"`
	CreatedAt         *string      `json:"createdAt"`
	Tags              []string     `json:"tags"`
	Attachments       []Attachment `json:"attachments"`
	Checklist         []Subtask    `json:"checklist"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	w := wireTask{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Type:              t.Type,
		EstimatedDuration: t.EstimatedDuration,
		IsCompleted:       t.IsCompleted(),
		CompletedAt:       formatTime(t.CompletedAt),
		IsDeleted:         t.IsDeleted(),
		IsFocus:           t.IsFocus,
		Priority:          t.Priority,
		CreatedAt:         formatTime(&t.CreatedAt),
		Deadline:          formatTime(t.Deadline),
		Tags:              t.Tags,
		Attachments:       t.Attachments,
		Checklist:         t.Checklist,
	}
	return json.Marshal(w)
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var w wireTask
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*t = Task{
		ID:                w.ID,
		Title:             w.Title,
		Description:       w.Description,
		Type:              w.Type,
		EstimatedDuration: w.EstimatedDuration,
		State:             StateFromFlags(w.IsCompleted, w.IsDeleted),
		CompletedAt:       parseStoredTime(w.CompletedAt),
		Deadline:          parseStoredTime(w.Deadline),
		IsFocus:           w.IsFocus,
		Priority:          w.Priority,
		Tags:              w.Tags,
		Attachments:       w.Attachments,
		Checklist:         w.Checklist,
	}

	if createdAt := parseStoredTime(w.CreatedAt); createdAt != nil {
		t.CreatedAt = *createdAt
	}
	return nil
}

func formatTime(ts *time.Time) *string {
	if ts == nil {
		return nil
	}
	s := ts.Format(time.RFC3339Nano)
	return &s
}

// parseStoredTime не роняет весь раздел из-за одной нечитаемой даты: такое поле просто пустое
func parseStoredTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	parsed, err := ParseDeadline(*s, time.Local)
	if err != nil {
		return nil
	}
	return &parsed
}

// форматы со смещением или Z
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

// форматы без смещения, трактуются в заданной зоне
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseDeadline разбирает дедлайн в любом из форматов, которые встречались в сохранённых данных.
// Строки без смещения трактуются в loc.
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range zonedLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	for _, layout := range localLayouts {
		if parsed, err := time.ParseInLocation(layout, s, loc); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("неверный формат дедлайна %q", s)
}
