package task

import (
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

type Type string
type Priority string

const (
	TypeTodo    Type = "TODO"
	TypeCall    Type = "CALL"
	TypeMeeting Type = "MEETING"
	TypeEmail   Type = "EMAIL"
	TypeNote    Type = "NOTE"
)

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

var Types = []Type{TypeTodo, TypeCall, TypeMeeting, TypeEmail, TypeNote}
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (t Type) Valid() bool {
	return slices.Contains(Types, t)
}

func (p Priority) Valid() bool {
	return slices.Contains(Priorities, p)
}

// Rank: HIGH < MEDIUM < LOW, неизвестный приоритет идёт последним
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

type Subtask struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IsCompleted bool   `json:"isCompleted"`
}

type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // MIME
	Data string `json:"data"` // data URL или чистый base64
}

// Size возвращает размер содержимого после декодирования base64
func (a Attachment) Size() int {
	payload := a.Data
	if strings.HasPrefix(payload, "data:") {
		if idx := strings.Index(payload, ","); idx >= 0 {
			payload = payload[idx+1:]
		}
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return len(payload)
	}
	return len(decoded)
}

type Task struct {
	ID                string
	Title             string
	Description       string
	Type              Type
	Deadline          *time.Time
	EstimatedDuration string
	State             State
	CompletedAt       *time.Time
	IsFocus           bool
	Priority          Priority
	CreatedAt         time.Time
	Tags              []string
	Attachments       []Attachment
	Checklist         []Subtask
}

func (t *Task) IsCompleted() bool {
	return t.State == StateCompleted || t.State == StateTrashedCompleted
}

func (t *Task) IsDeleted() bool {
	return t.State == StateTrashed || t.State == StateTrashedCompleted
}

func (t *Task) HasAnyTag(tags []string) bool {
	for _, tag := range t.Tags {
		if slices.Contains(tags, tag) {
			return true
		}
	}
	return false
}

// Clone делает глубокую копию, чтобы снимки для отмены не менялись вместе с задачей
func (t *Task) Clone() *Task {
	c := *t
	if t.Deadline != nil {
		d := *t.Deadline
		c.Deadline = &d
	}
	if t.CompletedAt != nil {
		d := *t.CompletedAt
		c.CompletedAt = &d
	}
	c.Tags = slices.Clone(t.Tags)
	c.Attachments = slices.Clone(t.Attachments)
	c.Checklist = slices.Clone(t.Checklist)
	return &c
}

func (t *Task) Subtask(id string) (int, bool) {
	for i := range t.Checklist {
		if t.Checklist[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

var ErrInvalidTransition = errors.New("недопустимый переход состояния")

// Apply переводит задачу в новое состояние по таблице переходов
func (t *Task) Apply(tr Transition, now time.Time) error {
	next, ok := transitions[t.State][tr]
	if !ok {
		return fmt.Errorf("%w: %s из %s", ErrInvalidTransition, tr, t.State)
	}

	switch tr {
	case TransitionComplete:
		completedAt := now
		t.CompletedAt = &completedAt
	case TransitionReopen:
		t.CompletedAt = nil
	}

	if next != StateRemoved {
		t.State = next
	}
	return nil
}
