package dto

import (
	"strings"
	"time"

	"aiPlanner/internal/models/task"
	"aiPlanner/internal/models/user"
	"aiPlanner/internal/reminder"
	"aiPlanner/internal/service"
	"aiPlanner/internal/timeline"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SubtaskRequest struct {
	ID          string `json:"id,omitempty"`
	Text        string `json:"text"`
	IsCompleted bool   `json:"isCompleted"`
}

type TaskRequest struct {
	Title             string           `json:"title"`
	Description       string           `json:"description"`
	Type              task.Type        `json:"type"`
	Priority          task.Priority    `json:"priority"`
	Deadline          *string          `json:"deadline"`
	EstimatedDuration string           `json:"estimatedDuration"`
	Tags              []string         `json:"tags"`
	IsFocus           bool             `json:"isFocus"`
	Checklist         []SubtaskRequest `json:"checklist"`
}

// ToInput переводит запрос во вход сервиса; пустой дедлайн значит "без даты"
func (r TaskRequest) ToInput(loc *time.Location) (service.TaskInput, error) {
	in := service.TaskInput{
		Title:             r.Title,
		Description:       r.Description,
		Type:              r.Type,
		Priority:          r.Priority,
		EstimatedDuration: r.EstimatedDuration,
		Tags:              cleanTags(r.Tags),
		IsFocus:           r.IsFocus,
	}

	if r.Deadline != nil && strings.TrimSpace(*r.Deadline) != "" {
		deadline, err := task.ParseDeadline(strings.TrimSpace(*r.Deadline), loc)
		if err != nil {
			return service.TaskInput{}, service.NewValidationError("deadline", err.Error())
		}
		in.Deadline = &deadline
	}

	for _, st := range r.Checklist {
		text := strings.TrimSpace(st.Text)
		if text == "" {
			continue
		}
		in.Checklist = append(in.Checklist, task.Subtask{ID: st.ID, Text: text, IsCompleted: st.IsCompleted})
	}
	return in, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

type SubtaskTextRequest struct {
	Text string `json:"text"`
}

type AttachmentRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

func (r AttachmentRequest) ToAttachment() task.Attachment {
	return task.Attachment{Name: r.Name, Type: r.Type, Data: r.Data}
}

type ImportRequest struct {
	Text string `json:"text"`
}

type MeetingNotesRequest struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
}

type UserResponse struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Role     user.Role `json:"role"`
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Role: u.Role}
}

func FromUserList(users []*user.User) []UserResponse {
	result := make([]UserResponse, len(users))
	for i, u := range users {
		result[i] = FromUser(u)
	}
	return result
}

// TaskStatus отдаёт состояние задачи, которое живёт только в памяти процесса
type TaskStatus interface {
	IsBusy(taskID string) bool
	UndoAvailable(taskID string) int
}

type TaskResponse struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Type              task.Type         `json:"type"`
	Deadline          *time.Time        `json:"deadline"`
	EstimatedDuration string            `json:"estimatedDuration,omitempty"`
	State             task.State        `json:"state"`
	IsCompleted       bool              `json:"isCompleted"`
	CompletedAt       *time.Time        `json:"completedAt,omitempty"`
	IsDeleted         bool              `json:"isDeleted"`
	IsFocus           bool              `json:"isFocus"`
	Priority          task.Priority     `json:"priority"`
	CreatedAt         time.Time         `json:"createdAt"`
	Tags              []string          `json:"tags"`
	Attachments       []task.Attachment `json:"attachments"`
	Checklist         []task.Subtask    `json:"checklist"`
	IsBusy            bool              `json:"isBusy"`
	UndoAvailable     int               `json:"undoAvailable"`
}

func FromTask(t *task.Task, status TaskStatus) TaskResponse {
	resp := TaskResponse{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Type:              t.Type,
		Deadline:          t.Deadline,
		EstimatedDuration: t.EstimatedDuration,
		State:             t.State,
		IsCompleted:       t.IsCompleted(),
		CompletedAt:       t.CompletedAt,
		IsDeleted:         t.IsDeleted(),
		IsFocus:           t.IsFocus,
		Priority:          t.Priority,
		CreatedAt:         t.CreatedAt,
		Tags:              nonNil(t.Tags),
		Attachments:       nonNil(t.Attachments),
		Checklist:         nonNil(t.Checklist),
	}
	if status != nil {
		resp.IsBusy = status.IsBusy(t.ID)
		resp.UndoAvailable = status.UndoAvailable(t.ID)
	}
	return resp
}

func FromTaskList(tasks []*task.Task, status TaskStatus) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, status)
	}
	return result
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

type ViewResponse struct {
	Focus   []TaskResponse `json:"focus"`
	Regular []TaskResponse `json:"regular"`
}

func FromView(v timeline.View, status TaskStatus) ViewResponse {
	return ViewResponse{
		Focus:   FromTaskList(v.Focus, status),
		Regular: FromTaskList(v.Regular, status),
	}
}

type RemindersResponse struct {
	Today    []TaskResponse `json:"today"`
	Tomorrow []TaskResponse `json:"tomorrow"`
	Upcoming []TaskResponse `json:"upcoming"`
}

func FromBuckets(b reminder.Buckets, status TaskStatus) RemindersResponse {
	return RemindersResponse{
		Today:    FromTaskList(b.Today, status),
		Tomorrow: FromTaskList(b.Tomorrow, status),
		Upcoming: FromTaskList(b.Upcoming, status),
	}
}

type LoginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	User      UserResponse      `json:"user"`
	Reminders RemindersResponse `json:"reminders"`
}

type StatsResponse struct {
	Upcoming  int                `json:"upcoming"`
	Urgent    int                `json:"urgent"`
	Trash     int                `json:"trash"`
	Completed int                `json:"completed"`
	ByType    map[task.Type]int  `json:"byType"`
	Tags      *timeline.TagStats `json:"tags,omitempty"`
}

func FromStats(s *service.StatsResult) StatsResponse {
	return StatsResponse{
		Upcoming:  s.Upcoming,
		Urgent:    s.Urgent,
		Trash:     s.Trash,
		Completed: s.Completed,
		ByType:    s.ByType,
		Tags:      s.Tags,
	}
}
