package handlers

import (
	"context"

	"aiPlanner/internal/models/task"
	"aiPlanner/internal/models/user"
	"aiPlanner/internal/reminder"
	"aiPlanner/internal/service"
	"aiPlanner/internal/timeline"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*service.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

type TaskService interface {
	IsBusy(taskID string) bool
	UndoAvailable(taskID string) int

	View(ctx context.Context, username string, filter timeline.Filter) (timeline.View, error)
	AvailableTags(ctx context.Context, username string) ([]timeline.TagCount, error)
	Stats(ctx context.Context, username string, tags []string) (*service.StatsResult, error)
	Reminders(ctx context.Context, username string) (reminder.Buckets, error)
	Get(ctx context.Context, username, id string) (*task.Task, error)

	Create(ctx context.Context, username string, in service.TaskInput) (*task.Task, error)
	Replace(ctx context.Context, username, id string, in service.TaskInput) (*task.Task, error)
	Transition(ctx context.Context, username, id string, tr task.Transition) (*task.Task, error)
	EmptyTrash(ctx context.Context, username string) (int, error)
	ToggleFocus(ctx context.Context, username, id string) (*task.Task, error)
	AddSubtask(ctx context.Context, username, id, text string) (*task.Task, error)
	ToggleSubtask(ctx context.Context, username, id, subtaskID string) (*task.Task, error)
	AddAttachment(ctx context.Context, username, id string, attachment task.Attachment) (*task.Task, error)
	RemoveAttachment(ctx context.Context, username, id, attachmentID string) (*task.Task, error)
}

type EnrichService interface {
	ImportText(ctx context.Context, username, text string) ([]*task.Task, error)
	MeetingNotes(ctx context.Context, username, title, notes string) ([]*task.Task, error)
	Enhance(ctx context.Context, username, id string) (*task.Task, error)
	Schedule(ctx context.Context, username, id string) (*task.Task, error)
	Undo(ctx context.Context, username, id string) (*task.Task, error)
}

type UserAdminService interface {
	ListUsers(ctx context.Context) []*user.User
	CreateUser(ctx context.Context, username, password string) (*user.User, error)
	UpdateUser(ctx context.Context, id, username, password string) (*user.User, error)
	RemoveUser(ctx context.Context, actorID, id string) error
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

var (
	_ AuthService      = (*service.UserService)(nil)
	_ UserAdminService = (*service.UserService)(nil)
	_ TaskService      = (*service.TaskService)(nil)
	_ EnrichService    = (*service.EnrichService)(nil)
)
