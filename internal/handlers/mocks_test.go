package handlers_test

import (
	"context"

	"aiPlanner/internal/handlers"
	"aiPlanner/internal/models/task"
	"aiPlanner/internal/models/user"
	"aiPlanner/internal/reminder"
	"aiPlanner/internal/service"
	"aiPlanner/internal/timeline"

	"github.com/stretchr/testify/mock"
)

// MockTaskService - мок сервиса задач
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) IsBusy(taskID string) bool {
	return false
}

func (m *MockTaskService) UndoAvailable(taskID string) int {
	return 0
}

func (m *MockTaskService) View(ctx context.Context, username string, filter timeline.Filter) (timeline.View, error) {
	args := m.Called(ctx, username, filter)
	return args.Get(0).(timeline.View), args.Error(1)
}

func (m *MockTaskService) AvailableTags(ctx context.Context, username string) ([]timeline.TagCount, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]timeline.TagCount), args.Error(1)
}

func (m *MockTaskService) Stats(ctx context.Context, username string, tags []string) (*service.StatsResult, error) {
	args := m.Called(ctx, username, tags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StatsResult), args.Error(1)
}

func (m *MockTaskService) Reminders(ctx context.Context, username string) (reminder.Buckets, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(reminder.Buckets), args.Error(1)
}

func (m *MockTaskService) Get(ctx context.Context, username, id string) (*task.Task, error) {
	return m.taskResult(m.Called(ctx, username, id))
}

func (m *MockTaskService) Create(ctx context.Context, username string, in service.TaskInput) (*task.Task, error) {
	return m.taskResult(m.Called(ctx, username, in))
}

func (m *MockTaskService) Replace(ctx context.Context, username, id string, in service.TaskInput) (*task.Task, error) {
	return m.taskResult(m.Called(ctx, username, id, in))
}

func (m *MockTaskService) Transition(ctx context.Context, username, id string, tr task.Transition) (*task.Task, error) {
	return m.taskResult(m.Called(ctx, username, id, tr))
}

func (m *MockTaskService) EmptyTrash(ctx context.Context, username string) (int, error) {
	args := m.Called(ctx, username)
	return args.Int(0), args.Error(1)
}

func (m *MockTaskService) ToggleFocus(ctx context.Context, username, id string) (*task.Task, error) {
	return m.taskResult(m.Called(ctx, username, id))
}

func (m *MockTaskService) AddSubtask(ctx context.Context, username, id, text string) (*task.Task, error) {
	return m.taskResult(m.Called(ctx, username, id, text))
}

func (m *MockTaskService) ToggleSubtask(ctx context.Context, username, id, subtaskID string) (*task.Task, error) {
	return m.taskResult(m.Called(ctx, username, id, subtaskID))
}

func (m *MockTaskService) AddAttachment(ctx context.Context, username, id string, attachment task.Attachment) (*task.Task, error) {
	return m.taskResult(m.Called(ctx, username, id, attachment))
}

func (m *MockTaskService) RemoveAttachment(ctx context.Context, username, id, attachmentID string) (*task.Task, error) {
	return m.taskResult(m.Called(ctx, username, id, attachmentID))
}

func (m *MockTaskService) taskResult(args mock.Arguments) (*task.Task, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

var _ handlers.TaskService = (*MockTaskService)(nil)

// MockEnrichService - мок AI-сервиса
type MockEnrichService struct {
	mock.Mock
}

func (m *MockEnrichService) ImportText(ctx context.Context, username, text string) ([]*task.Task, error) {
	args := m.Called(ctx, username, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockEnrichService) MeetingNotes(ctx context.Context, username, title, notes string) ([]*task.Task, error) {
	args := m.Called(ctx, username, title, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockEnrichService) Enhance(ctx context.Context, username, id string) (*task.Task, error) {
	args := m.Called(ctx, username, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockEnrichService) Schedule(ctx context.Context, username, id string) (*task.Task, error) {
	args := m.Called(ctx, username, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockEnrichService) Undo(ctx context.Context, username, id string) (*task.Task, error) {
	args := m.Called(ctx, username, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

var _ handlers.EnrichService = (*MockEnrichService)(nil)

// MockUserService - мок входа и управления пользователями
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Login(ctx context.Context, username, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *MockUserService) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockUserService) Resolve(ctx context.Context, token string) (*user.User, string, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*user.User), args.String(1), args.Error(2)
}

func (m *MockUserService) ListUsers(ctx context.Context) []*user.User {
	return m.Called(ctx).Get(0).([]*user.User)
}

func (m *MockUserService) CreateUser(ctx context.Context, username, password string) (*user.User, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, id, username, password string) (*user.User, error) {
	args := m.Called(ctx, id, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserService) RemoveUser(ctx context.Context, actorID, id string) error {
	return m.Called(ctx, actorID, id).Error(0)
}

var (
	_ handlers.AuthService      = (*MockUserService)(nil)
	_ handlers.UserAdminService = (*MockUserService)(nil)
)

type MockHealth struct {
	mock.Mock
}

func (m *MockHealth) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
