package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"aiPlanner/internal/auth"
	"aiPlanner/internal/config"
	"aiPlanner/internal/enrichment"
	"aiPlanner/internal/models/task"
	"aiPlanner/internal/models/user"
	"aiPlanner/internal/reminder"
	docinmem "aiPlanner/internal/repository/document/inmemory"
	"aiPlanner/internal/repository/identity"
	"aiPlanner/internal/repository/partition"
	sessinmem "aiPlanner/internal/repository/session/inmemory"
	"aiPlanner/internal/service"
	"aiPlanner/internal/timeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEnricher - мок клиента модели
type MockEnricher struct {
	mock.Mock
}

func (m *MockEnricher) ParseText(ctx context.Context, text string, now time.Time) ([]enrichment.Draft, error) {
	args := m.Called(ctx, text, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]enrichment.Draft), args.Error(1)
}

func (m *MockEnricher) Enhance(ctx context.Context, title string) (*enrichment.Enhancement, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrichment.Enhancement), args.Error(1)
}

func (m *MockEnricher) SuggestSchedule(ctx context.Context, t *task.Task, now time.Time) (*enrichment.Schedule, error) {
	args := m.Called(ctx, t, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrichment.Schedule), args.Error(1)
}

var _ enrichment.Enricher = (*MockEnricher)(nil)

// MockIdentityStore - мок хранилища пользователей
type MockIdentityStore struct {
	mock.Mock
}

func (m *MockIdentityStore) Load(ctx context.Context) ([]*user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func (m *MockIdentityStore) Save(ctx context.Context, users []*user.User) error {
	args := m.Called(ctx, users)
	return args.Error(0)
}

func (m *MockIdentityStore) MigrateLegacy(ctx context.Context, adminUsername string) (bool, error) {
	args := m.Called(ctx, adminUsername)
	return args.Bool(0), args.Error(1)
}

var _ service.IdentityStore = (*MockIdentityStore)(nil)

var adminConfig = config.AdminConfig{ID: "owner-mg", Username: "MG", Password: "1121"}

type fixture struct {
	docs       *docinmem.DocumentStorage
	partitions *partition.Store
	sessions   *sessinmem.SessionStorage
	core       *service.Core
	users      *service.UserService
	tasks      *service.TaskService
	enrich     *service.EnrichService
	enricher   *MockEnricher
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		docs:     docinmem.NewDocumentStorage(),
		sessions: sessinmem.NewSessionStorage(),
		enricher: new(MockEnricher),
		now:      time.Now().UTC().Truncate(time.Second),
	}
	f.partitions = partition.New(f.docs)
	f.core = service.NewCore(f.partitions, 3)
	f.core.SetClock(func() time.Time { return f.now })

	tokens, err := auth.NewTokenManager("test-secret", "ai-planner", time.Hour)
	require.NoError(t, err)

	f.users = service.NewUserService(f.core, identity.New(f.docs), f.sessions, tokens, adminConfig)
	f.tasks = service.NewTaskService(f.core,
		timeline.New(12*time.Hour, time.UTC),
		reminder.New(7, 3, time.UTC),
		1024,
	)
	f.enrich = service.NewEnrichService(f.core, f.enricher)

	require.NoError(t, f.users.Load(context.Background()))
	return f
}

func (f *fixture) seed(t *testing.T, username string, tasks ...*task.Task) {
	t.Helper()
	require.NoError(t, f.partitions.Save(context.Background(), username, tasks))
}

func (f *fixture) load(t *testing.T, username string) []*task.Task {
	t.Helper()
	tasks, err := f.partitions.Load(context.Background(), username)
	require.NoError(t, err)
	return tasks
}

func assertBusinessCode(t *testing.T, err error, code string) {
	t.Helper()
	var busErr *service.BusinessError
	require.True(t, errors.As(err, &busErr), "ожидалась BusinessError, получено %v", err)
	assert.Equal(t, code, busErr.Code)
}
