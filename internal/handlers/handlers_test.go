package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aiPlanner/internal/handlers"
	"aiPlanner/internal/models/task"
	"aiPlanner/internal/models/user"
	"aiPlanner/internal/reminder"
	"aiPlanner/internal/service"
	"aiPlanner/internal/timeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	anna  = &user.User{ID: "u-anna", Username: "anna", Role: user.RoleUser}
	admin = &user.User{ID: "owner-mg", Username: "MG", Role: user.RoleAdmin}
)

type env struct {
	users  *MockUserService
	tasks  *MockTaskService
	enrich *MockEnrichService
	health *MockHealth
	router http.Handler
}

func newEnv() *env {
	e := &env{
		users:  new(MockUserService),
		tasks:  new(MockTaskService),
		enrich: new(MockEnrichService),
		health: new(MockHealth),
	}
	e.users.On("Resolve", mock.Anything, "anna-token").Return(anna, "sid-anna", nil).Maybe()
	e.users.On("Resolve", mock.Anything, "admin-token").Return(admin, "sid-admin", nil).Maybe()

	e.router = handlers.NewRouter(handlers.RouterConfig{
		Auth:        e.users,
		Users:       e.users,
		Tasks:       e.tasks,
		Enrich:      e.enrich,
		Health:      e.health,
		Sessions:    e.users,
		Location:    time.UTC,
		CORSOrigins: []string{"*"},
	})
	return e
}

func (e *env) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func sampleTask() *task.Task {
	return task.New(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), task.WithTitle("Ring Viktor"), task.WithType(task.TypeCall))
}

// TestHealthHandler_HealthCheck тестирует HealthCheck
func TestHealthHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		storageErr     error
		expectedStatus int
	}{
		{name: "success - healthy", expectedStatus: http.StatusOK},
		{name: "error - storage down", storageErr: errors.New("connection refused"), expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			e.health.On("HealthCheck", mock.Anything).Return(tt.storageErr)

			w := e.do(http.MethodGet, "/health", "", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), "ai-planner")
			e.health.AssertExpectations(t)
		})
	}
}

// TestAuthHandler_Login тестирует вход и напоминания в ответе
func TestAuthHandler_Login(t *testing.T) {
	expires := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		body           string
		contentType    string
		setupMock      func(e *env)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "success - token and reminders",
			body: `{"username":"anna","password":"pw"}`,
			setupMock: func(e *env) {
				e.users.On("Login", mock.Anything, "anna", "pw").Return(&service.LoginResult{
					Token: "jwt", ExpiresAt: expires, SessionID: "sid", User: anna,
				}, nil)
				e.tasks.On("Reminders", mock.Anything, "anna").Return(reminder.Buckets{
					Today:    []*task.Task{sampleTask()},
					Tomorrow: []*task.Task{},
					Upcoming: []*task.Task{},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "error - invalid credentials",
			body: `{"username":"anna","password":"nope"}`,
			setupMock: func(e *env) {
				e.users.On("Login", mock.Anything, "anna", "nope").
					Return(nil, service.NewBusinessError(service.CodeInvalidCredentials, "Неверное имя или пароль"))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   service.CodeInvalidCredentials,
		},
		{
			name:           "error - broken json",
			body:           `{"username":`,
			setupMock:      func(e *env) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - wrong content type",
			body:           `{"username":"anna","password":"pw"}`,
			contentType:    "text/plain",
			setupMock:      func(e *env) {},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			tt.setupMock(e)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			contentType := tt.contentType
			if contentType == "" {
				contentType = "application/json; charset=utf-8"
			}
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			e.router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(t, w)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, body["error"])
			}
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "jwt", body["token"])
				userBody := body["user"].(map[string]any)
				assert.Equal(t, "anna", userBody["username"])
				assert.NotContains(t, userBody, "password")
				reminders := body["reminders"].(map[string]any)
				assert.Len(t, reminders["today"], 1)
			}
			e.users.AssertExpectations(t)
			e.tasks.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_LogoutMe(t *testing.T) {
	e := newEnv()
	e.users.On("Logout", mock.Anything, "sid-anna").Return(nil)

	w := e.do(http.MethodGet, "/auth/me", "anna-token", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anna", decodeBody(t, w)["username"])

	w = e.do(http.MethodPost, "/auth/logout", "anna-token", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	e.users.AssertExpectations(t)
}

func TestRouter_RequiresSession(t *testing.T) {
	e := newEnv()
	e.users.On("Resolve", mock.Anything, "stale").Return(nil, "", service.NewUnauthorized())

	for _, token := range []string{"", "stale"} {
		w := e.do(http.MethodGet, "/tasks", token, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	e.tasks.AssertNotCalled(t, "View", mock.Anything, mock.Anything, mock.Anything)
}

// TestTaskHandler_List тестирует разбор фильтров из строки запроса
func TestTaskHandler_List(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedFilter timeline.Filter
		expectedStatus int
	}{
		{
			name:           "success - defaults",
			query:          "",
			expectedFilter: timeline.Filter{Mode: timeline.ModeActive},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "success - all filters",
			query: "?mode=active&q=viktor&type=CALL&tags=Anna,%20Bravida&date=2026-03-10",
			expectedFilter: timeline.Filter{
				Search: "viktor", Type: "CALL", Tags: []string{"Anna", "Bravida"}, Date: "2026-03-10", Mode: timeline.ModeActive,
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "success - trash",
			query:          "?mode=TRASH",
			expectedFilter: timeline.Filter{Mode: timeline.ModeTrash},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error - unknown mode",
			query:          "?mode=archive",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			if tt.expectedStatus == http.StatusOK {
				e.tasks.On("View", mock.Anything, "anna", tt.expectedFilter).
					Return(timeline.View{Focus: []*task.Task{}, Regular: []*task.Task{sampleTask()}}, nil)
			}

			w := e.do(http.MethodGet, "/tasks"+tt.query, "anna-token", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				body := decodeBody(t, w)
				regular := body["regular"].([]any)
				require.Len(t, regular, 1)
				first := regular[0].(map[string]any)
				assert.Equal(t, "Ring Viktor", first["title"])
				assert.Equal(t, false, first["isBusy"])
				assert.Equal(t, "active", first["state"])
			}
			e.tasks.AssertExpectations(t)
		})
	}
}

// TestTaskHandler_Create тестирует создание задачи
func TestTaskHandler_Create(t *testing.T) {
	created := sampleTask()

	tests := []struct {
		name           string
		body           string
		setupMock      func(m *MockTaskService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "success - with local deadline",
			body: `{"title":"Ring Viktor","type":"CALL","deadline":"2026-03-11T09:30","tags":["Viktor"," ","Viktor"],"checklist":[{"text":"Förbered"},{"text":""}]}`,
			setupMock: func(m *MockTaskService) {
				deadline := time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC)
				m.On("Create", mock.Anything, "anna", mock.MatchedBy(func(in service.TaskInput) bool {
					return in.Title == "Ring Viktor" &&
						in.Type == task.TypeCall &&
						in.Deadline != nil && in.Deadline.Equal(deadline) &&
						len(in.Tags) == 1 &&
						len(in.Checklist) == 1
				})).Return(created, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "success - empty deadline",
			body: `{"title":"Anteckning","type":"NOTE","deadline":""}`,
			setupMock: func(m *MockTaskService) {
				m.On("Create", mock.Anything, "anna", mock.MatchedBy(func(in service.TaskInput) bool {
					return in.Deadline == nil
				})).Return(created, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error - unreadable deadline",
			body:           `{"title":"x","deadline":"nästa vecka"}`,
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   service.CodeValidation,
		},
		{
			name: "error - service validation",
			body: `{"title":""}`,
			setupMock: func(m *MockTaskService) {
				m.On("Create", mock.Anything, "anna", mock.Anything).
					Return(nil, service.NewValidationError("title", "не может быть пустым"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   service.CodeValidation,
		},
		{
			name: "error - storage failure",
			body: `{"title":"x"}`,
			setupMock: func(m *MockTaskService) {
				m.On("Create", mock.Anything, "anna", mock.Anything).Return(nil, errors.New("disk full"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			tt.setupMock(e.tasks)

			w := e.do(http.MethodPost, "/tasks", "anna-token", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(t, w)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, body["error"])
			}
			if w.Code == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "disk full")
			}
			e.tasks.AssertExpectations(t)
		})
	}
}

// TestTaskHandler_Transitions тестирует действия жизненного цикла
func TestTaskHandler_Transitions(t *testing.T) {
	tk := sampleTask()

	tests := []struct {
		name           string
		method         string
		path           string
		setupMock      func(m *MockTaskService)
		expectedStatus int
	}{
		{
			name:   "success - complete",
			method: http.MethodPost,
			path:   "/tasks/" + tk.ID + "/complete",
			setupMock: func(m *MockTaskService) {
				m.On("Transition", mock.Anything, "anna", tk.ID, task.TransitionComplete).Return(tk, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "error - illegal transition",
			method: http.MethodPost,
			path:   "/tasks/" + tk.ID + "/restore",
			setupMock: func(m *MockTaskService) {
				m.On("Transition", mock.Anything, "anna", tk.ID, task.TransitionRestore).
					Return(nil, service.NewBusinessError(service.CodeInvalidTransition, "Недопустимое действие для задачи"))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:   "success - purge",
			method: http.MethodDelete,
			path:   "/tasks/" + tk.ID,
			setupMock: func(m *MockTaskService) {
				m.On("Transition", mock.Anything, "anna", tk.ID, task.TransitionPurge).Return(nil, nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "error - not found",
			method: http.MethodGet,
			path:   "/tasks/missing",
			setupMock: func(m *MockTaskService) {
				m.On("Get", mock.Anything, "anna", "missing").Return(nil, service.NewNotFound(service.ResourceTask, "missing"))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "success - empty trash",
			method: http.MethodDelete,
			path:   "/tasks/trash",
			setupMock: func(m *MockTaskService) {
				m.On("EmptyTrash", mock.Anything, "anna").Return(3, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "success - toggle subtask",
			method: http.MethodPost,
			path:   "/tasks/" + tk.ID + "/checklist/st-1/toggle",
			setupMock: func(m *MockTaskService) {
				m.On("ToggleSubtask", mock.Anything, "anna", tk.ID, "st-1").Return(tk, nil)
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			tt.setupMock(e.tasks)

			w := e.do(tt.method, tt.path, "anna-token", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			e.tasks.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_AttachmentTooLarge(t *testing.T) {
	e := newEnv()
	e.tasks.On("AddAttachment", mock.Anything, "anna", "t1", task.Attachment{Name: "a.png", Type: "image/png", Data: "AAAA"}).
		Return(nil, service.NewBusinessError(service.CodeAttachmentTooLarge, "Файл слишком большой"))

	w := e.do(http.MethodPost, "/tasks/t1/attachments", "anna-token", `{"name":"a.png","type":"image/png","data":"AAAA"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, service.CodeAttachmentTooLarge, decodeBody(t, w)["error"])
}

// TestAIHandler тестирует вызовы модели и их ошибки
func TestAIHandler(t *testing.T) {
	tk := sampleTask()

	tests := []struct {
		name           string
		path           string
		body           string
		setupMock      func(m *MockEnrichService)
		expectedStatus int
	}{
		{
			name: "success - import",
			path: "/ai/import",
			body: `{"text":"Ring Viktor imorgon"}`,
			setupMock: func(m *MockEnrichService) {
				m.On("ImportText", mock.Anything, "anna", "Ring Viktor imorgon").Return([]*task.Task{tk}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "success - meeting notes",
			path: "/ai/meeting-notes",
			body: `{"title":"Veckomöte","notes":"Anna ringer Bravida"}`,
			setupMock: func(m *MockEnrichService) {
				m.On("MeetingNotes", mock.Anything, "anna", "Veckomöte", "Anna ringer Bravida").Return([]*task.Task{tk}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "error - upstream failed",
			path: "/tasks/" + tk.ID + "/ai/enhance",
			setupMock: func(m *MockEnrichService) {
				m.On("Enhance", mock.Anything, "anna", tk.ID).Return(nil, service.NewEnrichmentFailed(errors.New("503")))
			},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name: "error - busy",
			path: "/tasks/" + tk.ID + "/ai/schedule",
			setupMock: func(m *MockEnrichService) {
				m.On("Schedule", mock.Anything, "anna", tk.ID).
					Return(nil, service.NewBusinessError(service.CodeTaskBusy, "Задача уже обрабатывается AI"))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "error - nothing to undo",
			path: "/tasks/" + tk.ID + "/ai/undo",
			setupMock: func(m *MockEnrichService) {
				m.On("Undo", mock.Anything, "anna", tk.ID).
					Return(nil, service.NewBusinessError(service.CodeNothingToUndo, "Нечего отменять"))
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			tt.setupMock(e.enrich)

			w := e.do(http.MethodPost, tt.path, "anna-token", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			e.enrich.AssertExpectations(t)
		})
	}
}

// TestAdminHandler тестирует доступ к управлению пользователями
func TestAdminHandler(t *testing.T) {
	t.Run("error - regular user", func(t *testing.T) {
		e := newEnv()
		w := e.do(http.MethodGet, "/admin/users", "anna-token", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		e.users.AssertNotCalled(t, "ListUsers", mock.Anything)
	})

	t.Run("success - list without passwords", func(t *testing.T) {
		e := newEnv()
		e.users.On("ListUsers", mock.Anything).Return([]*user.User{admin, {ID: "u-anna", Username: "anna", Password: "secret", Role: user.RoleUser}})

		w := e.do(http.MethodGet, "/admin/users", "admin-token", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "secret")
		assert.Contains(t, w.Body.String(), `"username":"anna"`)
	})

	t.Run("success - create", func(t *testing.T) {
		e := newEnv()
		e.users.On("CreateUser", mock.Anything, "bob", "pw").Return(&user.User{ID: "u-bob", Username: "bob", Role: user.RoleUser}, nil)

		w := e.do(http.MethodPost, "/admin/users", "admin-token", `{"username":"bob","password":"pw"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("error - username taken", func(t *testing.T) {
		e := newEnv()
		e.users.On("UpdateUser", mock.Anything, "u-bob", "anna", "pw").Return(nil, service.NewUsernameTaken("anna"))

		w := e.do(http.MethodPut, "/admin/users/u-bob", "admin-token", `{"username":"anna","password":"pw"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("error - self removal", func(t *testing.T) {
		e := newEnv()
		e.users.On("RemoveUser", mock.Anything, "owner-mg", "owner-mg").
			Return(service.NewBusinessError(service.CodeSelfRemoval, "Нельзя удалить себя"))

		w := e.do(http.MethodDelete, "/admin/users/owner-mg", "admin-token", "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, service.CodeSelfRemoval, decodeBody(t, w)["error"])
	})

	t.Run("success - remove", func(t *testing.T) {
		e := newEnv()
		e.users.On("RemoveUser", mock.Anything, "owner-mg", "u-anna").Return(nil)

		w := e.do(http.MethodDelete, "/admin/users/u-anna", "admin-token", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
