package handlers

import (
	"time"

	"aiPlanner/internal/middleware"
	"aiPlanner/internal/models/task"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	Auth     AuthService
	Users    UserAdminService
	Tasks    TaskService
	Enrich   EnrichService
	Health   HealthChecker
	Sessions middleware.SessionResolver

	Location    *time.Location
	RateLimit   int
	CORSOrigins []string
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	authHandler := NewAuthHandler(cfg.Auth, cfg.Tasks)
	taskHandler := NewTaskHandler(cfg.Tasks, cfg.Location)
	aiHandler := NewAIHandler(cfg.Enrich, cfg.Tasks)
	adminHandler := NewAdminHandler(cfg.Users)
	healthHandler := NewHealthHandler(cfg.Health)

	limiter := middleware.NewRateLimiter(cfg.RateLimit)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// до входа лимит считается по ip
	r.Group(func(r chi.Router) {
		r.Use(limiter.Handler)

		r.Get("/health", healthHandler.HealthCheck)
		r.Post("/auth/login", authHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Sessions))
		r.Use(limiter.Handler)

		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/me", authHandler.Me)
		r.Get("/reminders", authHandler.Reminders)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.List)       // GET /tasks
			r.Post("/", taskHandler.Create)    // POST /tasks
			r.Get("/tags", taskHandler.Tags)   // GET /tasks/tags
			r.Get("/stats", taskHandler.Stats) // GET /tasks/stats
			r.Delete("/trash", taskHandler.EmptyTrash)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.Get)
				r.Put("/", taskHandler.Replace)
				r.Delete("/", taskHandler.Purge)

				r.Post("/complete", taskHandler.Transition(task.TransitionComplete))
				r.Post("/reopen", taskHandler.Transition(task.TransitionReopen))
				r.Post("/trash", taskHandler.Transition(task.TransitionTrash))
				r.Post("/restore", taskHandler.Transition(task.TransitionRestore))
				r.Post("/focus", taskHandler.ToggleFocus)

				r.Post("/checklist", taskHandler.AddSubtask)
				r.Post("/checklist/{subtaskID}/toggle", taskHandler.ToggleSubtask)
				r.Post("/attachments", taskHandler.AddAttachment)
				r.Delete("/attachments/{attachmentID}", taskHandler.RemoveAttachment)

				r.Post("/ai/enhance", aiHandler.Enhance)
				r.Post("/ai/schedule", aiHandler.Schedule)
				r.Post("/ai/undo", aiHandler.Undo)
			})
		})

		r.Route("/ai", func(r chi.Router) {
			r.Post("/import", aiHandler.Import)
			r.Post("/meeting-notes", aiHandler.MeetingNotes)
		})

		r.Route("/admin/users", func(r chi.Router) {
			r.Use(middleware.AdminOnly)

			r.Get("/", adminHandler.ListUsers)
			r.Post("/", adminHandler.CreateUser)
			r.Put("/{id}", adminHandler.UpdateUser)
			r.Delete("/{id}", adminHandler.RemoveUser)
		})
	})

	return r
}

