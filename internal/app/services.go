package app

import (
	"context"
	"fmt"
	"time"

	"aiPlanner/internal/auth"
	"aiPlanner/internal/config"
	"aiPlanner/internal/enrichment"
	"aiPlanner/internal/reminder"
	"aiPlanner/internal/repository/identity"
	"aiPlanner/internal/repository/partition"
	"aiPlanner/internal/service"
	"aiPlanner/internal/timeline"
)

type Services struct {
	Core   *service.Core
	Users  *service.UserService
	Tasks  *service.TaskService
	Enrich *service.EnrichService
}

// NewServices связывает сервисы поверх открытого хранилища и загружает пользователей
func NewServices(ctx context.Context, cfg *config.Config, storage *Storage) (*Services, error) {
	loc := cfg.GetLocation()

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("инициализация токенов: %w", err)
	}

	core := service.NewCore(partition.New(storage.Docs), cfg.Enrichment.UndoDepth)

	s := &Services{
		Core:  core,
		Users: service.NewUserService(core, identity.New(storage.Docs), storage.Sessions, tokens, cfg.Admin),
		Tasks: service.NewTaskService(core,
			timeline.New(cfg.View.CompletedGrace, loc),
			reminder.New(cfg.Reminders.OverdueDays, cfg.Reminders.UpcomingDays, loc),
			cfg.Attachments.MaxBytes,
		),
		Enrich: service.NewEnrichService(core, enrichment.NewGeminiClient(cfg.Enrichment, loc)),
	}

	if err := s.Users.Load(ctx); err != nil {
		return nil, fmt.Errorf("загрузка пользователей: %w", err)
	}
	return s, nil
}

// ApplyLocation делает зону из конфига локальной для всего процесса: дедлайны
// без смещения в сохранённых документах читаются в ней
func ApplyLocation(cfg *config.Config) {
	if loc := cfg.GetLocation(); loc != time.Local {
		time.Local = loc
	}
}
