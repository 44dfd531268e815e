package worker

import (
	"context"
	"fmt"
	"time"

	"aiPlanner/internal/logger"
	repo "aiPlanner/internal/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultSweepSchedule = "@every 1m"

// SessionSweeper периодически удаляет истёкшие сессии. Нужен хранилищам без своего TTL
type SessionSweeper struct {
	sessions repo.SessionStore
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	now      func() time.Time
}

func NewSessionSweeper(sessions repo.SessionStore, schedule string) *SessionSweeper {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &SessionSweeper{
		sessions: sessions,
		schedule: schedule,
		timeout:  30 * time.Second,
		cron:     cron.New(),
		now:      time.Now,
	}
}

// Start блокируется до отмены ctx
func (w *SessionSweeper) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(w.schedule, func() {
		sweepCtx, cancel := context.WithTimeout(ctx, w.timeout)
		defer cancel()
		w.Sweep(sweepCtx)
	})
	if err != nil {
		return fmt.Errorf("неверное расписание %q: %w", w.schedule, err)
	}

	w.cron.Start()
	logger.Info("Worker: Очистка сессий запущена", zap.String("schedule", w.schedule))

	<-ctx.Done()

	stopCtx := w.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(w.timeout):
	}
	logger.Info("Worker: Очистка сессий остановлена")
	return nil
}

func (w *SessionSweeper) Sweep(ctx context.Context) int {
	start := time.Now()

	removed, err := w.sessions.Sweep(ctx, w.now())
	if err != nil {
		logger.Warn("Worker: Ошибка очистки сессий", zap.Error(err))
		return 0
	}

	if removed > 0 {
		logger.Info("Worker: Истёкшие сессии удалены",
			zap.Int("removed", removed),
			zap.Duration("ms", time.Since(start)),
		)
	}
	return removed
}
