// Package enrichment ходит во внешнюю языковую модель и проверяет её ответы.
// Повторов, backoff и стриминга нет: любая ошибка возвращается вызывающему как есть.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aiPlanner/internal/models/task"
)

var (
	ErrMissingAPIKey  = errors.New("не задан ключ API модели")
	ErrUpstream       = errors.New("ошибка сервиса модели")
	ErrInvalidPayload = errors.New("ответ модели не прошёл проверку")
)

type Enricher interface {
	ParseText(ctx context.Context, text string, now time.Time) ([]Draft, error)
	Enhance(ctx context.Context, title string) (*Enhancement, error)
	SuggestSchedule(ctx context.Context, t *task.Task, now time.Time) (*Schedule, error)
}

const untitledMeeting = "Namnlöst möte"

// MeetingNotesText оформляет заметки встречи так, чтобы модель вынесла пункты в чеклист
func MeetingNotesText(title, notes string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = untitledMeeting
	}
	return fmt.Sprintf("Mötesanteckningar (Rubrik: %s)\n%s", title, notes)
}
