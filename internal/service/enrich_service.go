package service

import (
	"context"
	"strings"

	"aiPlanner/internal/enrichment"
	"aiPlanner/internal/logger"
	"aiPlanner/internal/models/task"

	"go.uber.org/zap"
)

// EnrichService применяет ответы AI к разделу. Во время сетевого вызова
// блокировка отпущена, результат применяется к заново загруженному разделу
type EnrichService struct {
	core     *Core
	enricher enrichment.Enricher
}

func NewEnrichService(core *Core, enricher enrichment.Enricher) *EnrichService {
	return &EnrichService{core: core, enricher: enricher}
}

// ImportText разбирает свободный текст в новые задачи и добавляет их в начало раздела
func (s *EnrichService) ImportText(ctx context.Context, username, text string) ([]*task.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewValidationError("text", "не может быть пустым")
	}

	drafts, err := s.enricher.ParseText(ctx, text, s.core.now())
	if err != nil {
		logger.Error("Service: Ошибка разбора текста AI", err, zap.String("username", username))
		return nil, NewEnrichmentFailed(err)
	}
	if len(drafts) == 0 {
		return []*task.Task{}, nil
	}

	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	tasks, err := s.core.partitions.Load(ctx, username)
	if err != nil {
		return nil, err
	}

	now := s.core.now()
	created := make([]*task.Task, 0, len(drafts))
	for _, d := range drafts {
		created = append(created, d.Task(now))
	}

	tasks = append(append(make([]*task.Task, 0, len(created)+len(tasks)), created...), tasks...)
	if err := s.core.partitions.Save(ctx, username, tasks); err != nil {
		return nil, err
	}

	logger.Info("Service: Задачи созданы из текста", zap.String("username", username), zap.Int("count", len(created)))
	return created, nil
}

func (s *EnrichService) MeetingNotes(ctx context.Context, username, title, notes string) ([]*task.Task, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, NewValidationError("notes", "не может быть пустым")
	}
	return s.ImportText(ctx, username, enrichment.MeetingNotesText(title, notes))
}

// Enhance заменяет описание и дописывает пункты в чеклист
func (s *EnrichService) Enhance(ctx context.Context, username, id string) (*task.Task, error) {
	return s.enrich(ctx, username, id, func(ctx context.Context, snapshot *task.Task) (func(*task.Task), error) {
		e, err := s.enricher.Enhance(ctx, snapshot.Title)
		if err != nil {
			return nil, err
		}
		return func(t *task.Task) {
			t.Description = e.Description
			for _, item := range e.Checklist {
				t.Checklist = append(t.Checklist, task.NewSubtask(item))
			}
		}, nil
	})
}

// Schedule перезаписывает дедлайн и оценку времени
func (s *EnrichService) Schedule(ctx context.Context, username, id string) (*task.Task, error) {
	return s.enrich(ctx, username, id, func(ctx context.Context, snapshot *task.Task) (func(*task.Task), error) {
		sched, err := s.enricher.SuggestSchedule(ctx, snapshot, s.core.now())
		if err != nil {
			return nil, err
		}
		return func(t *task.Task) {
			d := sched.Deadline
			t.Deadline = &d
			t.EstimatedDuration = sched.EstimatedDuration
		}, nil
	})
}

// Undo возвращает содержимое задачи к последнему снимку. Состояние жизненного цикла
// не откатывается, оно меняется только переходами
func (s *EnrichService) Undo(ctx context.Context, username, id string) (*task.Task, error) {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	tasks, err := s.core.partitions.Load(ctx, username)
	if err != nil {
		return nil, err
	}
	idx := findTask(tasks, id)
	if idx < 0 {
		return nil, NewNotFound(ResourceTask, id)
	}

	snapshot, ok := s.core.undo.Peek(id)
	if !ok {
		return nil, NewBusinessError(CodeNothingToUndo, "Нечего отменять", ToDetail("id", id))
	}

	current := tasks[idx]
	snapshot.State = current.State
	snapshot.CompletedAt = current.CompletedAt
	tasks[idx] = snapshot

	if err := s.core.partitions.Save(ctx, username, tasks); err != nil {
		return nil, err
	}
	s.core.undo.Pop(id)

	logger.Info("Service: Изменение AI отменено", zap.String("task_id", id), zap.Int("left", s.core.undo.Len(id)))
	return snapshot, nil
}

type enrichCall func(ctx context.Context, snapshot *task.Task) (func(*task.Task), error)

func (s *EnrichService) enrich(ctx context.Context, username, id string, call enrichCall) (*task.Task, error) {
	s.core.mu.Lock()
	tasks, err := s.core.partitions.Load(ctx, username)
	if err != nil {
		s.core.mu.Unlock()
		return nil, err
	}
	idx := findTask(tasks, id)
	if idx < 0 {
		s.core.mu.Unlock()
		return nil, NewNotFound(ResourceTask, id)
	}
	snapshot := tasks[idx].Clone()
	if !s.core.busy.TryMark(id) {
		s.core.mu.Unlock()
		return nil, NewBusinessError(CodeTaskBusy, "Задача уже обрабатывается AI", ToDetail("id", id))
	}
	s.core.mu.Unlock()

	apply, err := func() (func(*task.Task), error) {
		defer s.core.busy.Unmark(id)
		return call(ctx, snapshot)
	}()
	if err != nil {
		logger.Error("Service: Ошибка AI", err, zap.String("task_id", id))
		return nil, NewEnrichmentFailed(err)
	}

	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	// раздел мог измениться, пока ждали ответ
	tasks, err = s.core.partitions.Load(ctx, username)
	if err != nil {
		return nil, err
	}
	idx = findTask(tasks, id)
	if idx < 0 {
		return nil, NewNotFound(ResourceTask, id)
	}

	before := tasks[idx].Clone()
	apply(tasks[idx])
	if err := s.core.partitions.Save(ctx, username, tasks); err != nil {
		return nil, err
	}
	s.core.undo.Push(before)

	logger.Info("Service: Задача дополнена AI", zap.String("task_id", id))
	return tasks[idx], nil
}
