package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aiPlanner/internal/logger"
	"aiPlanner/internal/models/task"
	"aiPlanner/internal/reminder"
	"aiPlanner/internal/timeline"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskService struct {
	core               *Core
	deriver            *timeline.Deriver
	surfacer           *reminder.Surfacer
	maxAttachmentBytes int
}

func NewTaskService(core *Core, deriver *timeline.Deriver, surfacer *reminder.Surfacer, maxAttachmentBytes int) *TaskService {
	return &TaskService{
		core:               core,
		deriver:            deriver,
		surfacer:           surfacer,
		maxAttachmentBytes: maxAttachmentBytes,
	}
}

// TaskInput это редактируемые поля задачи. id, состояние и даты создания/завершения
// через него не меняются
type TaskInput struct {
	Title             string
	Description       string
	Type              task.Type
	Priority          task.Priority
	Deadline          *time.Time
	EstimatedDuration string
	Tags              []string
	IsFocus           bool
	Checklist         []task.Subtask
}

func (in TaskInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return NewValidationError("title", "не может быть пустым")
	}
	if in.Type != "" && !in.Type.Valid() {
		return NewValidationError("type", fmt.Sprintf("неизвестный тип %q", in.Type))
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return NewValidationError("priority", fmt.Sprintf("неизвестный приоритет %q", in.Priority))
	}
	return nil
}

type StatsResult struct {
	timeline.Stats
	Tags *timeline.TagStats `json:"tags,omitempty"`
}

func (s *TaskService) IsBusy(taskID string) bool {
	return s.core.IsBusy(taskID)
}

func (s *TaskService) UndoAvailable(taskID string) int {
	return s.core.UndoAvailable(taskID)
}

func (s *TaskService) List(ctx context.Context, username string) ([]*task.Task, error) {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	return s.core.partitions.Load(ctx, username)
}

func (s *TaskService) View(ctx context.Context, username string, filter timeline.Filter) (timeline.View, error) {
	tasks, err := s.List(ctx, username)
	if err != nil {
		return timeline.View{}, err
	}
	return s.deriver.Derive(tasks, filter, s.core.now()), nil
}

func (s *TaskService) AvailableTags(ctx context.Context, username string) ([]timeline.TagCount, error) {
	tasks, err := s.List(ctx, username)
	if err != nil {
		return nil, err
	}
	return timeline.AvailableTags(tasks), nil
}

func (s *TaskService) Stats(ctx context.Context, username string, tags []string) (*StatsResult, error) {
	tasks, err := s.List(ctx, username)
	if err != nil {
		return nil, err
	}
	return &StatsResult{
		Stats: timeline.ComputeStats(tasks),
		Tags:  timeline.ComputeTagStats(tasks, tags),
	}, nil
}

func (s *TaskService) Reminders(ctx context.Context, username string) (reminder.Buckets, error) {
	tasks, err := s.List(ctx, username)
	if err != nil {
		return reminder.Buckets{}, err
	}
	return s.surfacer.Surface(tasks, s.core.now()), nil
}

func (s *TaskService) Get(ctx context.Context, username, id string) (*task.Task, error) {
	tasks, err := s.List(ctx, username)
	if err != nil {
		return nil, err
	}
	idx := findTask(tasks, id)
	if idx < 0 {
		logger.Info("Service: Задача не найдена", zap.String("target_id", id))
		return nil, NewNotFound(ResourceTask, id)
	}
	return tasks[idx], nil
}

// Create добавляет задачу вручную, новые задачи идут в начало раздела
func (s *TaskService) Create(ctx context.Context, username string, in TaskInput) (*task.Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	tasks, err := s.core.partitions.Load(ctx, username)
	if err != nil {
		return nil, err
	}

	created := task.New(s.core.now(),
		task.WithTitle(strings.TrimSpace(in.Title)),
		task.WithDescription(in.Description),
		task.WithType(in.Type),
		task.WithPriority(in.Priority),
		task.WithDeadline(in.Deadline),
		task.WithEstimatedDuration(in.EstimatedDuration),
		task.WithTags(in.Tags),
		task.WithFocus(in.IsFocus),
	)
	for _, st := range in.Checklist {
		created.Checklist = append(created.Checklist, task.NewSubtask(st.Text))
		created.Checklist[len(created.Checklist)-1].IsCompleted = st.IsCompleted
	}

	tasks = append([]*task.Task{created}, tasks...)
	if err := s.core.partitions.Save(ctx, username, tasks); err != nil {
		return nil, err
	}

	logger.Info("Service: Задача создана", zap.String("username", username), zap.String("task_id", created.ID))
	return created, nil
}

// Replace заменяет редактируемые поля целиком
func (s *TaskService) Replace(ctx context.Context, username, id string, in TaskInput) (*task.Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, username, id, func(t *task.Task) error {
		t.Title = strings.TrimSpace(in.Title)
		t.Description = in.Description
		if in.Type != "" {
			t.Type = in.Type
		}
		if in.Priority != "" {
			t.Priority = in.Priority
		}
		t.Deadline = nil
		if in.Deadline != nil {
			d := *in.Deadline
			t.Deadline = &d
		}
		t.EstimatedDuration = in.EstimatedDuration
		t.Tags = append([]string{}, in.Tags...)
		t.IsFocus = in.IsFocus

		checklist := make([]task.Subtask, 0, len(in.Checklist))
		for _, st := range in.Checklist {
			if st.ID == "" {
				st.ID = uuid.NewString()
			}
			checklist = append(checklist, st)
		}
		t.Checklist = checklist
		return nil
	})
}

// Transition применяет переход жизненного цикла. purge удаляет задачу и возвращает nil
func (s *TaskService) Transition(ctx context.Context, username, id string, tr task.Transition) (*task.Task, error) {
	if tr == task.TransitionPurge {
		return nil, s.purge(ctx, username, id)
	}

	now := s.core.now()
	return s.mutate(ctx, username, id, func(t *task.Task) error {
		return applyTransition(t, tr, now)
	})
}

func (s *TaskService) purge(ctx context.Context, username, id string) error {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	tasks, err := s.core.partitions.Load(ctx, username)
	if err != nil {
		return err
	}
	idx := findTask(tasks, id)
	if idx < 0 {
		return NewNotFound(ResourceTask, id)
	}
	if err := applyTransition(tasks[idx], task.TransitionPurge, s.core.now()); err != nil {
		return err
	}

	tasks = append(tasks[:idx], tasks[idx+1:]...)
	if err := s.core.partitions.Save(ctx, username, tasks); err != nil {
		return err
	}
	s.core.undo.Clear(id)

	logger.Info("Service: Задача удалена навсегда", zap.String("username", username), zap.String("task_id", id))
	return nil
}

// EmptyTrash удаляет навсегда все задачи из корзины
func (s *TaskService) EmptyTrash(ctx context.Context, username string) (int, error) {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	tasks, err := s.core.partitions.Load(ctx, username)
	if err != nil {
		return 0, err
	}

	kept := make([]*task.Task, 0, len(tasks))
	removed := 0
	for _, t := range tasks {
		if t.IsDeleted() {
			s.core.undo.Clear(t.ID)
			removed++
			continue
		}
		kept = append(kept, t)
	}
	if removed == 0 {
		return 0, nil
	}

	if err := s.core.partitions.Save(ctx, username, kept); err != nil {
		return 0, err
	}
	logger.Info("Service: Корзина очищена", zap.String("username", username), zap.Int("removed", removed))
	return removed, nil
}

func (s *TaskService) ToggleFocus(ctx context.Context, username, id string) (*task.Task, error) {
	return s.mutate(ctx, username, id, func(t *task.Task) error {
		t.IsFocus = !t.IsFocus
		return nil
	})
}

func (s *TaskService) AddSubtask(ctx context.Context, username, id, text string) (*task.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewValidationError("text", "не может быть пустым")
	}
	return s.mutate(ctx, username, id, func(t *task.Task) error {
		t.Checklist = append(t.Checklist, task.NewSubtask(text))
		return nil
	})
}

func (s *TaskService) ToggleSubtask(ctx context.Context, username, id, subtaskID string) (*task.Task, error) {
	return s.mutate(ctx, username, id, func(t *task.Task) error {
		idx, ok := t.Subtask(subtaskID)
		if !ok {
			return NewNotFound(ResourceSubtask, subtaskID)
		}
		t.Checklist[idx].IsCompleted = !t.Checklist[idx].IsCompleted
		return nil
	})
}

func (s *TaskService) AddAttachment(ctx context.Context, username, id string, attachment task.Attachment) (*task.Task, error) {
	if strings.TrimSpace(attachment.Name) == "" {
		return nil, NewValidationError("name", "не может быть пустым")
	}
	if attachment.Data == "" {
		return nil, NewValidationError("data", "не может быть пустым")
	}
	if size := attachment.Size(); s.maxAttachmentBytes > 0 && size > s.maxAttachmentBytes {
		return nil, NewBusinessError(CodeAttachmentTooLarge, "Файл слишком большой",
			ToDetail("size", size), ToDetail("max", s.maxAttachmentBytes))
	}

	attachment.ID = uuid.NewString()
	return s.mutate(ctx, username, id, func(t *task.Task) error {
		t.Attachments = append(t.Attachments, attachment)
		return nil
	})
}

func (s *TaskService) RemoveAttachment(ctx context.Context, username, id, attachmentID string) (*task.Task, error) {
	return s.mutate(ctx, username, id, func(t *task.Task) error {
		for i, a := range t.Attachments {
			if a.ID == attachmentID {
				t.Attachments = append(t.Attachments[:i], t.Attachments[i+1:]...)
				return nil
			}
		}
		return NewNotFound(ResourceAttachment, attachmentID)
	})
}

// mutate загружает раздел, меняет одну задачу и сохраняет раздел целиком
func (s *TaskService) mutate(ctx context.Context, username, id string, fn func(*task.Task) error) (*task.Task, error) {
	s.core.mu.Lock()
	defer s.core.mu.Unlock()

	start := time.Now()

	tasks, err := s.core.partitions.Load(ctx, username)
	if err != nil {
		return nil, err
	}
	idx := findTask(tasks, id)
	if idx < 0 {
		logger.Info("Service: Задача не найдена", zap.String("target_id", id))
		return nil, NewNotFound(ResourceTask, id)
	}

	if err := fn(tasks[idx]); err != nil {
		return nil, err
	}
	if err := s.core.partitions.Save(ctx, username, tasks); err != nil {
		return nil, err
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Service: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return tasks[idx], nil
}

func applyTransition(t *task.Task, tr task.Transition, now time.Time) error {
	if err := t.Apply(tr, now); err != nil {
		if errors.Is(err, task.ErrInvalidTransition) {
			return NewBusinessError(CodeInvalidTransition, "Недопустимое действие для задачи",
				ToDetail("state", t.State), ToDetail("transition", tr)).WithErr(err)
		}
		return err
	}
	return nil
}
