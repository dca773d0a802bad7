// Package board manages kanban cards.
package board

import (
	"context"
	"strings"

	"github.com/shopops/backoffice/internal/app/domain/task"
	"github.com/shopops/backoffice/internal/app/storage"
	"github.com/shopops/backoffice/internal/errs"
	"github.com/shopops/backoffice/pkg/logger"
)

// Service coordinates kanban cards.
type Service struct {
	store storage.TaskStore
	log   *logger.Logger
}

// New creates a configured board service.
func New(store storage.TaskStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("board")
	}
	return &Service{store: store, log: log}
}

func validate(t *task.Task) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return errs.Validation("title", "title is required")
	}
	if t.Status == "" {
		t.Status = task.StatusOpen
	}
	if !task.ValidStatus(t.Status) {
		return errs.Validation("status", "unknown status")
	}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	if !task.ValidPriority(t.Priority) {
		return errs.Validation("priority", "unknown priority")
	}

	labels := t.Labels[:0]
	for _, l := range t.Labels {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	t.Labels = labels
	return nil
}

// Create validates and stores a new card.
func (s *Service) Create(ctx context.Context, t task.Task) (task.Task, error) {
	if err := validate(&t); err != nil {
		return task.Task{}, err
	}
	t, err := s.store.CreateTask(ctx, t)
	if err != nil {
		return task.Task{}, err
	}
	s.log.WithField("task_id", t.ID).Info("task created")
	return t, nil
}

// Update replaces a card, including moving it between columns.
func (s *Service) Update(ctx context.Context, t task.Task) (task.Task, error) {
	if err := validate(&t); err != nil {
		return task.Task{}, err
	}
	return s.store.UpdateTask(ctx, t)
}

// Get fetches one card.
func (s *Service) Get(ctx context.Context, id string) (task.Task, error) {
	return s.store.GetTask(ctx, id)
}

// List returns all cards.
func (s *Service) List(ctx context.Context) ([]task.Task, error) {
	return s.store.ListTasks(ctx)
}

// Delete removes a card.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteTask(ctx, id)
}
