package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Thiht/transactor"

	"github.com/chetan-code/tasktracker/internal/models"
	"github.com/chetan-code/tasktracker/internal/repository"
)

// TaskStore is the task store, it knows nothing about sessions
type TaskStore interface {
	FindByID(ctx context.Context, id int) (models.Task, error)
	List(ctx context.Context, ownerID int, opts models.ListOptions) ([]models.Task, error)
	Save(ctx context.Context, t models.Task) (models.Task, error)
	Delete(ctx context.Context, id int) error
}

// TaskInput is what the add and edit forms submit. Empty optional fields
// are stored as absent.
type TaskInput struct {
	Title       string `form:"title" validate:"required,max=100"`
	Description string `form:"description"`
	Date        string `form:"date" validate:"omitempty,datetime=2006-01-02"`
	Priority    string `form:"priority" validate:"max=10"`
}

type Tasks struct {
	tasks TaskStore
	tx    transactor.Transactor
	loc   *time.Location
	now   func() time.Time
}

func NewTasks(tasks TaskStore, tx transactor.Transactor, loc *time.Location) *Tasks {
	if loc == nil {
		loc = time.UTC
	}
	return &Tasks{tasks: tasks, tx: tx, loc: loc, now: time.Now}
}

func (s *Tasks) List(ctx context.Context, sess models.Session, opts models.ListOptions) (models.TaskList, error) {
	if !sess.Valid() {
		return models.TaskList{}, ErrUnauthenticated
	}

	tasks, err := s.tasks.List(ctx, sess.UserID, opts)
	if err != nil {
		return models.TaskList{}, err
	}
	return models.TaskList{Tasks: tasks, Stats: models.StatsOf(tasks)}, nil
}

// Create adds a task owned by the session user. An empty title creates
// nothing and returns ErrEmptyTitle.
func (s *Tasks) Create(ctx context.Context, sess models.Session, in TaskInput) (models.Task, error) {
	if !sess.Valid() {
		return models.Task{}, ErrUnauthenticated
	}
	if in.Title == "" {
		return models.Task{}, ErrEmptyTitle
	}

	task := models.Task{
		OwnerID: sess.UserID,
		//wall clock of the configured zone, stored as UTC
		CreatedAt: s.now().In(s.loc).UTC().Truncate(time.Microsecond),
	}
	if err := s.apply(&task, in); err != nil {
		return models.Task{}, err
	}

	task, err := s.tasks.Save(ctx, task)
	if err != nil {
		return models.Task{}, err
	}
	slog.InfoContext(ctx, "task_created", "task_id", task.ID, "user_id", sess.UserID)
	return task, nil
}

// Get returns one of the session user's tasks
func (s *Tasks) Get(ctx context.Context, sess models.Session, id int) (models.Task, error) {
	return s.owned(ctx, sess, id)
}

// Toggle flips the completion flag, calling it twice restores the task
func (s *Tasks) Toggle(ctx context.Context, sess models.Session, id int) (models.Task, error) {
	var task models.Task
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.owned(ctx, sess, id)
		if err != nil {
			return err
		}
		task.Complete = !task.Complete
		task, err = s.tasks.Save(ctx, task)
		return err
	})
	return task, err
}

// Edit overwrites title, description, due date and priority. Fields left
// empty in the input are cleared.
func (s *Tasks) Edit(ctx context.Context, sess models.Session, id int, in TaskInput) (models.Task, error) {
	var task models.Task
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.owned(ctx, sess, id)
		if err != nil {
			return err
		}
		if err := s.apply(&task, in); err != nil {
			return err
		}
		task, err = s.tasks.Save(ctx, task)
		return err
	})
	return task, err
}

func (s *Tasks) Delete(ctx context.Context, sess models.Session, id int) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.owned(ctx, sess, id); err != nil {
			return err
		}
		if err := s.tasks.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("task %d: %w", id, ErrNotFound)
			}
			return err
		}
		slog.InfoContext(ctx, "task_deleted", "task_id", id, "user_id", sess.UserID)
		return nil
	})
}

func (s *Tasks) owned(ctx context.Context, sess models.Session, id int) (models.Task, error) {
	if !sess.Valid() {
		return models.Task{}, ErrUnauthenticated
	}

	task, err := s.tasks.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Task{}, err
	}

	if task.OwnerID != sess.UserID {
		slog.WarnContext(ctx, "task_access_forbidden", "task_id", id, "owner_id", task.OwnerID, "user_id", sess.UserID)
		return models.Task{}, fmt.Errorf("task %d: %w", id, ErrForbidden)
	}
	return task, nil
}

// apply validates in and copies it onto t
func (s *Tasks) apply(t *models.Task, in TaskInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}

	var due time.Time
	if in.Date != "" {
		var err error
		due, err = time.Parse(models.DateLayout, in.Date)
		if err != nil {
			return &ValidationError{Fields: map[string]string{"date": "Not a valid date value."}, err: ErrInvalidDate}
		}
	}

	t.Title = in.Title
	t.Description = in.Description
	t.DueDate = due
	t.Priority = in.Priority
	return nil
}
