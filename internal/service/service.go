// Package service holds the five task operations. Each one checks the
// caller's session once and then makes at most one store call.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/chetan-code/todoly/internal/models"
)

// MaxTaskLength is the longest task text accepted, in runes.
const MaxTaskLength = 500

var (
	ErrUnauthenticated = errors.New("not signed in")
	ErrEmptyTask       = errors.New("task text is empty")
	ErrTaskTooLong     = errors.New("task text is too long")
)

// Store is the persistence capability the service forwards to.
// Mutations are addressed by id and scoped to the owning user.
type Store interface {
	FetchTasks(ctx context.Context, userID string) ([]models.Task, error)
	AddTask(ctx context.Context, userID string, text string) (models.Task, error)
	SetActive(ctx context.Context, id int64, userID string, active bool) (models.Task, error)
	Rename(ctx context.Context, id int64, userID string, text string) (models.Task, error)
	DeleteTask(ctx context.Context, id int64, userID string) error
}

type TaskService struct {
	store Store
}

func NewTaskService(store Store) *TaskService {
	return &TaskService{store: store}
}

// List returns every task owned by the session user.
func (s *TaskService) List(ctx context.Context, sess models.Session) ([]models.Task, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthenticated
	}
	return s.store.FetchTasks(ctx, sess.UserID)
}

// Create adds an active task owned by the session user.
func (s *TaskService) Create(ctx context.Context, sess models.Session, text string) (Result, error) {
	if !sess.Authenticated() {
		return Result{}, ErrUnauthenticated
	}
	text, err := cleanText(text)
	if err != nil {
		return Result{}, err
	}

	task, err := s.store.AddTask(ctx, sess.UserID, text)
	if err != nil {
		return Result{}, err
	}
	slog.Debug("task_created", "user_id", sess.UserID, "task_id", task.ID)
	return Result{Op: OpCreate, Task: task}, nil
}

// SetActive marks a task pending (true) or completed (false).
func (s *TaskService) SetActive(ctx context.Context, sess models.Session, id int64, active bool) (Result, error) {
	if !sess.Authenticated() {
		return Result{}, ErrUnauthenticated
	}

	task, err := s.store.SetActive(ctx, id, sess.UserID, active)
	if err != nil {
		return Result{}, err
	}
	return Result{Op: OpSetActive, Task: task}, nil
}

// Rename replaces the text of a task; the active flag is untouched.
func (s *TaskService) Rename(ctx context.Context, sess models.Session, id int64, text string) (Result, error) {
	if !sess.Authenticated() {
		return Result{}, ErrUnauthenticated
	}
	text, err := cleanText(text)
	if err != nil {
		return Result{}, err
	}

	task, err := s.store.Rename(ctx, id, sess.UserID, text)
	if err != nil {
		return Result{}, err
	}
	return Result{Op: OpRename, Task: task}, nil
}

// Delete removes a task for good. Deleting an id twice yields the store's
// not-found error.
func (s *TaskService) Delete(ctx context.Context, sess models.Session, id int64) (Result, error) {
	if !sess.Authenticated() {
		return Result{}, ErrUnauthenticated
	}

	if err := s.store.DeleteTask(ctx, id, sess.UserID); err != nil {
		return Result{}, err
	}
	slog.Debug("task_deleted", "user_id", sess.UserID, "task_id", id)
	return Result{Op: OpDelete, DeletedID: id}, nil
}

func cleanText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyTask
	}
	if utf8.RuneCountInString(text) > MaxTaskLength {
		return "", ErrTaskTooLong
	}
	return text, nil
}
