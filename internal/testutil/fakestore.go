// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"github.com/chetan-code/todoly/internal/models"
	"github.com/chetan-code/todoly/internal/repository"
)

// FakeStore is an in-memory task store that records how often it was hit.
// Mutations are scoped to the owner the same way the SQL store scopes them.
type FakeStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  []models.Task
	calls  int

	// Error injection for testing
	FetchErr  error
	AddErr    error
	UpdateErr error
	DeleteErr error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{nextID: 1}
}

// Calls reports how many store operations have been made.
func (f *FakeStore) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeStore) FetchTasks(ctx context.Context, userID string) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}

	out := []models.Task{}
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *FakeStore) AddTask(ctx context.Context, userID string, text string) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.AddErr != nil {
		return models.Task{}, f.AddErr
	}

	t := models.Task{ID: f.nextID, UserID: userID, Text: text, Active: true}
	f.nextID++
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *FakeStore) SetActive(ctx context.Context, id int64, userID string, active bool) (models.Task, error) {
	return f.update(id, userID, func(t *models.Task) { t.Active = active })
}

func (f *FakeStore) Rename(ctx context.Context, id int64, userID string, text string) (models.Task, error) {
	return f.update(id, userID, func(t *models.Task) { t.Text = text })
}

func (f *FakeStore) DeleteTask(ctx context.Context, id int64, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}

	for i, t := range f.tasks {
		if t.ID == id && t.UserID == userID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *FakeStore) update(id int64, userID string, fn func(*models.Task)) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.UpdateErr != nil {
		return models.Task{}, f.UpdateErr
	}

	for i := range f.tasks {
		if f.tasks[i].ID == id && f.tasks[i].UserID == userID {
			fn(&f.tasks[i])
			return f.tasks[i], nil
		}
	}
	return models.Task{}, repository.ErrNotFound
}
