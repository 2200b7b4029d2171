package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/chetan-code/todoly/internal/repository"
)

func newSQLService(t *testing.T) *TaskService {
	t.Helper()

	db, dialect, err := repository.Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "svc.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo, err := repository.NewTodoRepo(db, dialect)
	if err != nil {
		t.Fatalf("NewTodoRepo failed: %v", err)
	}
	return NewTaskService(repo)
}

func TestSQLStoreScenario(t *testing.T) {
	svc := newSQLService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, userA, "a")
	if err != nil {
		t.Fatalf("Create a failed: %v", err)
	}
	if _, err := svc.Create(ctx, userB, "b"); err != nil {
		t.Fatalf("Create b failed: %v", err)
	}

	listA, err := svc.List(ctx, userA)
	if err != nil {
		t.Fatalf("List A failed: %v", err)
	}
	if len(listA) != 1 || listA[0].Text != "a" || listA[0].UserID != userA.UserID || !listA[0].Active {
		t.Fatalf("List A = %+v", listA)
	}

	id := a.Task.ID
	if _, err := svc.SetActive(ctx, userA, id, false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	res, err := svc.SetActive(ctx, userA, id, true)
	if err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	if !res.Task.Active || res.Task.Text != "a" {
		t.Fatalf("round trip = %+v", res.Task)
	}

	res, err = svc.Rename(ctx, userA, id, "new text")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if res.Task.Text != "new text" || !res.Task.Active || res.Task.UserID != userA.UserID {
		t.Fatalf("Rename = %+v", res.Task)
	}

	if _, err := svc.Delete(ctx, userB, id); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Delete by B error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Delete(ctx, userA, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Delete(ctx, userA, id); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second Delete error = %v, want ErrNotFound", err)
	}

	listA, err = svc.List(ctx, userA)
	if err != nil {
		t.Fatalf("List A failed: %v", err)
	}
	if len(listA) != 0 {
		t.Fatalf("List A after delete = %+v", listA)
	}
}
