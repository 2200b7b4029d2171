package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

// newTestRepo opens a sqlite database in a temp dir.
func newTestRepo(t *testing.T) *TodoRepo {
	t.Helper()

	dburl := "sqlite://" + filepath.Join(t.TempDir(), "todos.db")
	db, dialect, err := Open(context.Background(), dburl)
	if err != nil {
		t.Fatalf("Open(%q) failed: %v", dburl, err)
	}
	t.Cleanup(func() { db.Close() })

	repo, err := NewTodoRepo(db, dialect)
	if err != nil {
		t.Fatalf("NewTodoRepo failed: %v", err)
	}
	return repo
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url     string
		dialect Dialect
		dsn     string
		wantErr bool
	}{
		{"postgres://u:p@localhost:5432/todos", Postgres, "postgres://u:p@localhost:5432/todos", false},
		{"postgresql://localhost/todos", Postgres, "postgresql://localhost/todos", false},
		{"sqlite://todoly.db", SQLite, "todoly.db", false},
		{"file:todoly.db?cache=shared", SQLite, "file:todoly.db?cache=shared", false},
		{"sqlite://", "", "", true},
		{"mysql://localhost/todos", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		dialect, dsn, err := parseURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if dialect != tt.dialect || dsn != tt.dsn {
			t.Errorf("parseURL(%q) = (%q, %q), want (%q, %q)", tt.url, dialect, dsn, tt.dialect, tt.dsn)
		}
	}
}

func TestAddAndFetch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.AddTask(ctx, "u1", "buy milk")
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if created.ID == 0 || created.UserID != "u1" || created.Text != "buy milk" || !created.Active {
		t.Fatalf("AddTask returned %+v", created)
	}

	tasks, err := repo.FetchTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("FetchTasks failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0] != created {
		t.Fatalf("FetchTasks = %+v, want [%+v]", tasks, created)
	}
}

func TestFetchTasksEmptyIsNotNil(t *testing.T) {
	repo := newTestRepo(t)

	tasks, err := repo.FetchTasks(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("FetchTasks failed: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("FetchTasks = %#v, want empty slice", tasks)
	}
}

func TestFetchTasksInsertionOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		if _, err := repo.AddTask(ctx, "u1", text); err != nil {
			t.Fatalf("AddTask(%q) failed: %v", text, err)
		}
	}

	tasks, err := repo.FetchTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("FetchTasks failed: %v", err)
	}
	var got []string
	for _, task := range tasks {
		got = append(got, task.Text)
	}
	if len(got) != 3 || got[0] != "one" || got[1] != "two" || got[2] != "three" {
		t.Fatalf("FetchTasks order = %v", got)
	}
}

func TestSetActiveAndRename(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.AddTask(ctx, "u1", "walk dog")
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	done, err := repo.SetActive(ctx, created.ID, "u1", false)
	if err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	if done.Active || done.Text != "walk dog" {
		t.Fatalf("SetActive returned %+v", done)
	}

	renamed, err := repo.Rename(ctx, created.ID, "u1", "walk cat")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if renamed.Text != "walk cat" || renamed.Active || renamed.UserID != "u1" {
		t.Fatalf("Rename returned %+v", renamed)
	}
}

func TestMutationsScopedToOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.AddTask(ctx, "owner", "private")
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	if _, err := repo.SetActive(ctx, created.ID, "intruder", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetActive by non-owner error = %v, want ErrNotFound", err)
	}
	if _, err := repo.Rename(ctx, created.ID, "intruder", "hacked"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rename by non-owner error = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTask(ctx, created.ID, "intruder"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTask by non-owner error = %v, want ErrNotFound", err)
	}

	tasks, err := repo.FetchTasks(ctx, "owner")
	if err != nil {
		t.Fatalf("FetchTasks failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0] != created {
		t.Fatalf("owner task changed: %+v", tasks)
	}
}

func TestDeleteTask(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.AddTask(ctx, "u1", "temp")
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	if err := repo.DeleteTask(ctx, created.ID, "u1"); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if err := repo.DeleteTask(ctx, created.ID, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DeleteTask error = %v, want ErrNotFound", err)
	}

	tasks, err := repo.FetchTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("FetchTasks failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("FetchTasks after delete = %+v", tasks)
	}
}

func TestMissingIDIsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.SetActive(ctx, 999, "u1", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetActive error = %v, want ErrNotFound", err)
	}
	if _, err := repo.Rename(ctx, 999, "u1", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rename error = %v, want ErrNotFound", err)
	}
}

func TestCreateTableIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.CreateTable(context.Background()); err != nil {
		t.Fatalf("second CreateTable failed: %v", err)
	}
}
