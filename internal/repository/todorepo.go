package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chetan-code/todoly/internal/models"
)

// ErrNotFound is returned when no task matches the given id and owner.
var ErrNotFound = errors.New("task not found")

type TodoRepo struct {
	db      *sql.DB
	dialect Dialect
}

func NewTodoRepo(db *sql.DB, dialect Dialect) (*TodoRepo, error) {
	repo := &TodoRepo{db: db, dialect: dialect}

	err := repo.CreateTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("could not initialize table: %w", err)
	}

	return repo, nil
}

func (r *TodoRepo) CreateTable(ctx context.Context) error {
	createTableQuery := `CREATE TABLE IF NOT EXISTS todos(
		id SERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		task TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);`
	if r.dialect == SQLite {
		createTableQuery = `CREATE TABLE IF NOT EXISTS todos(
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		task TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);`
	}
	if _, err := r.db.ExecContext(ctx, createTableQuery); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS todos_user_id_idx ON todos (user_id)")
	return err
}

func (r *TodoRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *TodoRepo) FetchTasks(ctx context.Context, userID string) ([]models.Task, error) {
	query := "SELECT id, user_id, task, active FROM todos WHERE user_id = $1 ORDER BY id ASC"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	defer rows.Close() //close the connect in the end

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.Active); err != nil {
			slog.Error("task_row_scan_failed", "error", err, "user_id", userID)
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	return tasks, nil
}

func (r *TodoRepo) AddTask(ctx context.Context, userID string, text string) (models.Task, error) {
	//placeholders keep user text out of the sql
	query := "INSERT INTO todos (user_id, task, active) VALUES ($1, $2, TRUE) RETURNING id, user_id, task, active"
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, text))
}

// SetActive and Rename keep placeholders in ascending order of appearance;
// sqlite numbers $N parameters by first use, not by N.
func (r *TodoRepo) SetActive(ctx context.Context, id int64, userID string, active bool) (models.Task, error) {
	query := "UPDATE todos SET active = $1 WHERE id = $2 AND user_id = $3 RETURNING id, user_id, task, active"
	return r.scanOne(r.db.QueryRowContext(ctx, query, active, id, userID))
}

func (r *TodoRepo) Rename(ctx context.Context, id int64, userID string, text string) (models.Task, error) {
	query := "UPDATE todos SET task = $1 WHERE id = $2 AND user_id = $3 RETURNING id, user_id, task, active"
	return r.scanOne(r.db.QueryRowContext(ctx, query, text, id, userID))
}

func (r *TodoRepo) DeleteTask(ctx context.Context, id int64, userID string) error {
	query := "DELETE FROM todos WHERE id = $1 AND user_id = $2"
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TodoRepo) scanOne(row *sql.Row) (models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Text, &t.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("scan task: %w", err)
	}
	return t, nil
}
