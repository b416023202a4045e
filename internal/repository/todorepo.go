package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	stdlibTransactor "github.com/Thiht/transactor/stdlib"

	"github.com/chetan-code/tasktracker/internal/models"
)

const selectTodos = "SELECT id, user_id, title, description, due_date, priority, complete, created_at FROM todos"

const priorityRank = "CASE priority WHEN 'High' THEN 3 WHEN 'Medium' THEN 2 WHEN 'Low' THEN 1 ELSE 0 END"

// todoEntity is the row shape, optional columns are NULL rather than ""
type todoEntity struct {
	ID          int
	UserID      int
	Title       string
	Description sql.NullString
	DueDate     sql.NullString
	Priority    sql.NullString
	Complete    bool
	CreatedAt   int64 //unix microseconds, UTC
}

type TodoRepo struct {
	dbGetter stdlibTransactor.DBGetter
	dialect  Dialect
}

func NewTodoRepo(dbGetter stdlibTransactor.DBGetter, dialect Dialect) *TodoRepo {
	return &TodoRepo{dbGetter: dbGetter, dialect: dialect}
}

func (r *TodoRepo) FindByID(ctx context.Context, id int) (models.Task, error) {
	db := r.dbGetter(ctx)
	row := db.QueryRowContext(ctx, r.dialect.rebind(selectTodos+" WHERE id = ?"), id)
	return extractTask(row)
}

// List returns the owner's tasks narrowed by opts.Query and opts.Status and
// ordered by opts.Sort
func (r *TodoRepo) List(ctx context.Context, ownerID int, opts models.ListOptions) ([]models.Task, error) {
	var sb strings.Builder
	sb.WriteString(selectTodos)
	sb.WriteString(" WHERE user_id = ?")
	args := []any{ownerID}

	if opts.Query != "" {
		sb.WriteString(" AND " + r.dialect.contains)
		args = append(args, opts.Query)
	}
	switch opts.Status {
	case models.StatusCompleted:
		sb.WriteString(" AND complete = ?")
		args = append(args, true)
	case models.StatusNotCompleted:
		sb.WriteString(" AND complete = ?")
		args = append(args, false)
	}

	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderBy(opts.Sort))

	query := r.dialect.rebind(sb.String())
	slog.DebugContext(ctx, "todo_list_query", "query", query, "owner", ownerID)

	db := r.dbGetter(ctx)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	return extractTasks(rows)
}

// orderBy always ends on id so equal keys still come back in a stable order
func orderBy(sort models.SortCriteria) string {
	switch sort {
	case models.SortDate:
		//tasks without a due date first, IS NULL sorts the same way everywhere
		return "due_date IS NULL DESC, due_date ASC, id ASC"
	case models.SortPriority:
		return priorityRank + " DESC, id ASC"
	case models.SortTitle:
		return "title ASC, id ASC"
	}
	return "complete ASC, created_at ASC, id ASC"
}

// Save inserts a task that has no id yet, otherwise it overwrites the
// stored row's mutable columns
func (r *TodoRepo) Save(ctx context.Context, t models.Task) (models.Task, error) {
	e := toEntity(t)
	db := r.dbGetter(ctx)

	if t.ID != 0 {
		query := "UPDATE todos SET title = ?, description = ?, due_date = ?, priority = ?, complete = ? WHERE id = ?"
		_, err := db.ExecContext(ctx, r.dialect.rebind(query),
			e.Title, e.Description, e.DueDate, e.Priority, e.Complete, e.ID)
		if err != nil {
			return models.Task{}, fmt.Errorf("could not update task %d: %w", t.ID, err)
		}
		return t, nil
	}

	query := "INSERT INTO todos (user_id, title, description, due_date, priority, complete, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	args := []any{e.UserID, e.Title, e.Description, e.DueDate, e.Priority, e.Complete, e.CreatedAt}

	if r.dialect.returning {
		err := db.QueryRowContext(ctx, r.dialect.rebind(query+" RETURNING id"), args...).Scan(&t.ID)
		if err != nil {
			return models.Task{}, fmt.Errorf("could not insert task: %w", err)
		}
		return t, nil
	}

	res, err := db.ExecContext(ctx, r.dialect.rebind(query), args...)
	if err != nil {
		return models.Task{}, fmt.Errorf("could not insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, err
	}
	t.ID = int(id)
	return t, nil
}

func (r *TodoRepo) Delete(ctx context.Context, id int) error {
	db := r.dbGetter(ctx)
	res, err := db.ExecContext(ctx, r.dialect.rebind("DELETE FROM todos WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("could not delete task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

func extractTask(row scannable) (models.Task, error) {
	var e todoEntity
	err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.DueDate, &e.Priority, &e.Complete, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	return e.toTask()
}

func extractTasks(rows *sql.Rows) ([]models.Task, error) {
	defer rows.Close() //nolint:errcheck

	var tasks []models.Task
	for rows.Next() {
		t, err := extractTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (e todoEntity) toTask() (models.Task, error) {
	t := models.Task{
		ID:          e.ID,
		OwnerID:     e.UserID,
		Title:       e.Title,
		Description: e.Description.String,
		Priority:    e.Priority.String,
		Complete:    e.Complete,
		CreatedAt:   time.UnixMicro(e.CreatedAt).UTC(),
	}
	if e.DueDate.Valid && e.DueDate.String != "" {
		due, err := time.Parse(models.DateLayout, e.DueDate.String)
		if err != nil {
			return models.Task{}, fmt.Errorf("task %d has a malformed due date %q: %w", e.ID, e.DueDate.String, err)
		}
		t.DueDate = due
	}
	return t, nil
}

func toEntity(t models.Task) todoEntity {
	return todoEntity{
		ID:          t.ID,
		UserID:      t.OwnerID,
		Title:       t.Title,
		Description: nullString(t.Description),
		DueDate:     nullString(t.DueDateString()),
		Priority:    nullString(t.Priority),
		Complete:    t.Complete,
		CreatedAt:   t.CreatedAt.UTC().UnixMicro(),
	}
}
