package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core"
	"github.com/studyhubapp/studyhub/core/task"
)

type taskRow struct {
	ID            string    `db:"id"`
	OwnerID       string    `db:"owner_id"`
	Title         string    `db:"title"`
	Description   string    `db:"description"`
	Category      string    `db:"category"`
	DurationHours int       `db:"duration_hours"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	DeadlineAt    time.Time `db:"deadline_at"`
}

func (row taskRow) toTask() task.Task {
	return task.Task{
		ID:            row.ID,
		Title:         row.Title,
		Description:   row.Description,
		Category:      row.Category,
		DurationHours: row.DurationHours,
		Status:        row.Status,
		OwnerID:       row.OwnerID,
		CreatedAt:     row.CreatedAt,
		DeadlineAt:    row.DeadlineAt,
	}
}

// orderableTaskColumns guards ORDER BY clauses against arbitrary input.
var orderableTaskColumns = map[string]struct{}{
	"title":          {},
	"category":       {},
	"status":         {},
	"duration_hours": {},
	"created_at":     {},
	"deadline_at":    {},
}

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sqlx.DB) task.Repository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	t.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO task (id, owner_id, title, description, category, duration_hours, status, created_at, deadline_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.OwnerID, t.Title, t.Description, t.Category, t.DurationHours, t.Status, t.CreatedAt, t.DeadlineAt,
	)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "creating task")
	}
	return t, nil
}

func (repo *taskRepository) GetTask(ctx context.Context, ownerID, id string) (task.Task, error) {
	var row taskRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM task WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return task.Task{}, trapNoRowsErr(err, task.ErrNotFound)
	}
	return row.toTask(), nil
}

func (repo *taskRepository) GetTaskByID(ctx context.Context, id string) (task.Task, error) {
	var row taskRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM task WHERE id = $1`, id)
	if err != nil {
		return task.Task{}, trapNoRowsErr(err, task.ErrNotFound)
	}
	return row.toTask(), nil
}

func (repo *taskRepository) QueryTasks(ctx context.Context, ownerID string, ordering []core.DBOrdering) ([]task.Task, error) {
	var clauses []string
	for _, ord := range ordering {
		if _, ok := orderableTaskColumns[ord.Field]; !ok {
			return nil, errors.Errorf("cannot order tasks by %q", ord.Field)
		}
		clauses = append(clauses, ord.String())
	}
	if len(clauses) == 0 {
		clauses = append(clauses, "created_at DESC")
	}

	var rows []taskRow
	q := `SELECT * FROM task WHERE owner_id = $1 ORDER BY ` + strings.Join(clauses, ", ")
	if err := repo.db.SelectContext(ctx, &rows, q, ownerID); err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}

	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toTask())
	}
	return tasks, nil
}

func (repo *taskRepository) QueryPendingTasks(ctx context.Context) ([]task.Task, error) {
	var rows []taskRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM task WHERE status = $1`, task.StatusPending)
	if err != nil {
		return nil, errors.Wrap(err, "querying pending tasks")
	}

	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toTask())
	}
	return tasks, nil
}

func (repo *taskRepository) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE task SET status = $3 WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return false, errors.Wrap(err, "transitioning task status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "transitioning task status")
	}
	return n > 0, nil
}

func (repo *taskRepository) DeleteTask(ctx context.Context, ownerID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM task WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return errors.Wrap(err, "deleting task")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return task.ErrNotFound
	}
	return nil
}
