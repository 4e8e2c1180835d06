package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core/reminder"
)

type reminderRow struct {
	ID          string    `db:"id"`
	OwnerID     string    `db:"owner_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	DueDate     time.Time `db:"due_date"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row reminderRow) toReminder() reminder.Reminder {
	return reminder.Reminder{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Date:        row.DueDate.Format(reminder.DateLayout),
		OwnerID:     row.OwnerID,
		CreatedAt:   row.CreatedAt,
	}
}

type reminderRepository struct {
	db *sqlx.DB
}

var _ reminder.Repository = (*reminderRepository)(nil) // interface compliance check

func NewReminderRepository(db *sqlx.DB) reminder.Repository {
	return &reminderRepository{db: db}
}

func (repo *reminderRepository) CreateReminder(ctx context.Context, rem reminder.Reminder) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO reminder (id, owner_id, title, description, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rem.ID, rem.OwnerID, rem.Title, rem.Description, rem.Date, rem.CreatedAt,
	)
	return errors.Wrap(err, "creating reminder")
}

func (repo *reminderRepository) GetReminder(ctx context.Context, ownerID, id string) (reminder.Reminder, error) {
	var row reminderRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM reminder WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return reminder.Reminder{}, trapNoRowsErr(err, reminder.ErrNotFound)
	}
	return row.toReminder(), nil
}

func (repo *reminderRepository) GetReminderByID(ctx context.Context, id string) (reminder.Reminder, error) {
	var row reminderRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM reminder WHERE id = $1`, id)
	if err != nil {
		return reminder.Reminder{}, trapNoRowsErr(err, reminder.ErrNotFound)
	}
	return row.toReminder(), nil
}

func (repo *reminderRepository) QueryReminders(ctx context.Context, ownerID string) ([]reminder.Reminder, error) {
	var rows []reminderRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM reminder WHERE owner_id = $1 ORDER BY due_date, created_at`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying reminders")
	}

	rems := make([]reminder.Reminder, 0, len(rows))
	for _, row := range rows {
		rems = append(rems, row.toReminder())
	}
	return rems, nil
}

func (repo *reminderRepository) QueryAllReminders(ctx context.Context) ([]reminder.Reminder, error) {
	var rows []reminderRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM reminder ORDER BY due_date, created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "querying reminders")
	}

	rems := make([]reminder.Reminder, 0, len(rows))
	for _, row := range rows {
		rems = append(rems, row.toReminder())
	}
	return rems, nil
}

func (repo *reminderRepository) DeleteReminder(ctx context.Context, ownerID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM reminder WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return errors.Wrap(err, "deleting reminder")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return reminder.ErrNotFound
	}
	return nil
}
