package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core/timer"
)

type timerRunRow struct {
	OwnerID         string    `db:"owner_id"`
	Position        int       `db:"position"`
	RunType         string    `db:"run_type"`
	Label           string    `db:"label"`
	DurationDisplay string    `db:"duration_display"`
	CompletedAt     time.Time `db:"completed_at"`
}

type timerRepository struct {
	db *sqlx.DB
}

var _ timer.Repository = (*timerRepository)(nil) // interface compliance check

func NewTimerRepository(db *sqlx.DB) timer.Repository {
	return &timerRepository{db: db}
}

func (repo *timerRepository) GetRuns(ctx context.Context, ownerID string) ([]timer.Run, error) {
	var rows []timerRunRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM timer_run WHERE owner_id = $1 ORDER BY position`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying runs")
	}

	runs := make([]timer.Run, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, timer.Run{
			Type:            row.RunType,
			Label:           row.Label,
			DurationDisplay: row.DurationDisplay,
			CompletedAt:     row.CompletedAt,
		})
	}
	return runs, nil
}

// SaveRuns replaces the owner's whole history; position preserves the
// most-recent-first order across reloads.
func (repo *timerRepository) SaveRuns(ctx context.Context, ownerID string, runs []timer.Run) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "saving runs")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM timer_run WHERE owner_id = $1`, ownerID); err != nil {
		return errors.Wrap(err, "saving runs")
	}
	for i, run := range runs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO timer_run (owner_id, position, run_type, label, duration_display, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			ownerID, i, run.Type, run.Label, run.DurationDisplay, run.CompletedAt,
		)
		if err != nil {
			return errors.Wrap(err, "saving runs")
		}
	}
	return errors.Wrap(tx.Commit(), "saving runs")
}

func (repo *timerRepository) DeleteRuns(ctx context.Context, ownerID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM timer_run WHERE owner_id = $1`, ownerID)
	return errors.Wrap(err, "deleting runs")
}
