package timer

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core"
)

// MaxHistory bounds the per-owner run history; older entries are evicted.
const MaxHistory = 20

var (
	ErrNotFound = errors.New("run not found")

	errBadEntry = errors.New("invalid history entry")
)

type (
	// Run is a completed timer or saved stopwatch session.
	Run struct {
		Type            string    `json:"type"` // ModeTimer | ModeStopwatch
		Label           string    `json:"label"`
		DurationDisplay string    `json:"duration_display"`
		CompletedAt     time.Time `json:"completed_at"`
	}

	// Repository persists each owner's run history as an ordered list,
	// most recent first.
	Repository interface {
		GetRuns(ctx context.Context, ownerID string) ([]Run, error)
		SaveRuns(ctx context.Context, ownerID string, runs []Run) error
		DeleteRuns(ctx context.Context, ownerID string) error
	}
)

// appendRun prepends. History failures never undo the session outcome.
func (e *Engine) appendRun(ctx context.Context, ownerID string, run Run) error {
	runs, err := e.repo.GetRuns(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "loading run history")
	}
	runs = append([]Run{run}, runs...)
	if len(runs) > MaxHistory {
		runs = runs[:MaxHistory]
	}
	return errors.Wrap(e.repo.SaveRuns(ctx, ownerID, runs), "saving run history")
}

// History returns the owner's runs, most recent first.
func (e *Engine) History(ctx context.Context, ownerID string) ([]Run, error) {
	runs, err := e.repo.GetRuns(ctx, ownerID)
	return runs, errors.Wrap(err, "loading run history")
}

// DeleteEntry removes the run at index (0 is the most recent).
func (e *Engine) DeleteEntry(ctx context.Context, ownerID string, index int) error {
	runs, err := e.repo.GetRuns(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "loading run history")
	}
	if index < 0 || index >= len(runs) {
		return core.NewValidationError(errBadEntry)
	}
	runs = append(runs[:index], runs[index+1:]...)
	return errors.Wrap(e.repo.SaveRuns(ctx, ownerID, runs), "saving run history")
}

// ClearHistory removes all of the owner's runs.
func (e *Engine) ClearHistory(ctx context.Context, ownerID string) error {
	return errors.Wrap(e.repo.DeleteRuns(ctx, ownerID), "clearing run history")
}
