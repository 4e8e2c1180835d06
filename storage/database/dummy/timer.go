package dummydb

import (
	"context"

	"github.com/studyhubapp/studyhub/core/timer"
)

type timerRepository struct {
	db *timerTable
}

var _ timer.Repository = (*timerRepository)(nil) // interface compliance check

func NewTimerRepository(db *DB) timer.Repository {
	return &timerRepository{db: db.timer}
}

func (repo *timerRepository) GetRuns(ctx context.Context, ownerID string) ([]timer.Run, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	runs := make([]timer.Run, len(repo.db.table[ownerID]))
	copy(runs, repo.db.table[ownerID])
	return runs, nil
}

func (repo *timerRepository) SaveRuns(ctx context.Context, ownerID string, runs []timer.Run) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored := make([]timer.Run, len(runs))
	copy(stored, runs)
	repo.db.table[ownerID] = stored
	return nil
}

func (repo *timerRepository) DeleteRuns(ctx context.Context, ownerID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.table, ownerID)
	return nil
}
