package dummydb

import (
	"context"

	"github.com/studyhubapp/studyhub/core/reminder"
)

type reminderRepository struct {
	db *reminderTable
}

var _ reminder.Repository = (*reminderRepository)(nil) // interface compliance check

func NewReminderRepository(db *DB) reminder.Repository {
	return &reminderRepository{db: db.reminder}
}

func (repo *reminderRepository) CreateReminder(ctx context.Context, rem reminder.Reminder) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[rem.ID] = &rem
	return nil
}

func (repo *reminderRepository) GetReminder(ctx context.Context, ownerID, id string) (reminder.Reminder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rem, ok := repo.db.table[id]; ok && rem.OwnerID == ownerID {
		return *rem, nil
	}
	return reminder.Reminder{}, reminder.ErrNotFound
}

func (repo *reminderRepository) GetReminderByID(ctx context.Context, id string) (reminder.Reminder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rem, ok := repo.db.table[id]; ok {
		return *rem, nil
	}
	return reminder.Reminder{}, reminder.ErrNotFound
}

func (repo *reminderRepository) QueryReminders(ctx context.Context, ownerID string) ([]reminder.Reminder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rems := make([]reminder.Reminder, 0)
	for _, rem := range repo.db.table {
		if rem.OwnerID == ownerID {
			rems = append(rems, *rem)
		}
	}
	return rems, nil
}

func (repo *reminderRepository) QueryAllReminders(ctx context.Context) ([]reminder.Reminder, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rems := make([]reminder.Reminder, 0, len(repo.db.table))
	for _, rem := range repo.db.table {
		rems = append(rems, *rem)
	}
	return rems, nil
}

func (repo *reminderRepository) DeleteReminder(ctx context.Context, ownerID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if rem, ok := repo.db.table[id]; ok && rem.OwnerID == ownerID {
		delete(repo.db.table, id)
		return nil
	}
	return reminder.ErrNotFound
}
