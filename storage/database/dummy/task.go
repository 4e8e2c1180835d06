package dummydb

import (
	"context"
	"sort"

	"github.com/studyhubapp/studyhub/core"
	"github.com/studyhubapp/studyhub/core/task"
)

type taskRepository struct {
	db *taskTable
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db.task}
}

func (repo *taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) GetTask(ctx context.Context, ownerID, id string) (task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok && t.OwnerID == ownerID {
		return *t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) GetTaskByID(ctx context.Context, id string) (task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) QueryTasks(ctx context.Context, ownerID string, ordering []core.DBOrdering) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := make([]task.Task, 0)
	for _, t := range repo.db.table {
		if t.OwnerID == ownerID {
			tasks = append(tasks, *t)
		}
	}
	// newest first; custom orderings are a SQL concern the dummy skips
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	return tasks, nil
}

func (repo *taskRepository) QueryPendingTasks(ctx context.Context) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tasks := make([]task.Task, 0)
	for _, t := range repo.db.table {
		if t.Status == task.StatusPending {
			tasks = append(tasks, *t)
		}
	}
	return tasks, nil
}

func (repo *taskRepository) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t, ok := repo.db.table[id]
	if !ok {
		return false, task.ErrNotFound
	}
	if t.Status != from {
		return false, nil
	}
	t.Status = to
	return true, nil
}

func (repo *taskRepository) DeleteTask(ctx context.Context, ownerID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if t, ok := repo.db.table[id]; ok && t.OwnerID == ownerID {
		delete(repo.db.table, id)
		return nil
	}
	return task.ErrNotFound
}
