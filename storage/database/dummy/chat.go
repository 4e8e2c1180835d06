package dummydb

import (
	"context"
	"sort"

	"github.com/studyhubapp/studyhub/core/chat"
)

type chatRepository struct {
	db *chatTable
}

var _ chat.Repository = (*chatRepository)(nil) // interface compliance check

func NewChatRepository(db *DB) chat.Repository {
	return &chatRepository{db: db.chat}
}

func (repo *chatRepository) SaveResponse(ctx context.Context, resp chat.SavedResponse) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[resp.ID] = &resp
	return nil
}

func (repo *chatRepository) GetResponse(ctx context.Context, ownerID, id string) (chat.SavedResponse, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if resp, ok := repo.db.table[id]; ok && resp.OwnerID == ownerID {
		return *resp, nil
	}
	return chat.SavedResponse{}, chat.ErrNotFound
}

func (repo *chatRepository) QueryResponses(ctx context.Context, ownerID string) ([]chat.SavedResponse, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	resps := make([]chat.SavedResponse, 0)
	for _, resp := range repo.db.table {
		if resp.OwnerID == ownerID {
			resps = append(resps, *resp)
		}
	}
	sort.Slice(resps, func(i, j int) bool { return resps[i].CreatedAt.After(resps[j].CreatedAt) })
	return resps, nil
}

func (repo *chatRepository) DeleteResponse(ctx context.Context, ownerID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if resp, ok := repo.db.table[id]; ok && resp.OwnerID == ownerID {
		delete(repo.db.table, id)
		return nil
	}
	return chat.ErrNotFound
}

func (repo *chatRepository) DeleteAllResponses(ctx context.Context, ownerID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, resp := range repo.db.table {
		if resp.OwnerID == ownerID {
			delete(repo.db.table, id)
		}
	}
	return nil
}
