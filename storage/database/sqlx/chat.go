package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core/chat"
)

type savedResponseRow struct {
	ID        string    `db:"id"`
	OwnerID   string    `db:"owner_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

func (row savedResponseRow) toSavedResponse() chat.SavedResponse {
	return chat.SavedResponse{
		ID:        row.ID,
		Content:   row.Content,
		OwnerID:   row.OwnerID,
		CreatedAt: row.CreatedAt,
	}
}

type chatRepository struct {
	db *sqlx.DB
}

var _ chat.Repository = (*chatRepository)(nil) // interface compliance check

func NewChatRepository(db *sqlx.DB) chat.Repository {
	return &chatRepository{db: db}
}

func (repo *chatRepository) SaveResponse(ctx context.Context, resp chat.SavedResponse) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO saved_response (id, owner_id, content, created_at)
		VALUES ($1, $2, $3, $4)`,
		resp.ID, resp.OwnerID, resp.Content, resp.CreatedAt,
	)
	return errors.Wrap(err, "saving response")
}

func (repo *chatRepository) GetResponse(ctx context.Context, ownerID, id string) (chat.SavedResponse, error) {
	var row savedResponseRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM saved_response WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return chat.SavedResponse{}, trapNoRowsErr(err, chat.ErrNotFound)
	}
	return row.toSavedResponse(), nil
}

func (repo *chatRepository) QueryResponses(ctx context.Context, ownerID string) ([]chat.SavedResponse, error) {
	var rows []savedResponseRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT * FROM saved_response WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying responses")
	}

	resps := make([]chat.SavedResponse, 0, len(rows))
	for _, row := range rows {
		resps = append(resps, row.toSavedResponse())
	}
	return resps, nil
}

func (repo *chatRepository) DeleteResponse(ctx context.Context, ownerID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM saved_response WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return errors.Wrap(err, "deleting response")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return chat.ErrNotFound
	}
	return nil
}

func (repo *chatRepository) DeleteAllResponses(ctx context.Context, ownerID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM saved_response WHERE owner_id = $1`, ownerID)
	return errors.Wrap(err, "deleting responses")
}
