package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core/subject"
)

type (
	subjectRow struct {
		ID        string    `db:"id"`
		OwnerID   string    `db:"owner_id"`
		Name      string    `db:"name"`
		Code      string    `db:"code"`
		MaxMarks  float64   `db:"max_marks"`
		CreatedAt time.Time `db:"created_at"`
	}

	markRow struct {
		ID         string    `db:"id"`
		SubjectID  string    `db:"subject_id"`
		OwnerID    string    `db:"owner_id"`
		ExamType   string    `db:"exam_type"`
		ExamNumber int       `db:"exam_number"`
		ExamDate   time.Time `db:"exam_date"`
		Value      float64   `db:"value"`
		CreatedAt  time.Time `db:"created_at"`
	}
)

func (row subjectRow) toSubject() subject.Subject {
	return subject.Subject{
		ID:        row.ID,
		Name:      row.Name,
		Code:      row.Code,
		MaxMarks:  row.MaxMarks,
		OwnerID:   row.OwnerID,
		CreatedAt: row.CreatedAt,
	}
}

func (row markRow) toMark() subject.Mark {
	return subject.Mark{
		ID:         row.ID,
		SubjectID:  row.SubjectID,
		ExamType:   row.ExamType,
		ExamNumber: row.ExamNumber,
		ExamDate:   row.ExamDate.Format("2006-01-02"),
		Value:      row.Value,
		OwnerID:    row.OwnerID,
		CreatedAt:  row.CreatedAt,
	}
}

type subjectRepository struct {
	db *sqlx.DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *sqlx.DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CheckSubjectUniqueness(ctx context.Context, ownerID, name, code string) error {
	var rows []subjectRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT * FROM subject
		WHERE owner_id = $1 AND (LOWER(name) = LOWER($2) OR LOWER(code) = LOWER($3))`,
		ownerID, name, code,
	)
	if err != nil {
		return errors.Wrap(err, "checking subject uniqueness")
	}

	for _, row := range rows {
		if strings.EqualFold(row.Name, name) {
			return subject.ErrNameExists
		}
		if strings.EqualFold(row.Code, code) {
			return subject.ErrCodeExists
		}
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO subject (id, owner_id, name, code, max_marks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sub.ID, sub.OwnerID, sub.Name, sub.Code, sub.MaxMarks, sub.CreatedAt,
	)
	return errors.Wrap(err, "creating subject")
}

func (repo *subjectRepository) GetSubject(ctx context.Context, ownerID, id string) (subject.Subject, error) {
	var row subjectRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM subject WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return subject.Subject{}, trapNoRowsErr(err, subject.ErrNotFound)
	}
	return row.toSubject(), nil
}

func (repo *subjectRepository) QuerySubjects(ctx context.Context, ownerID string) ([]subject.Subject, error) {
	var rows []subjectRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM subject WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}

	subs := make([]subject.Subject, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.toSubject())
	}
	return subs, nil
}

// DeleteSubject removes the subject; its marks go with it via the FK cascade.
func (repo *subjectRepository) DeleteSubject(ctx context.Context, ownerID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM subject WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return subject.ErrNotFound
	}
	return nil
}

func (repo *subjectRepository) CreateMark(ctx context.Context, mark subject.Mark) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO mark (id, subject_id, owner_id, exam_type, exam_number, exam_date, value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		mark.ID, mark.SubjectID, mark.OwnerID, mark.ExamType, mark.ExamNumber, mark.ExamDate, mark.Value, mark.CreatedAt,
	)
	return errors.Wrap(err, "creating mark")
}

func (repo *subjectRepository) QueryMarks(ctx context.Context, ownerID, subjectID string) ([]subject.Mark, error) {
	var rows []markRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT * FROM mark WHERE owner_id = $1 AND subject_id = $2 ORDER BY created_at`, ownerID, subjectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying marks")
	}

	marks := make([]subject.Mark, 0, len(rows))
	for _, row := range rows {
		marks = append(marks, row.toMark())
	}
	return marks, nil
}

func (repo *subjectRepository) QueryAllMarks(ctx context.Context, ownerID string) ([]subject.Mark, error) {
	var rows []markRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM mark WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying marks")
	}

	marks := make([]subject.Mark, 0, len(rows))
	for _, row := range rows {
		marks = append(marks, row.toMark())
	}
	return marks, nil
}

func (repo *subjectRepository) DeleteMark(ctx context.Context, ownerID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM mark WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return errors.Wrap(err, "deleting mark")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return subject.ErrNotFound
	}
	return nil
}
