package subject

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core"
)

var (
	ErrNotFound     = errors.New("subject not found")
	ErrMarkNotFound = errors.New("mark not found")
	ErrNameExists   = errors.New("a subject with this name already exists")
	ErrCodeExists   = errors.New("a subject with this code already exists")

	errUnknownExamType = errors.New("unknown exam type")
	errExamRecorded    = errors.New("this exam has already been recorded for the subject")
	errExamNumber      = errors.New("exam number is required for this exam type")
	errValueTooHigh    = errors.New("mark exceeds the subject's maximum marks")

	nowFunc = time.Now // mockable
)

type (
	// Repository persists subjects and their marks. Name and code
	// uniqueness checks are case-insensitive within an owner's subjects.
	Repository interface {
		CheckSubjectUniqueness(ctx context.Context, ownerID, name, code string) error
		CreateSubject(ctx context.Context, sub Subject) error
		GetSubject(ctx context.Context, ownerID, id string) (Subject, error)
		QuerySubjects(ctx context.Context, ownerID string) ([]Subject, error)
		// DeleteSubject removes the subject and all its marks.
		DeleteSubject(ctx context.Context, ownerID, id string) error

		CreateMark(ctx context.Context, mark Mark) error
		QueryMarks(ctx context.Context, ownerID, subjectID string) ([]Mark, error)
		QueryAllMarks(ctx context.Context, ownerID string) ([]Mark, error)
		DeleteMark(ctx context.Context, ownerID, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkSubjectUniqueness(ownerID, name, code string) error {
	err := svc.repo.CheckSubjectUniqueness(context.Background(), ownerID, name, code)
	switch errors.Cause(err) {
	case nil:
		return nil
	case ErrNameExists:
		return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
	case ErrCodeExists:
		return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
	}
	return errors.Wrap(err, "checking subject uniqueness")
}

func (svc *Service) Create(ctx context.Context, ownerID string, ns NewSubject) (Subject, error) {
	if err := ns.Validate(ownerID, svc); err != nil {
		return Subject{}, err
	}
	sub := Subject{
		ID:        uuid.New().String(),
		Name:      ns.Name,
		Code:      ns.Code,
		MaxMarks:  ns.MaxMarks,
		OwnerID:   ownerID,
		CreatedAt: nowFunc().UTC(),
	}
	if err := svc.repo.CreateSubject(ctx, sub); err != nil {
		return Subject{}, errors.Wrap(err, "creating subject")
	}
	return sub, nil
}

func (svc *Service) GetByID(ctx context.Context, ownerID, id string) (Subject, error) {
	sub, err := svc.repo.GetSubject(ctx, ownerID, id)
	return sub, errors.Wrap(err, "getting subject")
}

func (svc *Service) Query(ctx context.Context, ownerID string) ([]Subject, error) {
	subs, err := svc.repo.QuerySubjects(ctx, ownerID)
	return subs, errors.Wrap(err, "querying subjects")
}

// Delete removes the subject and, via the repository, every mark under it.
func (svc *Service) Delete(ctx context.Context, ownerID, id string) error {
	return errors.Wrap(svc.repo.DeleteSubject(ctx, ownerID, id), "deleting subject")
}

// AddMark validates and records a mark against one of the owner's subjects.
func (svc *Service) AddMark(ctx context.Context, ownerID string, nm NewMark) (Mark, error) {
	if err := core.Validate.Struct(nm); err != nil {
		return Mark{}, err
	}
	nm.ExamType = core.CleanString(nm.ExamType)

	sub, err := svc.repo.GetSubject(ctx, ownerID, nm.SubjectID)
	if err != nil {
		return Mark{}, errors.Wrap(err, "getting subject")
	}
	if nm.Value > sub.MaxMarks {
		return Mark{}, core.NewValidationError(errValueTooHigh, core.FieldError{Field: "value", Error: errValueTooHigh.Error()})
	}

	single, known := IsSingleInstanceExam(nm.ExamType)
	if !known {
		return Mark{}, core.NewValidationError(errUnknownExamType, core.FieldError{Field: "exam_type", Error: errUnknownExamType.Error()})
	}

	existing, err := svc.repo.QueryMarks(ctx, ownerID, sub.ID)
	if err != nil {
		return Mark{}, errors.Wrap(err, "querying marks")
	}
	if single {
		nm.ExamNumber = 0
		for _, m := range existing {
			if m.ExamType == nm.ExamType {
				return Mark{}, core.NewValidationError(errExamRecorded, core.FieldError{Field: "exam_type", Error: errExamRecorded.Error()})
			}
		}
	} else {
		if nm.ExamNumber < 1 {
			return Mark{}, core.NewValidationError(errExamNumber, core.FieldError{Field: "exam_number", Error: errExamNumber.Error()})
		}
		for _, m := range existing {
			if m.ExamType == nm.ExamType && m.ExamNumber == nm.ExamNumber {
				return Mark{}, core.NewValidationError(errExamRecorded, core.FieldError{Field: "exam_number", Error: errExamRecorded.Error()})
			}
		}
	}

	mark := Mark{
		ID:         uuid.New().String(),
		SubjectID:  sub.ID,
		ExamType:   nm.ExamType,
		ExamNumber: nm.ExamNumber,
		ExamDate:   nm.ExamDate,
		Value:      nm.Value,
		OwnerID:    ownerID,
		CreatedAt:  nowFunc().UTC(),
	}
	if err := svc.repo.CreateMark(ctx, mark); err != nil {
		return Mark{}, errors.Wrap(err, "creating mark")
	}
	return mark, nil
}

func (svc *Service) QueryMarks(ctx context.Context, ownerID, subjectID string) ([]Mark, error) {
	marks, err := svc.repo.QueryMarks(ctx, ownerID, subjectID)
	return marks, errors.Wrap(err, "querying marks")
}

func (svc *Service) DeleteMark(ctx context.Context, ownerID, id string) error {
	return errors.Wrap(svc.repo.DeleteMark(ctx, ownerID, id), "deleting mark")
}
