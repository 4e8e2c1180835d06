package dummydb

import (
	"context"
	"strings"

	"github.com/studyhubapp/studyhub/core/subject"
)

type subjectRepository struct {
	db *subjectTable
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db.subject}
}

func (repo *subjectRepository) CheckSubjectUniqueness(ctx context.Context, ownerID, name, code string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sub := range repo.db.subjects {
		if sub.OwnerID != ownerID {
			continue
		}
		if strings.EqualFold(sub.Name, name) {
			return subject.ErrNameExists
		}
		if strings.EqualFold(sub.Code, code) {
			return subject.ErrCodeExists
		}
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.subjects[sub.ID] = &sub
	return nil
}

func (repo *subjectRepository) GetSubject(ctx context.Context, ownerID, id string) (subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.subjects[id]; ok && sub.OwnerID == ownerID {
		return *sub, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) QuerySubjects(ctx context.Context, ownerID string) ([]subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]subject.Subject, 0)
	for _, sub := range repo.db.subjects {
		if sub.OwnerID == ownerID {
			subs = append(subs, *sub)
		}
	}
	return subs, nil
}

func (repo *subjectRepository) DeleteSubject(ctx context.Context, ownerID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub, ok := repo.db.subjects[id]
	if !ok || sub.OwnerID != ownerID {
		return subject.ErrNotFound
	}
	delete(repo.db.subjects, id)
	for mid, m := range repo.db.marks {
		if m.SubjectID == id {
			delete(repo.db.marks, mid)
		}
	}
	return nil
}

func (repo *subjectRepository) CreateMark(ctx context.Context, mark subject.Mark) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.marks[mark.ID] = &mark
	return nil
}

func (repo *subjectRepository) QueryMarks(ctx context.Context, ownerID, subjectID string) ([]subject.Mark, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	marks := make([]subject.Mark, 0)
	for _, m := range repo.db.marks {
		if m.OwnerID == ownerID && m.SubjectID == subjectID {
			marks = append(marks, *m)
		}
	}
	return marks, nil
}

func (repo *subjectRepository) QueryAllMarks(ctx context.Context, ownerID string) ([]subject.Mark, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	marks := make([]subject.Mark, 0)
	for _, m := range repo.db.marks {
		if m.OwnerID == ownerID {
			marks = append(marks, *m)
		}
	}
	return marks, nil
}

func (repo *subjectRepository) DeleteMark(ctx context.Context, ownerID, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	m, ok := repo.db.marks[id]
	if !ok || m.OwnerID != ownerID {
		return subject.ErrMarkNotFound
	}
	delete(repo.db.marks, id)
	return nil
}
