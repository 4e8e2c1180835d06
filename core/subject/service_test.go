package subject

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhubapp/studyhub/core"
)

const testExamDate = "2026-03-15"

type memRepo struct {
	mu       sync.RWMutex
	subjects map[string]Subject
	marks    map[string]Mark
}

var _ Repository = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{subjects: make(map[string]Subject), marks: make(map[string]Mark)}
}

func (r *memRepo) CheckSubjectUniqueness(ctx context.Context, ownerID, name, code string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sub := range r.subjects {
		if sub.OwnerID != ownerID {
			continue
		}
		if strings.EqualFold(sub.Name, name) {
			return ErrNameExists
		}
		if strings.EqualFold(sub.Code, code) {
			return ErrCodeExists
		}
	}
	return nil
}

func (r *memRepo) CreateSubject(ctx context.Context, sub Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects[sub.ID] = sub
	return nil
}

func (r *memRepo) GetSubject(ctx context.Context, ownerID, id string) (Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subjects[id]
	if !ok || sub.OwnerID != ownerID {
		return Subject{}, ErrNotFound
	}
	return sub, nil
}

func (r *memRepo) QuerySubjects(ctx context.Context, ownerID string) ([]Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var subs []Subject
	for _, sub := range r.subjects {
		if sub.OwnerID == ownerID {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

func (r *memRepo) DeleteSubject(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subjects[id]
	if !ok || sub.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.subjects, id)
	for mid, m := range r.marks {
		if m.SubjectID == id {
			delete(r.marks, mid)
		}
	}
	return nil
}

func (r *memRepo) CreateMark(ctx context.Context, mark Mark) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marks[mark.ID] = mark
	return nil
}

func (r *memRepo) QueryMarks(ctx context.Context, ownerID, subjectID string) ([]Mark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var marks []Mark
	for _, m := range r.marks {
		if m.OwnerID == ownerID && m.SubjectID == subjectID {
			marks = append(marks, m)
		}
	}
	return marks, nil
}

func (r *memRepo) QueryAllMarks(ctx context.Context, ownerID string) ([]Mark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var marks []Mark
	for _, m := range r.marks {
		if m.OwnerID == ownerID {
			marks = append(marks, m)
		}
	}
	return marks, nil
}

func (r *memRepo) DeleteMark(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.marks[id]
	if !ok || m.OwnerID != ownerID {
		return ErrMarkNotFound
	}
	delete(r.marks, id)
	return nil
}

func setup(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	return NewService(repo), repo
}

func mustCreateSubject(t *testing.T, svc *Service, ownerID, name, code string, maxMarks float64) Subject {
	t.Helper()
	sub, err := svc.Create(context.Background(), ownerID, NewSubject{Name: name, Code: code, MaxMarks: maxMarks})
	require.NoError(t, err)
	return sub
}

func TestServiceCreateSubject(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	owner := "usr1"

	sub, err := svc.Create(ctx, owner, NewSubject{Name: "  Mathematics ", Code: "MATH101", MaxMarks: 100})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "Mathematics", sub.Name)
	assert.Equal(t, owner, sub.OwnerID)
	assert.False(t, sub.CreatedAt.IsZero())

	t.Run("DuplicateNameCaseInsensitive", func(t *testing.T) {
		_, err := svc.Create(ctx, owner, NewSubject{Name: "mathematics", Code: "MATH102", MaxMarks: 100})
		require.Error(t, err)
		verr, ok := err.(*core.ValidationError)
		require.True(t, ok)
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "name", verr.Fields[0].Field)
	})

	t.Run("DuplicateCodeCaseInsensitive", func(t *testing.T) {
		_, err := svc.Create(ctx, owner, NewSubject{Name: "Algebra", Code: "math101", MaxMarks: 100})
		require.Error(t, err)
		verr, ok := err.(*core.ValidationError)
		require.True(t, ok)
		require.Len(t, verr.Fields, 1)
		assert.Equal(t, "code", verr.Fields[0].Field)
	})

	t.Run("OtherOwnerUnaffected", func(t *testing.T) {
		_, err := svc.Create(ctx, "usr2", NewSubject{Name: "Mathematics", Code: "MATH101", MaxMarks: 100})
		assert.NoError(t, err)
	})

	t.Run("InvalidMaxMarks", func(t *testing.T) {
		_, err := svc.Create(ctx, owner, NewSubject{Name: "Physics", Code: "PHY101", MaxMarks: 0})
		assert.Error(t, err)
		_, err = svc.Create(ctx, owner, NewSubject{Name: "Physics", Code: "PHY101", MaxMarks: -10})
		assert.Error(t, err)
	})
}

func TestServiceAddMark(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	owner := "usr1"
	sub := mustCreateSubject(t, svc, owner, "Mathematics", "MATH101", 100)

	t.Run("ValueAboveMaxRejected", func(t *testing.T) {
		_, err := svc.AddMark(ctx, owner, NewMark{SubjectID: sub.ID, ExamType: ExamQuarterly, ExamDate: testExamDate, Value: 101})
		require.Error(t, err)
		assert.IsType(t, &core.ValidationError{}, err)
	})

	t.Run("ExamDateRequired", func(t *testing.T) {
		_, err := svc.AddMark(ctx, owner, NewMark{SubjectID: sub.ID, ExamType: ExamQuarterly, Value: 50})
		require.Error(t, err)
		_, err = svc.AddMark(ctx, owner, NewMark{SubjectID: sub.ID, ExamType: ExamQuarterly, ExamDate: "15/03/2026", Value: 50})
		require.Error(t, err)
	})

	t.Run("UnknownExamType", func(t *testing.T) {
		_, err := svc.AddMark(ctx, owner, NewMark{SubjectID: sub.ID, ExamType: "Final Boss", ExamDate: testExamDate, Value: 50})
		require.Error(t, err)
		assert.IsType(t, &core.ValidationError{}, err)
	})

	t.Run("UnknownSubject", func(t *testing.T) {
		_, err := svc.AddMark(ctx, owner, NewMark{SubjectID: "nope", ExamType: ExamQuarterly, ExamDate: testExamDate, Value: 50})
		require.Error(t, err)
	})

	t.Run("SingleInstanceOncePerSubject", func(t *testing.T) {
		mark, err := svc.AddMark(ctx, owner, NewMark{SubjectID: sub.ID, ExamType: ExamQuarterly, ExamNumber: 3, ExamDate: testExamDate, Value: 85})
		require.NoError(t, err)
		assert.Zero(t, mark.ExamNumber, "single-instance exams carry no number")

		_, err = svc.AddMark(ctx, owner, NewMark{SubjectID: sub.ID, ExamType: ExamQuarterly, ExamDate: testExamDate, Value: 90})
		require.Error(t, err)
		assert.IsType(t, &core.ValidationError{}, err)
	})

	t.Run("NumberedExamsNeedUniqueNumbers", func(t *testing.T) {
		_, err := svc.AddMark(ctx, owner, NewMark{SubjectID: sub.ID, ExamType: ExamUnitTest, ExamDate: testExamDate, Value: 40})
		require.Error(t, err, "exam number is required")

		_, err = svc.AddMark(ctx, owner, NewMark{SubjectID: sub.ID, ExamType: ExamUnitTest, ExamNumber: 1, ExamDate: testExamDate, Value: 40})
		require.NoError(t, err)
		_, err = svc.AddMark(ctx, owner, NewMark{SubjectID: sub.ID, ExamType: ExamUnitTest, ExamNumber: 2, ExamDate: testExamDate, Value: 45})
		require.NoError(t, err)

		_, err = svc.AddMark(ctx, owner, NewMark{SubjectID: sub.ID, ExamType: ExamUnitTest, ExamNumber: 2, ExamDate: testExamDate, Value: 50})
		require.Error(t, err, "duplicate number for the same exam type")
		assert.IsType(t, &core.ValidationError{}, err)
	})
}

func TestServiceDeleteSubjectCascades(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()
	owner := "usr1"
	sub := mustCreateSubject(t, svc, owner, "Mathematics", "MATH101", 100)
	other := mustCreateSubject(t, svc, owner, "Physics", "PHY101", 100)

	_, err := svc.AddMark(ctx, owner, NewMark{SubjectID: sub.ID, ExamType: ExamQuarterly, ExamDate: testExamDate, Value: 80})
	require.NoError(t, err)
	_, err = svc.AddMark(ctx, owner, NewMark{SubjectID: other.ID, ExamType: ExamQuarterly, ExamDate: testExamDate, Value: 70})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner, sub.ID))
	_, err = svc.GetByID(ctx, owner, sub.ID)
	assert.Equal(t, ErrNotFound, errors.Cause(err))

	repo.mu.RLock()
	defer repo.mu.RUnlock()
	for _, m := range repo.marks {
		assert.NotEqual(t, sub.ID, m.SubjectID, "marks of a deleted subject must be gone")
	}
	assert.Len(t, repo.marks, 1)
}

func TestServiceStats(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	owner := "usr1"
	math := mustCreateSubject(t, svc, owner, "Mathematics", "MATH101", 100)
	phy := mustCreateSubject(t, svc, owner, "Physics", "PHY101", 50)
	mustCreateSubject(t, svc, owner, "Chemistry", "CHEM101", 100)

	_, err := svc.AddMark(ctx, owner, NewMark{SubjectID: math.ID, ExamType: ExamQuarterly, ExamDate: testExamDate, Value: 90})
	require.NoError(t, err)
	_, err = svc.AddMark(ctx, owner, NewMark{SubjectID: math.ID, ExamType: ExamUnitTest, ExamNumber: 1, ExamDate: testExamDate, Value: 70})
	require.NoError(t, err)
	_, err = svc.AddMark(ctx, owner, NewMark{SubjectID: phy.ID, ExamType: ExamQuarterly, ExamDate: testExamDate, Value: 30})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, owner)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	byName := make(map[string]SubjectStats, len(stats))
	for _, st := range stats {
		byName[st.Subject.Name] = st
	}

	assert.InDelta(t, 80, byName["Mathematics"].AveragePct, 0.001)
	assert.Equal(t, BandExcellent, byName["Mathematics"].Band)
	assert.InDelta(t, 60, byName["Physics"].AveragePct, 0.001)
	assert.Equal(t, BandGood, byName["Physics"].Band)
	assert.Zero(t, byName["Chemistry"].AveragePct)
	assert.Equal(t, BandNeedsImprovement, byName["Chemistry"].Band)

	ov, err := svc.Overview(ctx, owner)
	require.NoError(t, err)
	require.Len(t, ov.Subjects, 3)
	assert.InDelta(t, (90+70+60)/3.0, ov.OverallPct, 0.001)
	assert.Equal(t, BandGood, ov.Band)

	require.Len(t, ov.ExamTypes, 2)
	assert.Equal(t, ExamQuarterly, ov.ExamTypes[0].ExamType)
	assert.Equal(t, 2, ov.ExamTypes[0].Count)
	assert.InDelta(t, (90+60)/2.0, ov.ExamTypes[0].AveragePct, 0.001)
	assert.Equal(t, ExamUnitTest, ov.ExamTypes[1].ExamType)
	assert.InDelta(t, 70, ov.ExamTypes[1].AveragePct, 0.001)
}

func TestPerformanceBand(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{100, BandExcellent},
		{80, BandExcellent},
		{79.9, BandGood},
		{60, BandGood},
		{59.9, BandNeedsImprovement},
		{0, BandNeedsImprovement},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PerformanceBand(tt.pct))
	}
}

func TestExamLabel(t *testing.T) {
	assert.Equal(t, "Quarterly", ExamLabel(Mark{ExamType: ExamQuarterly}))
	assert.Equal(t, "Unit Test 2", ExamLabel(Mark{ExamType: ExamUnitTest, ExamNumber: 2}))
	assert.Equal(t, "Mid-Term 1", ExamLabel(Mark{ExamType: ExamMidTerm, ExamNumber: 1}))
}
