package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhubapp/studyhub/core"
)

type memRepo struct {
	mu        sync.RWMutex
	reminders map[string]Reminder
}

var _ Repository = (*memRepo)(nil)

func newMemRepo() *memRepo { return &memRepo{reminders: make(map[string]Reminder)} }

func (r *memRepo) CreateReminder(ctx context.Context, rem Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reminders[rem.ID] = rem
	return nil
}

func (r *memRepo) GetReminder(ctx context.Context, ownerID, id string) (Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rem, ok := r.reminders[id]
	if !ok || rem.OwnerID != ownerID {
		return Reminder{}, ErrNotFound
	}
	return rem, nil
}

func (r *memRepo) GetReminderByID(ctx context.Context, id string) (Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rem, ok := r.reminders[id]
	if !ok {
		return Reminder{}, ErrNotFound
	}
	return rem, nil
}

func (r *memRepo) QueryReminders(ctx context.Context, ownerID string) ([]Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var rems []Reminder
	for _, rem := range r.reminders {
		if rem.OwnerID == ownerID {
			rems = append(rems, rem)
		}
	}
	return rems, nil
}

func (r *memRepo) QueryAllReminders(ctx context.Context) ([]Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var rems []Reminder
	for _, rem := range r.reminders {
		rems = append(rems, rem)
	}
	return rems, nil
}

func (r *memRepo) DeleteReminder(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.reminders[id]
	if !ok || rem.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.reminders, id)
	return nil
}

type notifierRecorder struct {
	mu  sync.Mutex
	due []Reminder
}

func (n *notifierRecorder) ReminderDue(ownerID string, rem Reminder) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.due = append(n.due, rem)
}

func (n *notifierRecorder) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.due)
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

func setup(t *testing.T) (*Service, *memRepo, *notifierRecorder) {
	t.Helper()
	repo := newMemRepo()
	notifier := &notifierRecorder{}
	svc := NewService(repo, notifier, nopLogger{})
	t.Cleanup(svc.Close)
	t.Cleanup(func() { nowFunc = time.Now })
	return svc, repo, notifier
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		nr   NewReminder
	}{
		{"missing title", NewReminder{Date: "2026-09-01"}},
		{"missing date", NewReminder{Title: "Exam"}},
		{"malformed date", NewReminder{Title: "Exam", Date: "01/09/2026"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "usr1", tt.nr)
			assert.Error(t, err)
		})
	}
}

func TestServiceCreateArmsFutureOnly(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	future := time.Now().AddDate(0, 0, 7).Format(DateLayout)
	rem, err := svc.Create(ctx, "usr1", NewReminder{Title: "Submit report", Date: future})
	require.NoError(t, err)
	assert.True(t, svc.armed(rem.ID))

	past := time.Now().AddDate(0, 0, -1).Format(DateLayout)
	old, err := svc.Create(ctx, "usr1", NewReminder{Title: "Yesterday", Date: past})
	require.NoError(t, err, "past dates are stored, just never armed")
	assert.False(t, svc.armed(old.ID))
}

func TestServiceAlertFires(t *testing.T) {
	svc, _, notifier := setup(t)
	ctx := context.Background()

	// pin "now" a hair before today's alert instant so the timer fires
	// almost immediately in real time
	today := time.Now().In(svc.loc)
	alertAt := time.Date(today.Year(), today.Month(), today.Day(), alertHour, 0, 0, 0, svc.loc)
	nowFunc = func() time.Time { return alertAt.Add(-30 * time.Millisecond) }

	rem, err := svc.Create(ctx, "usr1", NewReminder{Title: "Morning review", Date: today.Format(DateLayout)})
	require.NoError(t, err)
	require.True(t, svc.armed(rem.ID))

	assert.Eventually(t, func() bool { return notifier.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.False(t, svc.armed(rem.ID))
	assert.Equal(t, "Morning review", notifier.due[0].Title)
}

func TestServiceQueryByDateAndMonth(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "usr1", NewReminder{Title: "Exam", Date: "2099-04-10"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "usr1", NewReminder{Title: "Deadline", Date: "2099-04-25"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "usr1", NewReminder{Title: "Trip", Date: "2099-05-01"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "usr2", NewReminder{Title: "Other owner", Date: "2099-04-10"})
	require.NoError(t, err)

	t.Run("ByDate", func(t *testing.T) {
		rems, err := svc.QueryByDate(ctx, "usr1", "2099-04-10")
		require.NoError(t, err)
		require.Len(t, rems, 1)
		assert.Equal(t, "Exam", rems[0].Title)
	})

	t.Run("ByMonth", func(t *testing.T) {
		rems, err := svc.QueryByMonth(ctx, "usr1", "2099-04")
		require.NoError(t, err)
		assert.Len(t, rems, 2)
	})

	t.Run("BadFilters", func(t *testing.T) {
		_, err := svc.QueryByDate(ctx, "usr1", "10/04/2099")
		assert.IsType(t, &core.ValidationError{}, err)
		_, err = svc.QueryByMonth(ctx, "usr1", "April")
		assert.IsType(t, &core.ValidationError{}, err)
	})
}

func TestServiceDeleteDisarms(t *testing.T) {
	svc, _, notifier := setup(t)
	ctx := context.Background()

	future := time.Now().AddDate(0, 0, 1).Format(DateLayout)
	rem, err := svc.Create(ctx, "usr1", NewReminder{Title: "Doomed", Date: future})
	require.NoError(t, err)
	require.True(t, svc.armed(rem.ID))

	require.NoError(t, svc.Delete(ctx, "usr1", rem.ID))
	assert.False(t, svc.armed(rem.ID))
	assert.Zero(t, notifier.count())
}

func TestServiceStartRearmsStored(t *testing.T) {
	repo := newMemRepo()
	notifier := &notifierRecorder{}
	ctx := context.Background()

	future := time.Now().AddDate(0, 0, 3).Format(DateLayout)
	seeded := Reminder{ID: "rem1", Title: "Seeded", Date: future, OwnerID: "usr1"}
	require.NoError(t, repo.CreateReminder(ctx, seeded))
	past := Reminder{ID: "rem2", Title: "Stale", Date: "2020-01-01", OwnerID: "usr1"}
	require.NoError(t, repo.CreateReminder(ctx, past))

	svc := NewService(repo, notifier, nopLogger{})
	t.Cleanup(svc.Close)
	require.NoError(t, svc.Start(ctx))
	assert.True(t, svc.armed("rem1"))
	assert.False(t, svc.armed("rem2"))
}

func TestServiceCloseIsIdempotent(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	future := time.Now().AddDate(0, 0, 1).Format(DateLayout)
	rem, err := svc.Create(ctx, "usr1", NewReminder{Title: "Never", Date: future})
	require.NoError(t, err)

	svc.Close()
	svc.Close()
	assert.False(t, svc.armed(rem.ID))

	// arming after close is a no-op
	again, err := svc.Create(ctx, "usr1", NewReminder{Title: "After close", Date: future})
	require.NoError(t, err)
	assert.False(t, svc.armed(again.ID))
}

var _ core.Logger = nopLogger{}
