package profile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhubapp/studyhub/core/chat"
	"github.com/studyhubapp/studyhub/core/reminder"
	"github.com/studyhubapp/studyhub/core/subject"
	"github.com/studyhubapp/studyhub/core/task"
	"github.com/studyhubapp/studyhub/core/timer"
	"github.com/studyhubapp/studyhub/core/user"
	"github.com/studyhubapp/studyhub/services/email"
	dummydb "github.com/studyhubapp/studyhub/storage/database/dummy"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

type nopNotifier struct{}

func (nopNotifier) TaskDeadlineReached(t task.Task)                            {}
func (nopNotifier) TaskOverdue(t task.Task)                                    {}
func (nopNotifier) TaskCompleted(t task.Task)                                  {}
func (nopNotifier) TimerCompleted(ownerID, label string, d time.Duration)      {}
func (nopNotifier) ReminderDue(ownerID string, rem reminder.Reminder)          {}

type fixedGenerator struct{}

func (fixedGenerator) Generate(ctx context.Context, question string) (string, error) {
	return "A fixed answer.", nil
}

type env struct {
	svc       *Service
	users     user.Service
	tasks     *task.Service
	subjects  *subject.Service
	reminders *reminder.Service
	timers    *timer.Engine
	chats     *chat.Service
}

func setup(t *testing.T) *env {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)

	log := nopLogger{}
	notif := nopNotifier{}

	users := user.NewService(dummydb.NewUserRepository(db), email.NewMockService())
	tasks := task.NewService(dummydb.NewTaskRepository(db), notif, log)
	subjects := subject.NewService(dummydb.NewSubjectRepository(db))
	reminders := reminder.NewService(dummydb.NewReminderRepository(db), notif, log)
	timers := timer.NewEngine(dummydb.NewTimerRepository(db), notif, log)
	chats := chat.NewService(fixedGenerator{}, dummydb.NewChatRepository(db), log)
	t.Cleanup(tasks.Close)
	t.Cleanup(reminders.Close)
	t.Cleanup(timers.Close)

	return &env{
		svc:       NewService(users, tasks, subjects, reminders, timers, chats),
		users:     users,
		tasks:     tasks,
		subjects:  subjects,
		reminders: reminders,
		timers:    timers,
		chats:     chats,
	}
}

func seedUser(t *testing.T, e *env) user.User {
	t.Helper()
	usr, err := e.users.Create(context.Background(), user.NewUser{
		Name:            "Jo Student",
		Email:           fmt.Sprintf("jo%d@test.com", time.Now().UnixNano()),
		Password:        "Secret123!",
		PasswordConfirm: "Secret123!",
	})
	require.NoError(t, err)
	return usr
}

func TestServiceExportData(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	usr := seedUser(t, e)

	_, err := e.tasks.Create(ctx, usr.ID, task.NewTask{Title: "Finish lab report", Category: "homework", DurationHours: 3})
	require.NoError(t, err)

	sub, err := e.subjects.Create(ctx, usr.ID, subject.NewSubject{Name: "Mathematics", Code: "MATH101", MaxMarks: 100})
	require.NoError(t, err)
	_, err = e.subjects.AddMark(ctx, usr.ID, subject.NewMark{SubjectID: sub.ID, ExamType: subject.ExamQuarterly, ExamDate: "2026-03-15", Value: 85})
	require.NoError(t, err)

	_, err = e.reminders.Create(ctx, usr.ID, reminder.NewReminder{Title: "Mock exam", Date: time.Now().AddDate(0, 1, 0).Format(reminder.DateLayout)})
	require.NoError(t, err)

	_, err = e.chats.Save(ctx, usr.ID, "Saved assistant answer")
	require.NoError(t, err)

	export, err := e.svc.ExportData(ctx, usr.ID)
	require.NoError(t, err)

	want := fmt.Sprintf("student_productivity_data_%s.txt", time.Now().Format("2006-01-02"))
	assert.Equal(t, want, export.Filename)

	for _, fragment := range []string{
		"STUDENT PRODUCTIVITY APP - USER DATA",
		"USER INFORMATION",
		"Name: Jo Student",
		"TASK INFORMATION",
		"Task #1: Finish lab report",
		"Hours to Complete: 3",
		"Status: Pending",
		"ACADEMIC PERFORMANCE INFORMATION",
		"Subject: Mathematics (MATH101)",
		"Percentage: 85.00%",
		"Exam Type: Quarterly",
		"Exam Date: 2026-03-15",
		"REMINDER INFORMATION",
		"Reminder #1: Mock exam",
		"TIMER HISTORY",
		"No sessions found.",
		"SAVED AI CHAT RESPONSES",
		"Response: Saved assistant answer",
		"END OF DOCUMENT",
	} {
		assert.Contains(t, export.Content, fragment)
	}
}

func TestServiceExportDataEmptySections(t *testing.T) {
	e := setup(t)
	usr := seedUser(t, e)

	export, err := e.svc.ExportData(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.Contains(t, export.Content, "No tasks found.")
	assert.Contains(t, export.Content, "No subjects found.")
	assert.Contains(t, export.Content, "No marks found.")
	assert.Contains(t, export.Content, "No reminders found.")
	assert.Contains(t, export.Content, "No saved AI responses found.")
}

func TestServiceDeleteAccount(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	usr := seedUser(t, e)

	_, err := e.tasks.Create(ctx, usr.ID, task.NewTask{Title: "Doomed task", DurationHours: 1})
	require.NoError(t, err)
	sub, err := e.subjects.Create(ctx, usr.ID, subject.NewSubject{Name: "Physics", Code: "PHY101", MaxMarks: 50})
	require.NoError(t, err)
	_, err = e.subjects.AddMark(ctx, usr.ID, subject.NewMark{SubjectID: sub.ID, ExamType: subject.ExamAnnually, ExamDate: "2026-03-15", Value: 40})
	require.NoError(t, err)
	_, err = e.reminders.Create(ctx, usr.ID, reminder.NewReminder{Title: "Doomed reminder", Date: time.Now().AddDate(0, 0, 2).Format(reminder.DateLayout)})
	require.NoError(t, err)
	_, err = e.chats.Save(ctx, usr.ID, "Doomed response")
	require.NoError(t, err)

	t.Run("WrongPassword", func(t *testing.T) {
		err := e.svc.DeleteAccount(ctx, usr.ID, "not-the-password")
		require.Error(t, err)

		_, err = e.users.GetByID(ctx, usr.ID)
		assert.NoError(t, err, "account survives a failed confirmation")
	})

	t.Run("Deletes everything", func(t *testing.T) {
		require.NoError(t, e.svc.DeleteAccount(ctx, usr.ID, "Secret123!"))

		_, err := e.users.GetByID(ctx, usr.ID)
		assert.Error(t, err)

		tasks, err := e.tasks.Query(ctx, usr.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, tasks)

		subs, err := e.subjects.Query(ctx, usr.ID)
		require.NoError(t, err)
		assert.Empty(t, subs)

		rems, err := e.reminders.Query(ctx, usr.ID)
		require.NoError(t, err)
		assert.Empty(t, rems)

		resps, err := e.chats.Query(ctx, usr.ID)
		require.NoError(t, err)
		assert.Empty(t, resps)
	})
}
