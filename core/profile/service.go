// Package profile covers account-wide operations: exporting everything a
// student has stored as a single text document, and deleting the account
// with all its data.
package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core"
	"github.com/studyhubapp/studyhub/core/chat"
	"github.com/studyhubapp/studyhub/core/reminder"
	"github.com/studyhubapp/studyhub/core/subject"
	"github.com/studyhubapp/studyhub/core/task"
	"github.com/studyhubapp/studyhub/core/timer"
	"github.com/studyhubapp/studyhub/core/user"
)

const sectionRule = "==================================================\n"

const timestampLayout = "2006-01-02 15:04:05"

var (
	errWrongPassword = errors.New("password is incorrect")

	nowFunc = time.Now // mockable
)

type (
	// Export is a rendered user-data document with its download filename.
	Export struct {
		Filename string `json:"filename"`
		Content  string `json:"content"`
	}

	Service struct {
		users     user.Service
		tasks     *task.Service
		subjects  *subject.Service
		reminders *reminder.Service
		timers    *timer.Engine
		chats     *chat.Service
	}
)

func NewService(
	users user.Service,
	tasks *task.Service,
	subjects *subject.Service,
	reminders *reminder.Service,
	timers *timer.Engine,
	chats *chat.Service,
) *Service {
	return &Service{
		users:     users,
		tasks:     tasks,
		subjects:  subjects,
		reminders: reminders,
		timers:    timers,
		chats:     chats,
	}
}

// ExportData gathers everything the owner has stored into one text document.
func (svc *Service) ExportData(ctx context.Context, ownerID string) (Export, error) {
	usr, err := svc.users.GetByID(ctx, ownerID)
	if err != nil {
		return Export{}, errors.Wrap(err, "getting user")
	}

	var sb strings.Builder
	sb.WriteString(sectionRule)
	sb.WriteString("      STUDENT PRODUCTIVITY APP - USER DATA\n")
	sb.WriteString(sectionRule)
	fmt.Fprintf(&sb, "\nGenerated Date: %s\n\n", nowFunc().Format(timestampLayout))

	svc.writeUserSection(&sb, usr)
	if err := svc.writeTaskSection(ctx, &sb, ownerID); err != nil {
		return Export{}, err
	}
	if err := svc.writeAcademicSection(ctx, &sb, ownerID); err != nil {
		return Export{}, err
	}
	if err := svc.writeReminderSection(ctx, &sb, ownerID); err != nil {
		return Export{}, err
	}
	if err := svc.writeTimerSection(ctx, &sb, ownerID); err != nil {
		return Export{}, err
	}
	if err := svc.writeChatSection(ctx, &sb, ownerID); err != nil {
		return Export{}, err
	}

	sb.WriteString(sectionRule)
	sb.WriteString("END OF DOCUMENT\n")
	sb.WriteString(sectionRule)

	return Export{
		Filename: fmt.Sprintf("student_productivity_data_%s.txt", nowFunc().Format("2006-01-02")),
		Content:  sb.String(),
	}, nil
}

func writeSectionHeader(sb *strings.Builder, title string) {
	sb.WriteString(sectionRule)
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(sectionRule)
	sb.WriteString("\n")
}

func (svc *Service) writeUserSection(sb *strings.Builder, usr user.User) {
	writeSectionHeader(sb, "USER INFORMATION")
	fmt.Fprintf(sb, "Name: %s\n", usr.Name)
	fmt.Fprintf(sb, "Email: %s\n", usr.Email)
	fmt.Fprintf(sb, "Account Created: %s\n\n", usr.CreatedAt.Format(timestampLayout))
}

func (svc *Service) writeTaskSection(ctx context.Context, sb *strings.Builder, ownerID string) error {
	writeSectionHeader(sb, "TASK INFORMATION")
	tasks, err := svc.tasks.Query(ctx, ownerID, nil)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	sb.WriteString("Tasks:\n\n")
	for i, t := range tasks {
		fmt.Fprintf(sb, "Task #%d: %s\n", i+1, t.Title)
		fmt.Fprintf(sb, "Description: %s\n", orNA(t.Description))
		fmt.Fprintf(sb, "Category: %s\n", orNA(t.Category))
		fmt.Fprintf(sb, "Hours to Complete: %d\n", t.DurationHours)
		fmt.Fprintf(sb, "Status: %s\n\n", strings.Title(t.Status))
	}
	if len(tasks) == 0 {
		sb.WriteString("No tasks found.\n\n")
	}
	return nil
}

func (svc *Service) writeAcademicSection(ctx context.Context, sb *strings.Builder, ownerID string) error {
	writeSectionHeader(sb, "ACADEMIC PERFORMANCE INFORMATION")
	stats, err := svc.subjects.Stats(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "querying subject stats")
	}

	sb.WriteString("Subjects:\n\n")
	for _, st := range stats {
		fmt.Fprintf(sb, "Subject: %s (%s)\n", st.Subject.Name, st.Subject.Code)
		fmt.Fprintf(sb, "Maximum Marks: %g\n\n", st.Subject.MaxMarks)
	}
	if len(stats) == 0 {
		sb.WriteString("No subjects found.\n\n")
	}

	sb.WriteString("Marks:\n\n")
	count := 0
	for _, st := range stats {
		for _, m := range st.Marks {
			count++
			fmt.Fprintf(sb, "Mark #%d:\n", count)
			fmt.Fprintf(sb, "Subject: %s\n", st.Subject.Name)
			fmt.Fprintf(sb, "Value: %g / %g\n", m.Value, st.Subject.MaxMarks)
			fmt.Fprintf(sb, "Percentage: %.2f%%\n", m.Percentage(st.Subject.MaxMarks))
			fmt.Fprintf(sb, "Exam Type: %s\n", subject.ExamLabel(m))
			fmt.Fprintf(sb, "Exam Date: %s\n\n", m.ExamDate)
		}
	}
	if count == 0 {
		sb.WriteString("No marks found.\n\n")
	}
	return nil
}

func (svc *Service) writeReminderSection(ctx context.Context, sb *strings.Builder, ownerID string) error {
	writeSectionHeader(sb, "REMINDER INFORMATION")
	rems, err := svc.reminders.Query(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "querying reminders")
	}
	sb.WriteString("Reminders:\n\n")
	for i, rem := range rems {
		fmt.Fprintf(sb, "Reminder #%d: %s\n", i+1, rem.Title)
		fmt.Fprintf(sb, "Description: %s\n", orNA(rem.Description))
		fmt.Fprintf(sb, "Date: %s\n\n", rem.Date)
	}
	if len(rems) == 0 {
		sb.WriteString("No reminders found.\n\n")
	}
	return nil
}

func (svc *Service) writeTimerSection(ctx context.Context, sb *strings.Builder, ownerID string) error {
	writeSectionHeader(sb, "TIMER HISTORY")
	runs, err := svc.timers.History(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "querying timer history")
	}
	sb.WriteString("Sessions:\n\n")
	for i, run := range runs {
		fmt.Fprintf(sb, "Session #%d: %s\n", i+1, run.Label)
		fmt.Fprintf(sb, "Type: %s\n", strings.Title(run.Type))
		fmt.Fprintf(sb, "Duration: %s\n", run.DurationDisplay)
		fmt.Fprintf(sb, "Completed On: %s\n\n", run.CompletedAt.Format(timestampLayout))
	}
	if len(runs) == 0 {
		sb.WriteString("No sessions found.\n\n")
	}
	return nil
}

func (svc *Service) writeChatSection(ctx context.Context, sb *strings.Builder, ownerID string) error {
	writeSectionHeader(sb, "SAVED AI CHAT RESPONSES")
	resps, err := svc.chats.Query(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "querying saved responses")
	}
	sb.WriteString("Saved Responses:\n\n")
	for i, resp := range resps {
		fmt.Fprintf(sb, "Response #%d:\n", i+1)
		fmt.Fprintf(sb, "Response: %s\n", resp.Content)
		fmt.Fprintf(sb, "Saved On: %s\n\n", resp.CreatedAt.Format(timestampLayout))
	}
	if len(resps) == 0 {
		sb.WriteString("No saved AI responses found.\n\n")
	}
	return nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// DeleteAccount permanently removes the user and every piece of data they
// own. The caller must supply the account password.
func (svc *Service) DeleteAccount(ctx context.Context, ownerID, password string) error {
	usr, err := svc.users.GetByID(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "getting user")
	}
	if err := usr.CheckPassword(password); err != nil {
		return core.NewValidationError(errWrongPassword, core.FieldError{Field: "password", Error: errWrongPassword.Error()})
	}

	// per-domain data first so a failure leaves the account intact
	tasks, err := svc.tasks.Query(ctx, ownerID, nil)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	for _, t := range tasks {
		if err := svc.tasks.Delete(ctx, ownerID, t.ID); err != nil {
			return errors.Wrap(err, "deleting task")
		}
	}

	subs, err := svc.subjects.Query(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	for _, sub := range subs {
		if err := svc.subjects.Delete(ctx, ownerID, sub.ID); err != nil {
			return errors.Wrap(err, "deleting subject")
		}
	}

	rems, err := svc.reminders.Query(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "querying reminders")
	}
	for _, rem := range rems {
		if err := svc.reminders.Delete(ctx, ownerID, rem.ID); err != nil {
			return errors.Wrap(err, "deleting reminder")
		}
	}

	if err := svc.timers.Reset(ctx, ownerID); err != nil {
		return errors.Wrap(err, "resetting timer session")
	}
	if err := svc.timers.ClearHistory(ctx, ownerID); err != nil {
		return errors.Wrap(err, "clearing timer history")
	}

	resps, err := svc.chats.Query(ctx, ownerID)
	if err != nil {
		return errors.Wrap(err, "querying saved responses")
	}
	for _, resp := range resps {
		if err := svc.chats.Delete(ctx, ownerID, resp.ID); err != nil {
			return errors.Wrap(err, "deleting saved response")
		}
	}

	return errors.Wrap(svc.users.Delete(ctx, ownerID), "deleting user")
}
