// Package notifsvc delivers user-facing event notifications. The current
// backend logs them; a push or websocket backend can replace it without
// touching the domain services.
package notifsvc

import (
	"fmt"
	"time"

	"github.com/studyhubapp/studyhub/core"
	"github.com/studyhubapp/studyhub/core/reminder"
	"github.com/studyhubapp/studyhub/core/task"
	"github.com/studyhubapp/studyhub/core/timer"
)

type LogNotifier struct {
	log core.Logger
}

var (
	_ task.Notifier     = (*LogNotifier)(nil)
	_ timer.Notifier    = (*LogNotifier)(nil)
	_ reminder.Notifier = (*LogNotifier)(nil)
)

func NewLogNotifier(log core.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) TaskDeadlineReached(t task.Task) {
	n.log.Info(fmt.Sprintf("task deadline reached: %q", t.Title), map[string]interface{}{"task_id": t.ID, "owner_id": t.OwnerID})
}

func (n *LogNotifier) TaskOverdue(t task.Task) {
	n.log.Info(fmt.Sprintf("task overdue: %q", t.Title), map[string]interface{}{"task_id": t.ID, "owner_id": t.OwnerID})
}

func (n *LogNotifier) TaskCompleted(t task.Task) {
	n.log.Info(fmt.Sprintf("task completed: %q", t.Title), map[string]interface{}{"task_id": t.ID, "owner_id": t.OwnerID})
}

func (n *LogNotifier) TimerCompleted(ownerID, label string, planned time.Duration) {
	n.log.Info(fmt.Sprintf("timer completed: %q (%s)", label, timer.FormatDuration(planned)), map[string]interface{}{"owner_id": ownerID})
}

func (n *LogNotifier) ReminderDue(ownerID string, rem reminder.Reminder) {
	n.log.Info(fmt.Sprintf("reminder due: %q", rem.Title), map[string]interface{}{"reminder_id": rem.ID, "owner_id": ownerID})
}
