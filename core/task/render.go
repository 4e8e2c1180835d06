package task

import (
	"fmt"
	"time"
)

const labelOverdue = "Overdue"

// RemainingLabel formats the time remaining before a task's deadline for
// display. It is a pure function of (task, now) and holds no state.
func RemainingLabel(t Task, now time.Time) string {
	switch t.Status {
	case StatusCompleted:
		return ""
	case StatusOverdue:
		return labelOverdue
	}

	if t.Expired(now) {
		return labelOverdue
	}

	diff := t.DeadlineAt.Sub(now)
	hours := int(diff / time.Hour)
	minutes := int(diff % time.Hour / time.Minute)
	seconds := int(diff % time.Minute / time.Second)

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
