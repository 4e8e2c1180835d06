package task

import (
	"time"

	"github.com/studyhubapp/studyhub/core"
)

// Statuses. A task starts out pending; completed and overdue are terminal.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusOverdue   = "overdue"
)

type Task struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	DurationHours int       `json:"duration_hours"`
	Status        string    `json:"status"`
	OwnerID       string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`  // UTC
	DeadlineAt    time.Time `json:"deadline_at"` // UTC; CreatedAt + DurationHours, never recomputed
}

func (t Task) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusOverdue
}

// Expired reports whether the task's deadline has passed at `now`.
func (t Task) Expired(now time.Time) bool {
	return !t.DeadlineAt.After(now)
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	DurationHours int    `json:"duration_hours" validate:"required,gt=0"`
}

func (nt *NewTask) Validate() error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	nt.Category = core.CleanString(nt.Category)
	return core.Validate.Struct(nt)
}
