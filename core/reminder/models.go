package reminder

import (
	"time"

	"github.com/studyhubapp/studyhub/core"
)

// DateLayout is the wire format for reminder dates.
const DateLayout = "2006-01-02"

// MonthLayout is the wire format for month filters.
const MonthLayout = "2006-01"

// alertHour is the local hour at which a reminder for a date fires.
const alertHour = 9

type (
	Reminder struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description,omitempty"`
		Date        string    `json:"date"` // DateLayout
		OwnerID     string    `json:"-"`
		CreatedAt   time.Time `json:"created_at"`
	}

	NewReminder struct {
		Title       string `json:"title" validate:"required"`
		Description string `json:"description"`
		Date        string `json:"date" validate:"required,dateonly"`
	}
)

func (nr *NewReminder) Validate() error {
	nr.Title = core.CleanString(nr.Title)
	nr.Description = core.CleanString(nr.Description)
	nr.Date = core.CleanString(nr.Date)
	return core.Validate.Struct(nr)
}

// AlertAt is the instant the reminder should fire in loc.
func (r *Reminder) AlertAt(loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, r.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), alertHour, 0, 0, 0, loc), nil
}
