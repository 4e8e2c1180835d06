package reminder

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core"
)

var (
	ErrNotFound = errors.New("reminder not found")

	errInvalidDate  = errors.New("date must be in YYYY-MM-DD format")
	errInvalidMonth = errors.New("month must be in YYYY-MM format")

	nowFunc = time.Now // mockable
)

type (
	// Notifier delivers the due-date alert for a reminder.
	Notifier interface {
		ReminderDue(ownerID string, rem Reminder)
	}

	Repository interface {
		CreateReminder(ctx context.Context, rem Reminder) error
		GetReminder(ctx context.Context, ownerID, id string) (Reminder, error)
		GetReminderByID(ctx context.Context, id string) (Reminder, error)
		QueryReminders(ctx context.Context, ownerID string) ([]Reminder, error)
		QueryAllReminders(ctx context.Context) ([]Reminder, error)
		DeleteReminder(ctx context.Context, ownerID, id string) error
	}

	Service struct {
		repo     Repository
		notifier Notifier
		log      core.Logger
		loc      *time.Location

		mu     sync.Mutex
		timers map[string]*time.Timer
		closed bool
	}
)

func NewService(repo Repository, notifier Notifier, log core.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
		loc:      time.Local,
		timers:   make(map[string]*time.Timer),
	}
}

// Start re-arms alerts for every stored reminder whose alert instant has not
// passed. Called once on boot.
func (svc *Service) Start(ctx context.Context) error {
	rems, err := svc.repo.QueryAllReminders(ctx)
	if err != nil {
		return errors.Wrap(err, "querying reminders")
	}
	for _, rem := range rems {
		svc.arm(rem)
	}
	return nil
}

// Close cancels every pending alert. Arming after Close is ignored.
func (svc *Service) Close() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.closed {
		return
	}
	svc.closed = true
	for id, timer := range svc.timers {
		timer.Stop()
		delete(svc.timers, id)
	}
}

func (svc *Service) Create(ctx context.Context, ownerID string, nr NewReminder) (Reminder, error) {
	if err := nr.Validate(); err != nil {
		return Reminder{}, err
	}
	rem := Reminder{
		ID:          uuid.New().String(),
		Title:       nr.Title,
		Description: nr.Description,
		Date:        nr.Date,
		OwnerID:     ownerID,
		CreatedAt:   nowFunc().UTC(),
	}
	if err := svc.repo.CreateReminder(ctx, rem); err != nil {
		return Reminder{}, errors.Wrap(err, "creating reminder")
	}
	svc.arm(rem)
	return rem, nil
}

func (svc *Service) GetByID(ctx context.Context, ownerID, id string) (Reminder, error) {
	rem, err := svc.repo.GetReminder(ctx, ownerID, id)
	return rem, errors.Wrap(err, "getting reminder")
}

func (svc *Service) Query(ctx context.Context, ownerID string) ([]Reminder, error) {
	rems, err := svc.repo.QueryReminders(ctx, ownerID)
	return rems, errors.Wrap(err, "querying reminders")
}

// QueryByDate returns the owner's reminders falling on the given day.
func (svc *Service) QueryByDate(ctx context.Context, ownerID, date string) ([]Reminder, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, core.NewValidationError(errInvalidDate, core.FieldError{Field: "date", Error: errInvalidDate.Error()})
	}
	rems, err := svc.repo.QueryReminders(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying reminders")
	}
	matches := make([]Reminder, 0)
	for _, rem := range rems {
		if rem.Date == date {
			matches = append(matches, rem)
		}
	}
	return matches, nil
}

// QueryByMonth returns the owner's reminders within the given month, for the
// calendar grid.
func (svc *Service) QueryByMonth(ctx context.Context, ownerID, month string) ([]Reminder, error) {
	if _, err := time.Parse(MonthLayout, month); err != nil {
		return nil, core.NewValidationError(errInvalidMonth, core.FieldError{Field: "month", Error: errInvalidMonth.Error()})
	}
	rems, err := svc.repo.QueryReminders(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying reminders")
	}
	matches := make([]Reminder, 0)
	for _, rem := range rems {
		if strings.HasPrefix(rem.Date, month+"-") {
			matches = append(matches, rem)
		}
	}
	return matches, nil
}

func (svc *Service) Delete(ctx context.Context, ownerID, id string) error {
	svc.disarm(id)
	return errors.Wrap(svc.repo.DeleteReminder(ctx, ownerID, id), "deleting reminder")
}

// arm schedules the reminder's alert. Alerts whose instant already passed are
// skipped; re-arming an armed reminder replaces its timer.
func (svc *Service) arm(rem Reminder) {
	at, err := rem.AlertAt(svc.loc)
	if err != nil {
		svc.log.Warn("skipping reminder with malformed date: ", rem.ID)
		return
	}
	delay := at.Sub(nowFunc())
	if delay <= 0 {
		return
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.closed {
		return
	}
	if prev, ok := svc.timers[rem.ID]; ok {
		prev.Stop()
	}
	id := rem.ID
	svc.timers[id] = time.AfterFunc(delay, func() {
		svc.mu.Lock()
		delete(svc.timers, id)
		svc.mu.Unlock()
		svc.fire(id)
	})
}

func (svc *Service) disarm(id string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if timer, ok := svc.timers[id]; ok {
		timer.Stop()
		delete(svc.timers, id)
	}
}

func (svc *Service) fire(id string) {
	rem, err := svc.repo.GetReminderByID(context.Background(), id)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			svc.log.Error("loading due reminder: ", err)
		}
		return
	}
	svc.notifier.ReminderDue(rem.OwnerID, rem)
}

// armed reports whether an alert is pending, for tests.
func (svc *Service) armed(id string) bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	_, ok := svc.timers[id]
	return ok
}
