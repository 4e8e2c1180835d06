package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core"
)

var (
	// errors
	ErrNotFound = errors.New("task not found")
)

// DefaultSweepInterval is how often pending deadlines are re-checked
// independently of their one-shot callbacks.
const DefaultSweepInterval = time.Minute

type (
	Repository interface {
		CreateTask(ctx context.Context, t Task) (Task, error)
		GetTask(ctx context.Context, ownerID, id string) (Task, error)
		GetTaskByID(ctx context.Context, id string) (Task, error)
		// QueryTasks returns the owner's tasks, newest first unless overridden.
		QueryTasks(ctx context.Context, ownerID string, ordering []core.DBOrdering) ([]Task, error)
		// QueryPendingTasks returns every pending task across owners.
		QueryPendingTasks(ctx context.Context) ([]Task, error)
		// TransitionStatus conditionally moves a task from one status to
		// another and reports whether the transition was applied. The check
		// and the write are a single atomic operation.
		TransitionStatus(ctx context.Context, id, from, to string) (bool, error)
		DeleteTask(ctx context.Context, ownerID, id string) error
	}

	// Notifier delivers user-facing task events. Implementations must expect
	// at most one call per task per event thanks to the conditional
	// transitions guarding them.
	Notifier interface {
		TaskDeadlineReached(t Task)
		TaskOverdue(t Task)
		TaskCompleted(t Task)
	}

	Service struct {
		repo     Repository
		notifier Notifier
		log      core.Logger
		sched    *Scheduler
	}
)

func NewService(repo Repository, notifier Notifier, log core.Logger) *Service {
	svc := &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
	svc.sched = NewScheduler(svc.onDeadline)
	return svc
}

// Start arms a deadline callback for every pending task and starts the
// periodic sweep. Called once at boot; safe to call again after a storage
// reconnect since Arm is idempotent per task id.
func (svc *Service) Start(ctx context.Context, sweepEvery time.Duration) error {
	if err := svc.RearmAll(ctx); err != nil {
		return err
	}
	svc.sched.StartSweep(sweepEvery, svc.sweep)
	return nil
}

// Close tears down every live deadline callback and the sweep.
func (svc *Service) Close() {
	svc.sched.Close()
}

func (svc *Service) Create(ctx context.Context, ownerID string, nt NewTask) (Task, error) {
	if err := nt.Validate(); err != nil {
		return Task{}, err
	}

	now := nowFunc().UTC()
	t := Task{
		ID:            uuid.New().String(),
		Title:         nt.Title,
		Description:   nt.Description,
		Category:      nt.Category,
		DurationHours: nt.DurationHours,
		Status:        StatusPending,
		OwnerID:       ownerID,
		CreatedAt:     now,
		DeadlineAt:    now.Add(time.Duration(nt.DurationHours) * time.Hour),
	}
	t, err := svc.repo.CreateTask(ctx, t)
	if err != nil {
		return Task{}, errors.Wrap(err, "creating task")
	}
	svc.armTask(ctx, t)
	return t, nil
}

func (svc *Service) Get(ctx context.Context, ownerID, id string) (Task, error) {
	return svc.repo.GetTask(ctx, ownerID, id)
}

func (svc *Service) Query(ctx context.Context, ownerID string, ordering []core.DBOrdering) ([]Task, error) {
	return svc.repo.QueryTasks(ctx, ownerID, ordering)
}

// Complete moves a pending task to completed. Calling it on an already
// terminal task is a no-op: no error, no second notification.
func (svc *Service) Complete(ctx context.Context, ownerID, id string) (Task, error) {
	t, err := svc.repo.GetTask(ctx, ownerID, id)
	if err != nil {
		return Task{}, err
	}
	if t.Terminal() {
		return t, nil
	}

	switched, err := svc.repo.TransitionStatus(ctx, t.ID, StatusPending, StatusCompleted)
	if err != nil {
		return Task{}, errors.Wrap(err, "completing task")
	}
	if switched {
		t.Status = StatusCompleted
		svc.sched.Disarm(t.ID)
		svc.notifier.TaskCompleted(t)
	}
	return svc.repo.GetTask(ctx, ownerID, id)
}

func (svc *Service) Delete(ctx context.Context, ownerID, id string) error {
	svc.sched.Disarm(id)
	return svc.repo.DeleteTask(ctx, ownerID, id)
}

// RemainingLabelFor renders the countdown label for one task, transitioning
// it to overdue first when render-time detection beats the deadline callback.
func (svc *Service) RemainingLabelFor(ctx context.Context, ownerID, id string, now time.Time) (string, error) {
	t, err := svc.repo.GetTask(ctx, ownerID, id)
	if err != nil {
		return "", err
	}
	if t.Status == StatusPending && t.Expired(now) {
		if t, err = svc.evaluateExpiry(ctx, t, now); err != nil {
			return "", err
		}
	}
	return RemainingLabel(t, now), nil
}

// RearmAll re-arms a deadline callback for every pending task, replacing any
// live callbacks (e.g. after the task set is reloaded).
func (svc *Service) RearmAll(ctx context.Context) error {
	tasks, err := svc.repo.QueryPendingTasks(ctx)
	if err != nil {
		return errors.Wrap(err, "querying pending tasks")
	}
	for _, t := range tasks {
		svc.armTask(ctx, t)
	}
	return nil
}

func (svc *Service) armTask(ctx context.Context, t Task) {
	if t.Status != StatusPending {
		return
	}
	now := nowFunc()
	if t.Expired(now) {
		// loaded after its deadline already passed; self-heal instead of scheduling
		if _, err := svc.evaluateExpiry(ctx, t, now); err != nil {
			svc.log.Error("marking expired task overdue", err)
		}
		return
	}
	svc.sched.Arm(t.ID, t.DeadlineAt)
}

// onDeadline is the one-shot callback fired by the scheduler.
func (svc *Service) onDeadline(taskID string) {
	ctx := context.Background()
	t, err := svc.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			svc.log.Error("loading task on deadline fire", err)
		}
		return
	}
	svc.notifier.TaskDeadlineReached(t)
	if _, err := svc.evaluateExpiry(ctx, t, nowFunc()); err != nil {
		svc.log.Error("marking fired task overdue", err)
	}
}

// Sweep re-evaluates every pending task's deadline. It backstops one-shot
// callbacks that a throttled or restarted process may have missed.
func (svc *Service) Sweep(ctx context.Context) error {
	tasks, err := svc.repo.QueryPendingTasks(ctx)
	if err != nil {
		return errors.Wrap(err, "querying pending tasks")
	}
	now := nowFunc()
	for _, t := range tasks {
		if !t.Expired(now) {
			continue
		}
		if _, err := svc.evaluateExpiry(ctx, t, now); err != nil {
			svc.log.Error("sweeping expired task", err)
		}
	}
	return nil
}

func (svc *Service) sweep() {
	if err := svc.Sweep(context.Background()); err != nil {
		svc.log.Error("deadline sweep", err)
	}
}

// evaluateExpiry is the single authority on deadline expiry. The deadline
// callback, the sweep and render-time detection all funnel through it; the
// conditional transition keeps their race benign and the notification single.
func (svc *Service) evaluateExpiry(ctx context.Context, t Task, now time.Time) (Task, error) {
	if t.Status != StatusPending || !t.Expired(now) {
		return t, nil
	}

	switched, err := svc.repo.TransitionStatus(ctx, t.ID, StatusPending, StatusOverdue)
	if err != nil {
		return t, errors.Wrap(err, "transitioning task to overdue")
	}
	t.Status = StatusOverdue
	svc.sched.Disarm(t.ID)
	if switched {
		svc.notifier.TaskOverdue(t)
	}
	return t, nil
}
