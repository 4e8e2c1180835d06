package task

import (
	"context"
	"log"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core"
)

// in-mem repo for service tests

type memRepo struct {
	mu    sync.Mutex
	tasks map[string]Task
}

func newMemRepo() *memRepo {
	return &memRepo{tasks: make(map[string]Task)}
}

func (r *memRepo) CreateTask(_ context.Context, t Task) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = t
	return t, nil
}

func (r *memRepo) GetTask(_ context.Context, ownerID, id string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok && t.OwnerID == ownerID {
		return t, nil
	}
	return Task{}, ErrNotFound
}

func (r *memRepo) GetTaskByID(_ context.Context, id string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		return t, nil
	}
	return Task{}, ErrNotFound
}

func (r *memRepo) QueryTasks(_ context.Context, ownerID string, _ []core.DBOrdering) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var tasks []Task
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	return tasks, nil
}

func (r *memRepo) QueryPendingTasks(_ context.Context) ([]Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var tasks []Task
	for _, t := range r.tasks {
		if t.Status == StatusPending {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (r *memRepo) TransitionStatus(_ context.Context, id, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return false, ErrNotFound
	}
	if t.Status != from {
		return false, nil
	}
	t.Status = to
	r.tasks[id] = t
	return true, nil
}

func (r *memRepo) DeleteTask(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok && t.OwnerID == ownerID {
		delete(r.tasks, id)
	}
	return nil
}

type notifierRecorder struct {
	mu        sync.Mutex
	deadline  int
	overdue   int
	completed int
}

func (n *notifierRecorder) TaskDeadlineReached(Task) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deadline++
}

func (n *notifierRecorder) TaskOverdue(Task) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.overdue++
}

func (n *notifierRecorder) TaskCompleted(Task) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed++
}

func (n *notifierRecorder) counts() (int, int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.deadline, n.overdue, n.completed
}

type stdLogger struct{ std *log.Logger }

func (l stdLogger) Debug(msg string, args ...interface{}) { l.std.Println(msg, args) }
func (l stdLogger) Info(msg string, args ...interface{})  { l.std.Println(msg, args) }
func (l stdLogger) Warn(msg string, args ...interface{})  { l.std.Println(msg, args) }
func (l stdLogger) Error(msg string, args ...interface{}) { l.std.Println(msg, args) }
func (l stdLogger) Fatal(msg string, args ...interface{}) { l.std.Fatalln(msg, args) }

func setup() (*Service, *memRepo, *notifierRecorder) {
	repo := newMemRepo()
	notif := &notifierRecorder{}
	svc := NewService(repo, notif, stdLogger{std: log.New(os.Stdout, "", log.LstdFlags)})
	return svc, repo, notif
}

func TestService_Create(t *testing.T) {
	svc, _, _ := setup()
	defer svc.Close()
	ctx := context.Background()

	created := time.Date(2021, time.June, 1, 8, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return created }
	defer func() { nowFunc = time.Now }()

	tk, err := svc.Create(ctx, "owner1", NewTask{Title: "Revise algebra", Category: "Study", DurationHours: 3})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if tk.Status != StatusPending {
		t.Errorf("status = %q, want pending", tk.Status)
	}
	if !tk.DeadlineAt.Equal(tk.CreatedAt.Add(3 * time.Hour)) {
		t.Errorf("deadline = %v, want createdAt+3h", tk.DeadlineAt)
	}
	if !svc.sched.Armed(tk.ID) {
		t.Error("created task should have a live deadline callback")
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc, repo, _ := setup()
	defer svc.Close()
	ctx := context.Background()

	tests := []struct {
		name string
		nt   NewTask
	}{
		{name: "zero duration", nt: NewTask{Title: "Read", DurationHours: 0}},
		{name: "negative duration", nt: NewTask{Title: "Read", DurationHours: -2}},
		{name: "empty title", nt: NewTask{Title: "   ", DurationHours: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "owner1", tt.nt)
			if err == nil {
				t.Fatal("Create() expected a validation error")
			}
			if _, ok := errors.Cause(err).(validator.ValidationErrors); !ok {
				t.Errorf("Create() error = %T, want validator.ValidationErrors", err)
			}
			if n := len(repo.tasks); n != 0 {
				t.Errorf("task count = %d, want 0 (no state change)", n)
			}
		})
	}
}

func TestService_CompleteIsIdempotent(t *testing.T) {
	svc, _, notif := setup()
	defer svc.Close()
	ctx := context.Background()

	tk, err := svc.Create(ctx, "owner1", NewTask{Title: "Essay draft", DurationHours: 2})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	for i := 0; i < 2; i++ {
		got, err := svc.Complete(ctx, "owner1", tk.ID)
		if err != nil {
			t.Fatalf("Complete() #%d: %v", i+1, err)
		}
		if got.Status != StatusCompleted {
			t.Errorf("status = %q, want completed", got.Status)
		}
	}
	if _, _, completed := notif.counts(); completed != 1 {
		t.Errorf("completed notifications = %d, want 1", completed)
	}
	if svc.sched.Armed(tk.ID) {
		t.Error("completed task should be disarmed")
	}
}

func TestService_SweepMarksExpiredOnce(t *testing.T) {
	// simulates a throttled/missed one-shot callback: the clock jumps past
	// the deadline without the callback firing
	svc, _, notif := setup()
	defer svc.Close()
	ctx := context.Background()

	start := time.Date(2021, time.June, 1, 8, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return start }
	defer func() { nowFunc = time.Now }()

	tk, err := svc.Create(ctx, "owner1", NewTask{Title: "Lab report", DurationHours: 1})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	nowFunc = func() time.Time { return start.Add(time.Hour + time.Second) }
	for i := 0; i < 2; i++ {
		if err := svc.Sweep(ctx); err != nil {
			t.Fatalf("Sweep() #%d: %v", i+1, err)
		}
	}

	got, err := svc.repo.GetTask(ctx, "owner1", tk.ID)
	if err != nil {
		t.Fatalf("GetTask(): %v", err)
	}
	if got.Status != StatusOverdue {
		t.Errorf("status = %q, want overdue", got.Status)
	}
	if _, overdue, _ := notif.counts(); overdue != 1 {
		t.Errorf("overdue notifications = %d, want 1", overdue)
	}
}

func TestService_RenderDetectsExpiry(t *testing.T) {
	svc, _, notif := setup()
	defer svc.Close()
	ctx := context.Background()

	start := time.Date(2021, time.June, 1, 8, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return start }
	defer func() { nowFunc = time.Now }()

	tk, err := svc.Create(ctx, "owner1", NewTask{Title: "Flashcards", DurationHours: 1})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}

	later := start.Add(time.Hour + time.Second)
	nowFunc = func() time.Time { return later }

	// repeated renders must transition exactly once
	for i := 0; i < 3; i++ {
		label, err := svc.RemainingLabelFor(ctx, "owner1", tk.ID, later)
		if err != nil {
			t.Fatalf("RemainingLabelFor() #%d: %v", i+1, err)
		}
		if label != "Overdue" {
			t.Errorf("label = %q, want Overdue", label)
		}
	}
	if _, overdue, _ := notif.counts(); overdue != 1 {
		t.Errorf("overdue notifications = %d, want 1", overdue)
	}
}

func TestService_RearmAllSelfHealsPastDeadlines(t *testing.T) {
	svc, repo, notif := setup()
	defer svc.Close()
	ctx := context.Background()

	// a task loaded after its deadline already passed (e.g. process restart)
	stale := Task{
		ID:         "stale",
		Title:      "Old homework",
		Status:     StatusPending,
		OwnerID:    "owner1",
		CreatedAt:  time.Now().UTC().Add(-3 * time.Hour),
		DeadlineAt: time.Now().UTC().Add(-2 * time.Hour),
	}
	if _, err := repo.CreateTask(ctx, stale); err != nil {
		t.Fatalf("CreateTask(): %v", err)
	}

	if err := svc.RearmAll(ctx); err != nil {
		t.Fatalf("RearmAll(): %v", err)
	}

	got, err := repo.GetTaskByID(ctx, "stale")
	if err != nil {
		t.Fatalf("GetTaskByID(): %v", err)
	}
	if got.Status != StatusOverdue {
		t.Errorf("status = %q, want overdue", got.Status)
	}
	if svc.sched.Armed("stale") {
		t.Error("expired task must not be armed")
	}
	if _, overdue, _ := notif.counts(); overdue != 1 {
		t.Errorf("overdue notifications = %d, want 1", overdue)
	}
}

func TestService_DeleteDisarms(t *testing.T) {
	svc, repo, _ := setup()
	defer svc.Close()
	ctx := context.Background()

	tk, err := svc.Create(ctx, "owner1", NewTask{Title: "Chemistry notes", DurationHours: 4})
	if err != nil {
		t.Fatalf("Create(): %v", err)
	}
	if err := svc.Delete(ctx, "owner1", tk.ID); err != nil {
		t.Fatalf("Delete(): %v", err)
	}
	if svc.sched.Armed(tk.ID) {
		t.Error("deleted task should be disarmed")
	}
	if _, err := repo.GetTaskByID(ctx, tk.ID); errors.Cause(err) != ErrNotFound {
		t.Errorf("GetTaskByID() error = %v, want ErrNotFound", err)
	}
}
