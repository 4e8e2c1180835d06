package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core"
)

// Modes
const (
	ModeTimer     = "timer"
	ModeStopwatch = "stopwatch"
)

// Session statuses
const (
	StatusStopped = "stopped"
	StatusRunning = "running"
	StatusPaused  = "paused"
)

// DefaultTickInterval drives completion detection while a timer runs.
const DefaultTickInterval = 100 * time.Millisecond

var nowFunc = time.Now // mockable

var (
	errSessionActive   = errors.New("a session is already active")
	errNotRunning      = errors.New("no running session to pause")
	errNotPaused       = errors.New("no paused session to resume")
	errBadMode         = errors.New("unknown session mode")
	errBadDuration     = errors.New("timer duration must be greater than zero")
	errConfirmRequired = errors.New("switching mode resets the active session; confirmation required")
)

type (
	// Notifier delivers the completion alert for a natural timer finish.
	Notifier interface {
		TimerCompleted(ownerID, label string, planned time.Duration)
	}

	// session is ephemeral: only run history survives a process restart.
	session struct {
		mode         string
		status       string
		label        string
		startInstant time.Time
		pauseInstant time.Time
		planned      time.Duration
		stop         chan struct{}
	}

	// Snapshot is the displayable state of an owner's session.
	Snapshot struct {
		Mode      string `json:"mode"`
		Status    string `json:"status"`
		Label     string `json:"label"`
		Display   string `json:"display"`
		PlannedMs int64  `json:"planned_ms,omitempty"`
	}

	// Engine manages one timer/stopwatch session per owner and the bounded
	// run history they feed.
	Engine struct {
		mu       sync.Mutex
		sessions map[string]*session
		repo     Repository
		notifier Notifier
		log      core.Logger
		tick     time.Duration
		closed   bool
	}
)

func NewEngine(repo Repository, notifier Notifier, log core.Logger) *Engine {
	return &Engine{
		sessions: make(map[string]*session),
		repo:     repo,
		notifier: notifier,
		log:      log,
		tick:     DefaultTickInterval,
	}
}

func (e *Engine) ownerSession(ownerID string) *session {
	sess, ok := e.sessions[ownerID]
	if !ok {
		sess = &session{mode: ModeTimer, status: StatusStopped}
		e.sessions[ownerID] = sess
	}
	return sess
}

// Start begins a session. Timer mode requires a positive planned duration.
func (e *Engine) Start(ownerID, mode, label string, planned time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errSessionActive
	}

	sess := e.ownerSession(ownerID)
	if sess.status != StatusStopped {
		return core.NewValidationError(errSessionActive)
	}
	switch mode {
	case ModeTimer:
		if planned <= 0 {
			return core.NewValidationError(errBadDuration, core.FieldError{Field: "duration_ms", Error: errBadDuration.Error()})
		}
	case ModeStopwatch:
		planned = 0
	default:
		return core.NewValidationError(errBadMode, core.FieldError{Field: "mode", Error: errBadMode.Error()})
	}

	sess.mode = mode
	sess.status = StatusRunning
	sess.label = core.CleanString(label)
	sess.startInstant = nowFunc()
	sess.pauseInstant = time.Time{}
	sess.planned = planned
	e.startTicking(ownerID, sess)
	return nil
}

// Pause freezes elapsed time. Valid only from running.
func (e *Engine) Pause(ownerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.ownerSession(ownerID)
	if sess.status != StatusRunning {
		return core.NewValidationError(errNotRunning)
	}
	e.stopTicking(sess)
	sess.status = StatusPaused
	sess.pauseInstant = nowFunc()
	return nil
}

// Resume shifts the start instant forward by the pause duration so elapsed
// arithmetic stays a plain now-minus-start. Valid only from paused.
func (e *Engine) Resume(ownerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.ownerSession(ownerID)
	if sess.status != StatusPaused {
		return core.NewValidationError(errNotPaused)
	}
	sess.startInstant = sess.startInstant.Add(nowFunc().Sub(sess.pauseInstant))
	sess.pauseInstant = time.Time{}
	sess.status = StatusRunning
	e.startTicking(ownerID, sess)
	return nil
}

// Reset stops the session from any state. Leaving a running/paused stopwatch
// with more than a second on the clock records the elapsed time first.
func (e *Engine) Reset(ctx context.Context, ownerID string) error {
	e.mu.Lock()

	sess := e.ownerSession(ownerID)
	var run *Run
	if sess.mode == ModeStopwatch && (sess.status == StatusRunning || sess.status == StatusPaused) {
		if elapsed := e.elapsedLocked(sess); elapsed > time.Second {
			run = &Run{
				Type:            ModeStopwatch,
				Label:           defaultLabel(sess.label, ModeStopwatch),
				DurationDisplay: FormatDuration(elapsed),
				CompletedAt:     nowFunc().UTC(),
			}
		}
	}
	e.stopTicking(sess)
	e.clearLocked(sess)
	e.mu.Unlock()

	if run != nil {
		return e.appendRun(ctx, ownerID, *run)
	}
	return nil
}

// SwitchMode changes the session's mode. While a session is active this is
// destructive and requires the caller's confirmation (force), which resets
// the session first.
func (e *Engine) SwitchMode(ctx context.Context, ownerID, mode string, force bool) error {
	if mode != ModeTimer && mode != ModeStopwatch {
		return core.NewValidationError(errBadMode, core.FieldError{Field: "mode", Error: errBadMode.Error()})
	}

	e.mu.Lock()
	sess := e.ownerSession(ownerID)
	if sess.status != StatusStopped {
		if !force {
			e.mu.Unlock()
			return core.NewValidationError(errConfirmRequired)
		}
		e.mu.Unlock()
		if err := e.Reset(ctx, ownerID); err != nil {
			return err
		}
		e.mu.Lock()
		sess = e.ownerSession(ownerID)
	}
	sess.mode = mode
	e.mu.Unlock()
	return nil
}

// Elapsed returns the session's running elapsed time; paused time never counts.
func (e *Engine) Elapsed(ownerID string) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.elapsedLocked(e.ownerSession(ownerID))
}

func (e *Engine) elapsedLocked(sess *session) time.Duration {
	switch sess.status {
	case StatusRunning:
		return nowFunc().Sub(sess.startInstant)
	case StatusPaused:
		return sess.pauseInstant.Sub(sess.startInstant)
	}
	return 0
}

// Snapshot returns the displayable session state for the owner.
func (e *Engine) Snapshot(ownerID string) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.ownerSession(ownerID)
	snap := Snapshot{
		Mode:   sess.mode,
		Status: sess.status,
		Label:  sess.label,
	}
	elapsed := e.elapsedLocked(sess)
	if sess.mode == ModeTimer {
		snap.PlannedMs = sess.planned.Milliseconds()
		remaining := sess.planned - elapsed
		if remaining < 0 {
			remaining = 0
		}
		snap.Display = FormatDuration(remaining)
	} else {
		snap.Display = FormatDuration(elapsed)
	}
	return snap
}

// Close tears down every live session ticker. Sessions are not recorded.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	for _, sess := range e.sessions {
		e.stopTicking(sess)
		e.clearLocked(sess)
	}
}

// startTicking spawns the per-session tick loop. Caller holds the lock.
func (e *Engine) startTicking(ownerID string, sess *session) {
	stop := make(chan struct{})
	sess.stop = stop

	go func() {
		ticker := time.NewTicker(e.tick)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if e.onTick(ownerID, stop) {
					return
				}
			case <-stop:
				return
			}
		}
	}()
}

// stopTicking signals the session's tick loop to exit. Caller holds the lock.
func (e *Engine) stopTicking(sess *session) {
	if sess.stop != nil {
		close(sess.stop)
		sess.stop = nil
	}
}

func (e *Engine) clearLocked(sess *session) {
	sess.status = StatusStopped
	sess.label = ""
	sess.startInstant = time.Time{}
	sess.pauseInstant = time.Time{}
	sess.planned = 0
}

// onTick detects natural timer completion. Returns true when the tick loop
// should exit.
func (e *Engine) onTick(ownerID string, stop chan struct{}) bool {
	e.mu.Lock()

	sess, ok := e.sessions[ownerID]
	if !ok || sess.stop != stop || sess.status != StatusRunning {
		// a pause/reset won the race; this loop is stale
		e.mu.Unlock()
		return true
	}
	if sess.mode != ModeTimer || e.elapsedLocked(sess) < sess.planned {
		e.mu.Unlock()
		return false
	}

	// natural completion
	label := defaultLabel(sess.label, ModeTimer)
	planned := sess.planned
	sess.stop = nil // this loop exits on return; nothing left to close
	e.clearLocked(sess)
	e.mu.Unlock()

	e.notifier.TimerCompleted(ownerID, label, planned)
	run := Run{
		Type:            ModeTimer,
		Label:           label,
		DurationDisplay: FormatDuration(planned),
		CompletedAt:     nowFunc().UTC(),
	}
	if err := e.appendRun(context.Background(), ownerID, run); err != nil {
		e.log.Error("recording completed timer run", err)
	}
	return true
}

func defaultLabel(label, mode string) string {
	if label != "" {
		return label
	}
	if mode == ModeStopwatch {
		return "Stopwatch"
	}
	return "Timer"
}

// FormatDuration renders a duration as HH:MM:SS; negatives clamp to zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSeconds := int(d / time.Second)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
