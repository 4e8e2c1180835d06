package task

import (
	"sync"
	"time"
)

var nowFunc = time.Now // mockable

// Scheduler owns one deferred one-shot callback per task id. Timer handles
// never leave the registry; callers only get Arm/Disarm.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	fire   func(taskID string)

	sweepStop chan struct{}
	closed    bool
}

func NewScheduler(fire func(taskID string)) *Scheduler {
	return &Scheduler{
		timers: make(map[string]*time.Timer),
		fire:   fire,
	}
}

// Arm schedules the callback to fire at `at`. Arming an id that already has a
// live callback replaces it; a deadline in the past fires immediately.
func (s *Scheduler) Arm(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if t, ok := s.timers[id]; ok {
		t.Stop()
	}

	d := at.Sub(nowFunc())
	if d < 0 {
		d = 0
	}
	s.timers[id] = time.AfterFunc(d, func() {
		s.remove(id)
		s.fire(id)
	})
}

// Disarm cancels a pending callback. Calling it on an already-fired or
// never-armed id is a no-op.
func (s *Scheduler) Disarm(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// Armed reports whether a live callback exists for the id.
func (s *Scheduler) Armed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	return ok
}

func (s *Scheduler) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, id)
}

// StartSweep runs `sweep` every `every` as a correctness backstop against
// missed callbacks. It keeps running until Close.
func (s *Scheduler) StartSweep(every time.Duration, sweep func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.sweepStop != nil {
		return
	}
	stop := make(chan struct{})
	s.sweepStop = stop

	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sweep()
			case <-stop:
				return
			}
		}
	}()
}

// Close cancels every live callback and the sweep. Safe to call multiple times.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	if s.sweepStop != nil {
		close(s.sweepStop)
		s.sweepStop = nil
	}
}
