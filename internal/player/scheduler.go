package player

import (
	"sync"
	"time"
)

// Task is a scheduled callback that can be cancelled.
type Task interface {
	Cancel()
}

// Scheduler starts repeating and one-off tasks and can cancel all of them at once.
type Scheduler interface {
	// Every runs fn every d until cancelled.
	Every(d time.Duration, fn func()) Task
	// After runs fn once after d unless cancelled first.
	After(d time.Duration, fn func()) Task
	// Stop cancels every task and refuses new ones. It does not wait for running callbacks.
	Stop()
}

// TimerScheduler is a [Scheduler] backed by [time.Ticker] and [time.AfterFunc].
type TimerScheduler struct {
	mu      sync.Mutex
	tasks   map[*timerTask]struct{}
	stopped bool
}

// NewTimerScheduler creates a [TimerScheduler].
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{tasks: map[*timerTask]struct{}{}}
}

type timerTask struct {
	once   sync.Once
	stop   func()
	remove func(*timerTask)
}

func (t *timerTask) Cancel() {
	t.once.Do(func() {
		t.stop()
		t.remove(t)
	})
}

func (s *TimerScheduler) Every(d time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := &timerTask{stop: func() {}, remove: s.remove}
	if s.stopped {
		return task
	}

	done := make(chan struct{})
	ticker := time.NewTicker(d)
	task.stop = func() { close(done) }
	s.tasks[task] = struct{}{}

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	return task
}

func (s *TimerScheduler) After(d time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := &timerTask{stop: func() {}, remove: s.remove}
	if s.stopped {
		return task
	}

	timer := time.AfterFunc(d, func() {
		s.remove(task)
		fn()
	})
	task.stop = func() { timer.Stop() }
	s.tasks[task] = struct{}{}
	return task
}

func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	tasks := make([]*timerTask, 0, len(s.tasks))
	for t := range s.tasks {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	for _, t := range tasks {
		t.Cancel()
	}
}

// Len reports how many tasks are still scheduled.
func (s *TimerScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *TimerScheduler) remove(t *timerTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, t)
}
