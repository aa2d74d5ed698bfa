// Package schedule runs delayed and periodic callbacks behind cancellable
// task handles, so owners can tear timers down deterministically.
package schedule

import (
	"sync"
	"time"
)

// Task is a handle to a scheduled callback.
type Task interface {
	// Cancel stops the task. Safe to call more than once.
	Cancel()
}

// Scheduler creates tasks.
type Scheduler interface {
	// After runs fn once after d.
	After(d time.Duration, fn func()) Task
	// Every runs fn every d until cancelled.
	Every(d time.Duration, fn func()) Task
}

// Real returns a Scheduler backed by the runtime timers.
func Real() Scheduler { return realScheduler{} }

type realScheduler struct{}

type timerTask struct{ t *time.Timer }

func (t timerTask) Cancel() { t.t.Stop() }

func (realScheduler) After(d time.Duration, fn func()) Task {
	return timerTask{t: time.AfterFunc(d, fn)}
}

type tickerTask struct {
	once sync.Once
	done chan struct{}
}

func (t *tickerTask) Cancel() {
	t.once.Do(func() { close(t.done) })
}

func (realScheduler) Every(d time.Duration, fn func()) Task {
	task := &tickerTask{done: make(chan struct{})}
	ticker := time.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				// Cancel may race with a tick that already fired.
				select {
				case <-task.done:
					return
				default:
				}
				fn()
			case <-task.done:
				return
			}
		}
	}()
	return task
}
