package schedule

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Scheduler driven by Advance instead of the wall clock.
// Callbacks run synchronously on the goroutine calling Advance.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks map[*manualTask]struct{}
}

type manualTask struct {
	m      *Manual
	due    time.Duration
	period time.Duration
	seq    int
	fn     func()
}

// NewManual returns a Manual scheduler positioned at time zero.
func NewManual() *Manual {
	return &Manual{tasks: make(map[*manualTask]struct{})}
}

func (t *manualTask) Cancel() {
	t.m.mu.Lock()
	delete(t.m.tasks, t)
	t.m.mu.Unlock()
}

func (m *Manual) add(d, period time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{m: m, due: m.now + d, period: period, seq: m.seq, fn: fn}
	m.tasks[t] = struct{}{}
	return t
}

func (m *Manual) After(d time.Duration, fn func()) Task { return m.add(d, 0, fn) }

func (m *Manual) Every(d time.Duration, fn func()) Task {
	if d <= 0 {
		panic("schedule: non-positive interval")
	}
	return m.add(d, d, fn)
}

// Advance moves the clock forward by d, firing every task that becomes due
// in deadline order. Tasks scheduled by callbacks fire too if they fall
// inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.due
		if next.period > 0 {
			next.due += next.period
		} else {
			delete(m.tasks, next)
		}
		fn := next.fn
		m.mu.Unlock()

		fn()
	}
}

func (m *Manual) nextDue(limit time.Duration) *manualTask {
	var due []*manualTask
	for t := range m.tasks {
		if t.due <= limit {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	return due[0]
}

// Pending reports how many tasks are still scheduled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Now reports the elapsed virtual time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}
