// Package typewriter cycles through a fixed list of words, revealing one
// rune per tick, pausing on the complete word and then moving on.
package typewriter

import (
	"errors"
	"sync"
	"time"

	"github.com/nosuji/portfolio/internal/schedule"
)

const (
	DefaultInterval = 100 * time.Millisecond
	DefaultPause    = 2000 * time.Millisecond
)

var (
	ErrNoWords   = errors.New("typewriter: word list is empty")
	ErrEmptyWord = errors.New("typewriter: word list contains an empty word")
)

// Frame is one observable state of the animation.
type Frame struct {
	Index int    `json:"index"`
	Word  string `json:"word"`
	Text  string `json:"text"`
}

// Complete reports whether the whole word is on display.
func (f Frame) Complete() bool { return f.Text == f.Word }

type Option func(*Animator)

func WithInterval(d time.Duration) Option {
	return func(a *Animator) {
		if d > 0 {
			a.interval = d
		}
	}
}

func WithPause(d time.Duration) Option {
	return func(a *Animator) {
		if d >= 0 {
			a.pause = d
		}
	}
}

func WithScheduler(s schedule.Scheduler) Option {
	return func(a *Animator) { a.sched = s }
}

// WithObserver registers fn to receive every frame. fn runs on the
// scheduler's goroutine with the animator unlocked and must not block.
func WithObserver(fn func(Frame)) Option {
	return func(a *Animator) { a.observe = fn }
}

// Animator owns one running animation. The zero value is not usable; call New.
type Animator struct {
	words    [][]rune
	interval time.Duration
	pause    time.Duration
	sched    schedule.Scheduler
	observe  func(Frame)

	mu       sync.Mutex
	index    int
	revealed int
	running  bool
	gen      uint64
	tick     schedule.Task
	wait     schedule.Task
}

func New(words []string, opts ...Option) (*Animator, error) {
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	a := &Animator{
		interval: DefaultInterval,
		pause:    DefaultPause,
		sched:    schedule.Real(),
	}
	for _, w := range words {
		if w == "" {
			return nil, ErrEmptyWord
		}
		a.words = append(a.words, []rune(w))
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Start begins revealing the current word. Calling Start on a running
// animator does nothing.
func (a *Animator) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return
	}
	a.running = true
	a.gen++
	a.startWordLocked()
}

// Stop cancels the reveal interval and any pending pause. The animator keeps
// its position and can be started again.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return
	}
	a.running = false
	a.gen++
	a.cancelLocked()
}

// Running reports whether timers are active.
func (a *Animator) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// State returns the current frame.
func (a *Animator) State() Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frameLocked()
}

func (a *Animator) frameLocked() Frame {
	w := a.words[a.index]
	return Frame{Index: a.index, Word: string(w), Text: string(w[:a.revealed])}
}

func (a *Animator) cancelLocked() {
	if a.tick != nil {
		a.tick.Cancel()
		a.tick = nil
	}
	if a.wait != nil {
		a.wait.Cancel()
		a.wait = nil
	}
}

func (a *Animator) startWordLocked() {
	gen := a.gen
	a.tick = a.sched.Every(a.interval, func() { a.step(gen) })
}

// step is the interval callback: reveal one more rune, or once the word is
// complete, stop the interval and schedule the move to the next word.
func (a *Animator) step(gen uint64) {
	a.mu.Lock()
	if gen != a.gen || !a.running {
		a.mu.Unlock()
		return
	}
	word := a.words[a.index]
	if a.revealed < len(word) {
		a.revealed++
		f := a.frameLocked()
		a.mu.Unlock()
		a.emit(f)
		return
	}

	if a.tick != nil {
		a.tick.Cancel()
		a.tick = nil
	}
	a.wait = a.sched.After(a.pause, func() { a.advance(gen) })
	a.mu.Unlock()
}

func (a *Animator) advance(gen uint64) {
	a.mu.Lock()
	if gen != a.gen || !a.running {
		a.mu.Unlock()
		return
	}
	a.wait = nil
	a.index = (a.index + 1) % len(a.words)
	a.revealed = 0
	// Each word gets a fresh generation so a straggling tick from the
	// previous interval cannot touch the new word.
	a.gen++
	a.startWordLocked()
	f := a.frameLocked()
	a.mu.Unlock()
	a.emit(f)
}

func (a *Animator) emit(f Frame) {
	if a.observe != nil {
		a.observe(f)
	}
}
