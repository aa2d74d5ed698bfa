// Package contact implements the contact form: field state, validation and
// the idle/loading/success/error submission lifecycle around one email send.
package contact

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nosuji/portfolio/internal/mailer"
	"github.com/nosuji/portfolio/internal/schedule"
)

const DefaultResetAfter = 5 * time.Second

// ErrBusy is returned by Submit while a send is in flight.
var ErrBusy = errors.New("contact: submission already in progress")

type Config struct {
	// ToEmail is the fixed destination for every message.
	ToEmail string
	// ResetAfter is how long the success message stays before the status
	// returns to idle.
	ResetAfter time.Duration
}

// Delivery describes the outcome of one send, for diagnostics.
type Delivery struct {
	ID  string
	Err error
	At  time.Time
}

type Option func(*Controller)

func WithScheduler(s schedule.Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithReport registers a sink that receives every delivery outcome.
func WithReport(fn func(Delivery)) Option {
	return func(c *Controller) { c.report = fn }
}

// Controller holds one visitor's form and submission status.
type Controller struct {
	cfg    Config
	sender mailer.Sender
	sched  schedule.Scheduler
	report func(Delivery)

	mu       sync.Mutex
	form     Form
	status   Status
	seq      uint64
	reset    schedule.Task
	inflight chan struct{}
}

func NewController(cfg Config, sender mailer.Sender, opts ...Option) *Controller {
	if cfg.ResetAfter <= 0 {
		cfg.ResetAfter = DefaultResetAfter
	}
	c := &Controller{
		cfg:    cfg,
		sender: sender,
		sched:  schedule.Real(),
		status: StatusIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) UpdateField(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Set(field, value)
}

func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Submit validates the form and starts delivery in the background. It
// returns ErrBusy without side effects while a previous send is in flight,
// and a *ValidationError if a field is missing or malformed. The send is
// detached from ctx cancellation: once started it always runs to completion.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.status.Busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	if err := c.form.Validate(); err != nil {
		c.mu.Unlock()
		return err
	}

	if c.reset != nil {
		c.reset.Cancel()
		c.reset = nil
	}
	c.seq++
	seq := c.seq
	c.status = StatusLoading
	done := make(chan struct{})
	c.inflight = done
	msg := mailer.Message{
		FromName:  c.form.Name,
		FromEmail: c.form.Email,
		Message:   c.form.Message,
		ToEmail:   c.cfg.ToEmail,
	}
	c.mu.Unlock()

	go c.deliver(context.WithoutCancel(ctx), seq, msg, done)
	return nil
}

func (c *Controller) deliver(ctx context.Context, seq uint64, msg mailer.Message, done chan struct{}) {
	d := Delivery{ID: uuid.NewString()}
	d.Err = c.sender.Send(ctx, msg)
	d.At = time.Now()

	c.mu.Lock()
	if d.Err == nil {
		c.status = StatusSuccess
		c.form = Form{}
		c.reset = c.sched.After(c.cfg.ResetAfter, func() { c.resetIdle(seq) })
	} else {
		// Fields are kept so the visitor can retry without retyping.
		c.status = StatusError
	}
	c.inflight = nil
	close(done)
	c.mu.Unlock()

	if d.Err != nil {
		log.Printf("Error sending contact email (delivery %s): %v", d.ID, d.Err)
	} else {
		log.Printf("Contact email sent (delivery %s)", d.ID)
	}
	if c.report != nil {
		c.report(d)
	}
}

func (c *Controller) resetIdle(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq != seq || c.status.Kind != Success {
		return
	}
	c.status = StatusIdle
	c.reset = nil
}

// Wait blocks until no send is in flight or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.inflight
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels the pending status reset, if any.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reset != nil {
		c.reset.Cancel()
		c.reset = nil
	}
}
