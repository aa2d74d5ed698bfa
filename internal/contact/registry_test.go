package contact

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nosuji/portfolio/internal/mailer"
	"github.com/nosuji/portfolio/internal/schedule"
)

func TestRegistryPerSession(t *testing.T) {
	sched := schedule.NewManual()
	sender := mailer.SenderFunc(func(context.Context, mailer.Message) error { return nil })
	r := NewRegistry(func() *Controller {
		return NewController(Config{ToEmail: "owner@example.com"}, sender, WithScheduler(sched))
	})
	defer r.Close()

	a := r.Get("a")
	assert.Same(t, a, r.Get("a"))
	assert.NotSame(t, a, r.Get("b"))
	assert.Equal(t, 2, r.Len())

	require.NoError(t, a.UpdateField(FieldName, "Jo"))
	assert.Empty(t, r.Get("b").Form().Name)
}

func TestRegistryPrune(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sched := schedule.NewManual()
	release := make(chan struct{})
	sender := mailer.SenderFunc(func(context.Context, mailer.Message) error {
		<-release
		return nil
	})
	r := NewRegistry(func() *Controller {
		return NewController(Config{}, sender, WithScheduler(sched))
	})
	r.now = func() time.Time { return now }

	r.Get("old")
	busy := r.Get("busy")
	require.NoError(t, busy.UpdateField(FieldName, "Jo"))
	require.NoError(t, busy.UpdateField(FieldEmail, "jo@x.com"))
	require.NoError(t, busy.UpdateField(FieldMessage, "Hi"))
	require.NoError(t, busy.Submit(context.Background()))

	now = now.Add(time.Hour)
	r.Get("fresh")

	assert.Equal(t, 1, r.Prune(30*time.Minute))
	assert.Equal(t, 2, r.Len())

	close(release)
	require.NoError(t, busy.Wait(context.Background()))
	assert.Equal(t, 1, r.Prune(30*time.Minute))
	assert.Equal(t, 1, r.Len())
	assert.Zero(t, sched.Pending(), "pruned controller's reset timer is cancelled")
}
