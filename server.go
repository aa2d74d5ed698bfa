package main

import (
	"embed"
	"html/template"
	"log"
	"strings"
	"time"

	"github.com/nosuji/portfolio/internal/config"
	"github.com/nosuji/portfolio/internal/contact"
	"github.com/nosuji/portfolio/internal/content"
	"github.com/nosuji/portfolio/internal/mailer"
	"github.com/nosuji/portfolio/internal/schedule"
	"github.com/nosuji/portfolio/internal/store"
	"github.com/nosuji/portfolio/internal/typewriter"
)

//go:embed templates/*.html
var templatesFS embed.FS

const visitorRetention = 365 * 24 * time.Hour

type server struct {
	cfg      *config.Config
	site     *content.Site
	store    *store.Store
	contacts *contact.Registry
	admin    *adminAuth
	sched    schedule.Scheduler
}

func newServer(cfg *config.Config, site *content.Site, st *store.Store, sender mailer.Sender) *server {
	s := &server{
		cfg:   cfg,
		site:  site,
		store: st,
		admin: newAdminAuth(cfg.AdminUsername, cfg.AdminPassword),
		sched: schedule.Real(),
	}
	s.contacts = contact.NewRegistry(func() *contact.Controller {
		return contact.NewController(
			contact.Config{ToEmail: cfg.ToEmail, ResetAfter: cfg.ContactResetAfter},
			sender,
			contact.WithScheduler(s.sched),
			contact.WithReport(s.recordDelivery),
		)
	})
	return s
}

func (s *server) recordDelivery(d contact.Delivery) {
	row := store.Delivery{ID: d.ID, Outcome: store.OutcomeSent, Timestamp: d.At}
	if d.Err != nil {
		row.Outcome = store.OutcomeFailed
		row.Detail = d.Err.Error()
	}
	if err := s.store.RecordDelivery(row); err != nil {
		log.Printf("Error recording delivery %s: %v", d.ID, err)
	}
}

// newAnimator builds a typewriter over the site's roles with the configured
// timing. observe receives every frame.
func (s *server) newAnimator(observe func(typewriter.Frame)) (*typewriter.Animator, error) {
	return typewriter.New(s.site.Roles,
		typewriter.WithInterval(s.cfg.TypewriterInterval),
		typewriter.WithPause(s.cfg.TypewriterPause),
		typewriter.WithScheduler(s.sched),
		typewriter.WithObserver(observe),
	)
}

// startMaintenance schedules session pruning and visitor cleanup. The
// returned func cancels both.
func (s *server) startMaintenance() func() {
	prune := s.sched.Every(10*time.Minute, func() {
		if n := s.contacts.Prune(s.cfg.SessionIdle); n > 0 {
			log.Printf("Pruned %d idle contact sessions", n)
		}
	})
	cleanup := func() {
		if _, err := s.store.CleanupVisits(visitorRetention, time.Now()); err != nil {
			log.Printf("Error cleaning up old visitor data: %v", err)
		}
	}
	go cleanup()
	daily := s.sched.Every(24*time.Hour, cleanup)
	return func() {
		prune.Cancel()
		daily.Cancel()
	}
}

func parseTemplates() *template.Template {
	funcs := template.FuncMap{
		"lower": strings.ToLower,
		"year":  func() int { return time.Now().Year() },
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))
}
