package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nosuji/portfolio/internal/contact"
	"github.com/nosuji/portfolio/internal/content"
)

const sessionCookie = "portfolio_session"

func (s *server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.SetHTMLTemplate(parseTemplates())

	r.Static("/static", s.cfg.StaticDir)
	r.GET("/healthz", s.handleHealth)
	r.GET("/ws/typewriter", s.handleTypewriterSocket)

	page := r.Group("/")
	page.Use(s.visitorTracking(), sessionMiddleware())

	// Home page route
	page.GET("/", s.handleHome)

	// HTMX contact form fragment
	page.GET("/contact-form", s.handleContactForm)
	page.POST("/contact/field", s.handleContactField)
	page.POST("/contact", s.handleContactSubmit)
	page.GET("/contact/status", s.handleContactStatus)

	page.GET("/typewriter/stream", s.handleTypewriterStream)

	s.setupAdminRoutes(r)
	return r
}

// sessionMiddleware gives every visitor a stable id that selects their
// contact form state.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
		}
		c.Set(sessionCookie, id)
		c.Next()
	}
}

func (s *server) controller(c *gin.Context) *contact.Controller {
	return s.contacts.Get(c.GetString(sessionCookie))
}

type formView struct {
	Title  string
	Intro  string
	Form   contact.Form
	Status contact.Status
	Errors map[string]string
}

func (s *server) formView(ctl *contact.Controller, errs map[string]string) formView {
	return formView{
		Title:  ContactTitle,
		Intro:  ContactIntro,
		Form:   ctl.Form(),
		Status: ctl.Status(),
		Errors: errs,
	}
}

func (s *server) handleHome(c *gin.Context) {
	ctl := s.controller(c)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"site":     s.site,
		"about":    s.site.AboutHTML(),
		"sections": content.Sections(),
		"contact":  s.formView(ctl, nil),
	})
}

func (s *server) handleContactForm(c *gin.Context) {
	c.HTML(http.StatusOK, "contact-form", s.formView(s.controller(c), nil))
}

// handleContactField stores whichever form fields were posted.
func (s *server) handleContactField(c *gin.Context) {
	ctl := s.controller(c)
	if err := updateFields(c, ctl); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

func updateFields(c *gin.Context, ctl *contact.Controller) error {
	for _, f := range []string{contact.FieldName, contact.FieldEmail, contact.FieldMessage} {
		if v, ok := c.GetPostForm(f); ok {
			if err := ctl.UpdateField(f, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Handle contact form submission with HTMX
func (s *server) handleContactSubmit(c *gin.Context) {
	ctl := s.controller(c)

	// The button is disabled while sending; a second submit changes nothing,
	// including the fields.
	if ctl.Status().Busy() {
		c.HTML(http.StatusConflict, "contact-form", s.formView(ctl, nil))
		return
	}
	if err := updateFields(c, ctl); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	err := ctl.Submit(c.Request.Context())
	var verr *contact.ValidationError
	switch {
	case err == nil:
		c.HTML(http.StatusAccepted, "contact-form", s.formView(ctl, nil))
	case errors.Is(err, contact.ErrBusy):
		c.HTML(http.StatusConflict, "contact-form", s.formView(ctl, nil))
	case errors.As(err, &verr):
		c.HTML(http.StatusOK, "contact-form", s.formView(ctl, verr.Fields))
	default:
		log.Printf("Error submitting contact form: %v", err)
		c.HTML(http.StatusOK, "contact-form", s.formView(ctl, nil))
	}
}

// handleContactStatus is polled while a submission is pending or its success
// message is showing. Once a pending send has finished, the whole form is
// swapped in so the fields and button reflect the outcome.
func (s *server) handleContactStatus(c *gin.Context) {
	ctl := s.controller(c)
	view := s.formView(ctl, nil)
	if c.Query("from") == string(contact.Loading) && !view.Status.Busy() {
		c.Header("HX-Retarget", "#contact-form")
		c.Header("HX-Reswap", "outerHTML")
		c.HTML(http.StatusOK, "contact-form", view)
		return
	}
	c.HTML(http.StatusOK, "contact-status", view)
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.contacts.Len(),
	})
}
