package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nosuji/portfolio/internal/contact"
	"github.com/nosuji/portfolio/internal/store"
)

func TestHomePage(t *testing.T) {
	env := newTestEnv(t, newGatedSender())
	w := env.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.cookie)

	doc := parse(t, w)
	var anchors []string
	doc.Find("nav a").Each(func(_ int, a *goquery.Selection) {
		anchors = append(anchors, a.AttrOr("href", ""))
	})
	assert.Equal(t, []string{"#about", "#experience", "#projects", "#skills", "#contact"}, anchors)

	for _, id := range []string{"about", "experience", "projects", "skills", "contact"} {
		assert.Equal(t, 1, doc.Find("section#"+id).Length(), id)
	}
	typing := doc.Find("#typing")
	assert.Equal(t, "/typewriter/stream", typing.AttrOr("sse-connect", ""))
	assert.Empty(t, typing.Text())

	assert.Equal(t, 2, doc.Find(".job").Length())
	assert.Equal(t, 3, doc.Find(".project").Length())
	assert.Contains(t, doc.Find("#about strong").Text(), "data science")

	form := doc.Find("form#contact-form")
	assert.Equal(t, "/contact", form.AttrOr("hx-post", ""))
	assert.Equal(t, "Send Message", trimmed(form.Find("button").Text()))
	_, disabled := form.Find("button").Attr("disabled")
	assert.False(t, disabled)
}

func TestContactSubmitSuccess(t *testing.T) {
	sender := newGatedSender()
	env := newTestEnv(t, sender)
	env.do(http.MethodGet, "/", nil)

	w := env.do(http.MethodPost, "/contact/field", url.Values{"name": {"Jo"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	ctl := env.srv.contacts.Get(env.session())
	assert.Equal(t, "Jo", ctl.Form().Name)

	w = env.do(http.MethodPost, "/contact", url.Values{"name": {"Jo"}, "email": {"jo@x.com"}, "message": {"Hi"}})
	require.Equal(t, http.StatusAccepted, w.Code)
	doc := parse(t, w)
	assert.Equal(t, "Sending...", trimmed(doc.Find("button").Text()))
	_, disabled := doc.Find("button").Attr("disabled")
	assert.True(t, disabled)
	assert.Equal(t, "loading", doc.Find("#contact-status").AttrOr("data-status", ""))

	// Second submit while sending: no new call, fields untouched.
	w = env.do(http.MethodPost, "/contact", url.Values{"name": {"Someone else"}, "email": {"x@y.z"}, "message": {"Spam"}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Jo", ctl.Form().Name)

	sender.result <- nil
	require.NoError(t, ctl.Wait(context.Background()))
	assert.EqualValues(t, 1, sender.calls.Load())

	w = env.do(http.MethodGet, "/contact/status?from=loading", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "#contact-form", w.Header().Get("HX-Retarget"))
	doc = parse(t, w)
	assert.Equal(t, contact.MsgSent, trimmed(doc.Find("#contact-status").Text()))
	assert.Empty(t, doc.Find("input#name").AttrOr("value", "x"))
	assert.Empty(t, doc.Find("input#email").AttrOr("value", "x"))
	assert.Empty(t, trimmed(doc.Find("textarea#message").Text()))

	env.sched.Advance(5 * time.Second)
	w = env.do(http.MethodGet, "/contact/status?from=success", nil)
	doc = parse(t, w)
	st := doc.Find("#contact-status")
	assert.Equal(t, "idle", st.AttrOr("data-status", ""))
	_, polling := st.Attr("hx-get")
	assert.False(t, polling)

	require.Eventually(t, func() bool {
		d, err := env.srv.store.RecentDeliveries(10, store.OutcomeSent)
		return err == nil && len(d) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestContactSubmitFailure(t *testing.T) {
	sender := newGatedSender()
	env := newTestEnv(t, sender)
	env.do(http.MethodGet, "/", nil)

	w := env.do(http.MethodPost, "/contact", url.Values{"name": {"Jo"}, "email": {"jo@x.com"}, "message": {"Hi"}})
	require.Equal(t, http.StatusAccepted, w.Code)
	sender.result <- errors.New("emailjs: status 412: The template ID is invalid")
	ctl := env.srv.contacts.Get(env.session())
	require.NoError(t, ctl.Wait(context.Background()))

	w = env.do(http.MethodGet, "/contact/status?from=loading", nil)
	doc := parse(t, w)
	assert.Equal(t, "error", doc.Find("#contact-status").AttrOr("data-status", ""))
	assert.Equal(t, contact.MsgFailed, trimmed(doc.Find("#contact-status").Text()))
	assert.NotContains(t, doc.Text(), "template ID")
	assert.Equal(t, "Jo", doc.Find("input#name").AttrOr("value", ""))
	assert.Equal(t, "jo@x.com", doc.Find("input#email").AttrOr("value", ""))
	assert.Equal(t, "Hi", trimmed(doc.Find("textarea#message").Text()))

	require.Eventually(t, func() bool {
		d, err := env.srv.store.RecentDeliveries(10, store.OutcomeFailed)
		return err == nil && len(d) == 1 && d[0].Detail == "emailjs: status 412: The template ID is invalid"
	}, time.Second, 5*time.Millisecond)
}

func TestContactSubmitInvalid(t *testing.T) {
	sender := newGatedSender()
	env := newTestEnv(t, sender)

	w := env.do(http.MethodPost, "/contact", url.Values{"name": {"Jo"}, "email": {"nope"}, "message": {""}})
	require.Equal(t, http.StatusOK, w.Code)
	doc := parse(t, w)
	assert.Equal(t, 2, doc.Find(".field-error").Length())
	assert.Equal(t, "idle", doc.Find("#contact-status").AttrOr("data-status", ""))
	assert.Zero(t, sender.calls.Load())
}

func TestSessionsAreIsolated(t *testing.T) {
	a := newTestEnv(t, newGatedSender())
	a.do(http.MethodGet, "/", nil)
	a.do(http.MethodPost, "/contact/field", url.Values{"message": {"mine"}})

	// Second visitor against the same server.
	b := &testEnv{t: t, srv: a.srv, router: a.router, sched: a.sched}
	w := b.do(http.MethodGet, "/contact-form", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, a.session(), b.session())
	assert.Empty(t, trimmed(parse(t, w).Find("textarea#message").Text()))
	assert.Equal(t, 2, a.srv.contacts.Len())
}

func TestContactFieldIgnoresUnknownKeys(t *testing.T) {
	env := newTestEnv(t, newGatedSender())
	w := env.do(http.MethodPost, "/contact/field", url.Values{"phone": {"123"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, env.srv.contacts.Get(env.session()).Form().Empty())
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, newGatedSender())
	w := env.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}
