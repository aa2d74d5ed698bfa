package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/nosuji/portfolio/internal/config"
	"github.com/nosuji/portfolio/internal/content"
	"github.com/nosuji/portfolio/internal/mailer"
	"github.com/nosuji/portfolio/internal/schedule"
	"github.com/nosuji/portfolio/internal/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// gatedSender blocks each send until the test supplies a result.
type gatedSender struct {
	calls  atomic.Int32
	result chan error
}

func newGatedSender() *gatedSender { return &gatedSender{result: make(chan error)} }

func (g *gatedSender) Send(context.Context, mailer.Message) error {
	g.calls.Add(1)
	return <-g.result
}

type testEnv struct {
	t      *testing.T
	srv    *server
	router *gin.Engine
	sched  *schedule.Manual
	cookie *http.Cookie
}

func testConfig() *config.Config {
	return &config.Config{
		StaticDir:          "./static",
		ToEmail:            "owner@example.com",
		AdminUsername:      "root",
		AdminPassword:      "hunter2",
		TypewriterInterval: time.Millisecond,
		TypewriterPause:    5 * time.Millisecond,
		ContactResetAfter:  5 * time.Second,
		SessionIdle:        time.Hour,
	}
}

func newTestEnv(t *testing.T, sender mailer.Sender, roles ...string) *testEnv {
	t.Helper()
	site, err := content.Default()
	require.NoError(t, err)
	if len(roles) > 0 {
		site.Roles = roles
	}
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	s := newServer(testConfig(), site, st, sender)
	m := schedule.NewManual()
	s.sched = m
	t.Cleanup(s.contacts.Close)

	return &testEnv{t: t, srv: s, router: s.routes(), sched: m}
}

// do performs a request, carrying the session cookie between calls.
func (e *testEnv) do(method, path string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	e.t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			e.cookie = c
		}
	}
	return w
}

func (e *testEnv) session() string {
	e.t.Helper()
	require.NotNil(e.t, e.cookie, "no session cookie yet")
	return e.cookie.Value
}

func parse(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return doc
}

// trimmed collapses the whitespace templates leave around text.
func trimmed(s string) string { return strings.Join(strings.Fields(s), " ") }
