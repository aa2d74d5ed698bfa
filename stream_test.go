package main

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nosuji/portfolio/internal/schedule"
	"github.com/nosuji/portfolio/internal/typewriter"
)

func streamServer(t *testing.T, roles ...string) *httptest.Server {
	t.Helper()
	env := newTestEnv(t, newGatedSender(), roles...)
	env.srv.sched = schedule.Real()
	ts := httptest.NewServer(env.srv.routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestTypewriterStream(t *testing.T) {
	ts := streamServer(t, "A", "B")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/typewriter/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	var events, data []string
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() && len(data) < 5 {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			events = append(events, strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(line, "data:"))
		}
	}
	require.Len(t, data, 5)
	assert.Equal(t, []string{"A", "", "B", "", "A"}, data)
	for _, e := range events {
		assert.Equal(t, "frame", e)
	}
}

func TestTypewriterStreamEscapesText(t *testing.T) {
	ts := streamServer(t, "<b>")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/typewriter/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var data []string
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() && len(data) < 3 {
		if line := sc.Text(); strings.HasPrefix(line, "data:") {
			data = append(data, strings.TrimPrefix(line, "data:"))
		}
	}
	assert.Equal(t, []string{"&lt;", "&lt;b", "&lt;b&gt;"}, data)
}

func TestTypewriterSocket(t *testing.T) {
	ts := streamServer(t, "Hi", "Yo")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/typewriter", nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	var got []typewriter.Frame
	for len(got) < 4 {
		var f typewriter.Frame
		require.NoError(t, wsjson.Read(ctx, conn, &f))
		got = append(got, f)
	}
	assert.Equal(t, []typewriter.Frame{
		{Index: 0, Word: "Hi", Text: "H"},
		{Index: 0, Word: "Hi", Text: "Hi"},
		{Index: 1, Word: "Yo", Text: ""},
		{Index: 1, Word: "Yo", Text: "Y"},
	}, got)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
}
