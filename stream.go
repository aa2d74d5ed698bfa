package main

import (
	"context"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"

	"github.com/nosuji/portfolio/internal/typewriter"
)

const (
	frameBuffer  = 16
	writeTimeout = 10 * time.Second
)

// startAnimation runs one animator for a single connection. Frames are
// dropped rather than queued when the reader falls behind.
func (s *server) startAnimation() (<-chan typewriter.Frame, func(), error) {
	frames := make(chan typewriter.Frame, frameBuffer)
	a, err := s.newAnimator(func(f typewriter.Frame) {
		select {
		case frames <- f:
		default:
		}
	})
	if err != nil {
		return nil, nil, err
	}
	a.Start()
	return frames, a.Stop, nil
}

// handleTypewriterStream serves frames as server-sent events named "frame",
// each carrying the escaped text to swap into the hero span.
func (s *server) handleTypewriterStream(c *gin.Context) {
	frames, stop, err := s.startAnimation()
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	defer stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case f := <-frames:
			c.SSEvent("frame", template.HTMLEscapeString(f.Text))
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// handleTypewriterSocket serves the same frames as JSON over a WebSocket.
func (s *server) handleTypewriterSocket(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket accept error: %v", err)
		return
	}
	defer conn.CloseNow()

	frames, stop, err := s.startAnimation()
	if err != nil {
		conn.Close(websocket.StatusInternalError, "animation unavailable")
		return
	}
	defer stop()

	// Clients never send anything; CloseRead cancels ctx when they go away.
	ctx := conn.CloseRead(c.Request.Context())
	for {
		select {
		case f := <-frames:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, conn, f)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
	}
}
