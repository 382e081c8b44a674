package api

import (
	"io"

	"github.com/gin-gonic/gin"
)

// streamHandler handles GET /sessions/{id}/stream: a server-sent event
// stream that replays the terminal event for an already-finished session
// or subscribes to the live broadcaster otherwise. The channel this
// relies on always closes after its terminal event, so the handler
// simply ranges over it until closed or the client disconnects.
func (s *Server) streamHandler(c *gin.Context) {
	ch, err := s.facade.EventStream(c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Kind), ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
