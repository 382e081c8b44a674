package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/deepresearch-go/deepresearch/pkg/facade"
	"github.com/deepresearch-go/deepresearch/pkg/trace"
)

// getTraceHandler handles GET /sessions/{id}/trace: it loads the
// persisted trace file and renders the timeline, aggregates, and the
// three text artifacts alongside the raw event list.
func (s *Server) getTraceHandler(c *gin.Context) {
	id := c.Param("id")
	st, err := s.facade.Status(id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if st.State == facade.StateRunning {
		c.JSON(http.StatusConflict, gin.H{"error": "session is still running"})
		return
	}
	if !st.TraceAvailable || st.TracePath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no trace recorded for this session"})
		return
	}

	events, err := loadTraceEvents(st.TracePath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trace file unavailable: " + err.Error()})
		return
	}

	steps := trace.Timeline(events)
	c.JSON(http.StatusOK, traceBundleResponse{
		SessionID:  id,
		Summary:    st.Summary,
		Events:     events,
		Timeline:   steps,
		Aggregates: trace.Aggregate(steps),
		Markdown:   trace.RenderMarkdown(events),
		Mermaid:    trace.RenderMermaid(events),
		Graphviz:   trace.RenderGraphviz(events),
	})
}

func loadTraceEvents(path string) ([]trace.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var events []trace.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, errors.New("malformed trace file")
	}
	return events, nil
}
