package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deepresearch-go/deepresearch/pkg/facade"
)

func toStatusResponse(st facade.Status) sessionStatusResponse {
	return sessionStatusResponse{
		SessionID:      st.SessionID,
		State:          string(st.State),
		Summary:        st.Summary,
		Error:          st.Error,
		TraceAvailable: st.TraceAvailable,
		RequiresManual: st.RequiresManual,
	}
}

func toCapacitySnapshot(m facade.Metrics) capacitySnapshot {
	return capacitySnapshot{
		MaxConcurrency:   m.MaxConcurrency,
		AvailablePermits: m.AvailablePermits,
		RunningSessions:  m.RunningSessions,
		TotalSessions:    m.TotalSessions,
		ActiveStreams:    m.ActiveStreams,
	}
}

// createSessionHandler handles POST /sessions.
func (s *Server) createSessionHandler(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be empty"})
		return
	}

	result, err := s.facade.TryStartSession(c.Request.Context(), facade.Request{
		Query:       req.Query,
		SessionID:   req.SessionID,
		EnableTrace: req.EnableTrace,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	m := s.facade.Metrics()
	c.JSON(http.StatusAccepted, createSessionResponse{
		SessionID: result.SessionID,
		State:     string(result.State),
		Capacity:  m.AvailablePermits,
		Message:   "session accepted",
	})
}

// getSessionHandler handles GET /sessions/{id}.
func (s *Server) getSessionHandler(c *gin.Context) {
	st, err := s.facade.Status(c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatusResponse(st))
}

// listSessionsHandler handles GET /sessions.
func (s *Server) listSessionsHandler(c *gin.Context) {
	statuses := s.facade.ListSessions()
	out := make([]sessionStatusResponse, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, toStatusResponse(st))
	}
	c.JSON(http.StatusOK, listSessionsResponse{
		Sessions: out,
		Capacity: toCapacitySnapshot(s.facade.Metrics()),
	})
}
