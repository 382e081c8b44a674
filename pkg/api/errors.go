package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deepresearch-go/deepresearch/pkg/rerrors"
)

// writeServiceError maps the rerrors taxonomy onto the HTTP status codes
// the adapter contract promises: InputValidation→400, AdmissionRejected→
// 429, NotFound→404, otherwise 500.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, rerrors.ErrInputValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, rerrors.ErrAdmissionRejected):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, rerrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		slog.Error("unexpected facade error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
