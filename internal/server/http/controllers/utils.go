package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	idsvc "github.com/rzbill/flake/internal/services/ids"
	"github.com/rzbill/flake/pkg/id"
)

// StatusFor maps a service error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, idsvc.ErrInvalidArgument), errors.Is(err, id.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, id.ErrOverloaded):
		return http.StatusTooManyRequests
	case errors.Is(err, id.ErrClockMovedBackwards), errors.Is(err, id.ErrClockBeforeEpoch):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError aborts the request with {"error": msg} and the mapped status.
func writeError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusTooManyRequests {
		c.Header("Retry-After", "1")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// parseCount parses the count parameter. Empty means 1; garbage is an
// invalid argument rather than a silent default.
func parseCount(s string) (int, error) {
	if s == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Join(idsvc.ErrInvalidArgument, err)
	}
	return n, nil
}
