package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mikesoares/linkwatch/internal/domain"
)

// Runner is the monitor surface the status endpoints need.
type Runner interface {
	HealthCheck(ctx context.Context) error
	LastRun() (domain.RunSummary, bool)
}

type StatusController struct {
	runner Runner
}

func NewStatusController(runner Runner) *StatusController {
	return &StatusController{runner: runner}
}

// Health reports whether the watch loop is alive.
func (s *StatusController) Health(c *gin.Context) {
	if err := s.runner.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, domain.HealthResponse{
			Status:    domain.HealthStatusUnhealthy,
			Timestamp: time.Now().UTC(),
			Message:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, domain.HealthResponse{
		Status:    domain.HealthStatusHealthy,
		Timestamp: time.Now().UTC(),
		Message:   "monitor is running",
	})
}

// Status returns the most recent completed run summary.
func (s *StatusController) Status(c *gin.Context) {
	summary, ok := s.runner.LastRun()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"message":   "no run completed yet",
			"timestamp": time.Now().UTC(),
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}
