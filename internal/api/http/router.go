package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/mikesoares/linkwatch/internal/api/http/middleware"
)

// NewRouter wires the status endpoints. Gin runs in release mode with
// a slog request logger instead of its default console logger.
func NewRouter(statusController *StatusController, log *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(middleware.Logger(log), gin.Recovery())

	router.GET("/health", statusController.Health)
	router.GET("/status", statusController.Status)

	return router
}
