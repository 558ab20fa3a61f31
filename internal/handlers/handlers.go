package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tupyy/jobengine/pkg/engine"
)

// LauncherRegistry maps a stable name to a pre-built Launcher, so a POST
// /jobs request can name the work it wants done without ever transmitting a
// Go closure over HTTP.
type LauncherRegistry map[string]*engine.Launcher

// Handler holds the dependencies every job endpoint needs.
type Handler struct {
	eng       *engine.Engine
	launchers LauncherRegistry
}

// New builds a Handler over eng, with launchers available to POST /jobs.
func New(eng *engine.Engine, launchers LauncherRegistry) *Handler {
	return &Handler{eng: eng, launchers: launchers}
}

// Register mounts every job endpoint onto router.
func Register(router *gin.RouterGroup, h *Handler) {
	router.GET("/jobs", h.ListJobs)
	router.GET("/jobs/:id", h.GetJob)
	router.POST("/jobs", h.SubmitJob)
	router.POST("/jobs/:id/cancel", h.CancelJob)
	router.POST("/jobs/:id/rerun", h.RerunJob)
}
