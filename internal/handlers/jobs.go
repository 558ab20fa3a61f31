package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	srvErrors "github.com/tupyy/jobengine/pkg/errors"
	"github.com/tupyy/jobengine/pkg/engine"
)

// JobResponse is the wire shape of a job returned by the introspection API.
type JobResponse struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Label      string     `json:"label,omitempty"`
	Status     string     `json:"status"`
	Attempts   int        `json:"attempts"`
	CreatedAt  time.Time  `json:"createdAt"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	StoppedAt  *time.Time `json:"stoppedAt,omitempty"`
	Result     any        `json:"result,omitempty"`
	Error      string     `json:"error,omitempty"`
}

func toJobResponse(j *engine.Job) JobResponse {
	created, started, stopped := j.Timestamps()
	resp := JobResponse{
		ID:        j.ID(),
		Kind:      string(j.Kind()),
		Label:     j.Label(),
		Status:    string(j.Status()),
		Attempts:  j.Attempts(),
		CreatedAt: created,
	}
	if !started.IsZero() {
		resp.StartedAt = &started
	}
	if !stopped.IsZero() {
		resp.StoppedAt = &stopped
	}
	if j.Status().Terminal() {
		result, err := j.Result()
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Result = result
		}
	}
	return resp
}

// ListJobs returns every job the engine knows about, optionally filtered by
// status and/or kind query parameters.
// (GET /jobs)
func (h *Handler) ListJobs(c *gin.Context) {
	status := c.Query("status")
	kind := c.Query("kind")

	jobs := h.eng.Jobs()
	out := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		if status != "" && string(j.Status()) != status {
			continue
		}
		if kind != "" && string(j.Kind()) != kind {
			continue
		}
		out = append(out, toJobResponse(j))
	}
	c.JSON(http.StatusOK, gin.H{"jobs": out})
}

// GetJob returns one job's detail.
// (GET /jobs/{id})
func (h *Handler) GetJob(c *gin.Context) {
	id := c.Param("id")
	job, ok := h.eng.Job(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": srvErrors.NewResourceNotFoundError("job", id).Error()})
		return
	}
	c.JSON(http.StatusOK, toJobResponse(job))
}

// submitJobRequest is the body of POST /jobs.
type submitJobRequest struct {
	Launcher string `json:"launcher" binding:"required"`
	Args     []any  `json:"args"`
	Label    string `json:"label"`
}

// SubmitJob dispatches a job via one of the server's pre-registered
// launchers. The launchers themselves are registered by cmd/jobengine and the
// caller only names one, since a job's Callable can't be sent over the wire.
// (POST /jobs)
func (h *Handler) SubmitJob(c *gin.Context) {
	var req submitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	launcher, ok := h.launchers[req.Launcher]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": srvErrors.NewResourceNotFoundError("launcher", req.Launcher).Error()})
		return
	}

	var opts []engine.JobOption
	if req.Label != "" {
		opts = append(opts, engine.WithLabel(req.Label))
	}

	future, err := launcher.Submit(engine.WithEngine(context.Background(), h.eng), req.Args, opts...)
	if err != nil {
		zap.S().Named("job_handler").Errorw("failed to submit job", "launcher", req.Launcher, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"id": future.JobID()})
}

// CancelJob requests cancellation of a job.
// (POST /jobs/{id}/cancel)
func (h *Handler) CancelJob(c *gin.Context) {
	id := c.Param("id")
	job, ok := h.eng.Job(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": srvErrors.NewResourceNotFoundError("job", id).Error()})
		return
	}
	if err := job.Cancel(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toJobResponse(job))
}

// RerunJob resubmits a terminal job from scratch.
// (POST /jobs/{id}/rerun)
func (h *Handler) RerunJob(c *gin.Context) {
	id := c.Param("id")
	job, ok := h.eng.Job(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": srvErrors.NewResourceNotFoundError("job", id).Error()})
		return
	}
	if err := job.Rerun(); err != nil {
		if srvErrors.IsEngineStateError(err) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toJobResponse(job))
}
