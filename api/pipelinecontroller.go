package api

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"contentbot/workflow"

	"github.com/gin-gonic/gin"
)

// RegisterPipelineRoutes registers the trigger and status endpoints.
func RegisterPipelineRoutes(r *gin.Engine, svc Service) {
	h := &pipelineHandler{svc: svc}
	g := r.Group("/api")
	g.POST("/trigger", h.handleTrigger)
	g.GET("/status", h.handleStatus)
	g.GET("/cron", h.handleCron)
}

type pipelineHandler struct {
	svc Service
}

// handleTrigger starts a run and returns 202 without waiting for it
func (h *pipelineHandler) handleTrigger(c *gin.Context) {
	res, err := h.svc.TriggerRun(c.Request.Context(), originFor(c))
	if err != nil {
		respondTriggerError(c, res, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": res.Message,
		"runId":   res.Task.ID(),
	})
}

func (h *pipelineHandler) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Status())
}

// handleCron is the entry point for external schedulers. It expects
// "Authorization: Bearer <secret>" when a secret is configured.
func (h *pipelineHandler) handleCron(c *gin.Context) {
	res, err := h.svc.TriggerScheduled(c.Request.Context(), bearerToken(c.GetHeader("Authorization")))
	if err != nil {
		respondTriggerError(c, res, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Cron job triggered successfully",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func respondTriggerError(c *gin.Context, res workflow.TriggerResult, err error) {
	switch {
	case errors.Is(err, workflow.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, workflow.ErrAlreadyRunning):
		c.JSON(http.StatusConflict, gin.H{"error": res.Message})
	default:
		log.Printf("❌ Trigger failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// originFor labels dashboard triggers separately from plain API calls
func originFor(c *gin.Context) string {
	if c.GetHeader("X-Trigger-Origin") == workflow.OriginMonitor {
		return workflow.OriginMonitor
	}
	return workflow.OriginManual
}

func bearerToken(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return token
}
