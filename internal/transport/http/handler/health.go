package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docquery/internal/app"
	"docquery/internal/bootstrap"
	"docquery/internal/platform/postgres"
)

type HealthHandler struct {
	app      *bootstrap.App
	embedder app.Embedder
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(application *bootstrap.App, embedder app.Embedder) *HealthHandler {
	return &HealthHandler{app: application, embedder: embedder}
}

// Check probes the store and the model service independently. Overall state
// follows from those two; redis and rabbitmq are reported but advisory.
// healthy -> 200, degraded (one of the two ok) -> 207, unhealthy -> 503.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	dbStatus, vectorEnabled := h.checkPostgres(ctx)
	llmStatus := h.checkModelService(ctx)
	redisStatus := h.checkRedis(ctx)
	rmqStatus := h.checkRabbitMQ()

	overall := "unhealthy"
	statusCode := http.StatusServiceUnavailable
	switch {
	case dbStatus.OK && llmStatus.OK:
		overall = "healthy"
		statusCode = http.StatusOK
	case dbStatus.OK || llmStatus.OK:
		overall = "degraded"
		statusCode = http.StatusMultiStatus
	}

	c.JSON(statusCode, gin.H{
		"app":              h.app.Config.App.Name,
		"env":              h.app.Config.App.Env,
		"overall":          overall,
		"uptime_sec":       int(time.Since(h.app.StartedAt).Seconds()),
		"pgvector_enabled": vectorEnabled,
		"dependencies": gin.H{
			"database": dbStatus,
			"llm":      llmStatus,
			"redis":    redisStatus,
			"rabbitmq": rmqStatus,
		},
	})
}

func (h *HealthHandler) checkPostgres(ctx context.Context) (dependencyStatus, bool) {
	sqlDB, err := h.app.DB.DB()
	if err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}, false
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}, false
	}

	hasVector, err := postgres.HasVectorExtension(ctx, h.app.DB)
	if err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}, false
	}
	status := dependencyStatus{OK: true}
	if !hasVector {
		status.Message = "pgvector extension not enabled"
	}
	return status, hasVector
}

// checkModelService runs a one-word embedding, which is cheaper than a
// completion and exercises the same endpoint auth.
func (h *HealthHandler) checkModelService(ctx context.Context) dependencyStatus {
	if _, err := h.embedder.Embed(ctx, "healthcheck"); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRedis(ctx context.Context) dependencyStatus {
	if err := h.app.Redis.Ping(ctx).Err(); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRabbitMQ() dependencyStatus {
	if h.app.MQConn == nil || h.app.MQConn.IsClosed() {
		return dependencyStatus{OK: false, Message: "connection closed"}
	}
	return dependencyStatus{OK: true}
}
