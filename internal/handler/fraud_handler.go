// internal/handler/fraud_handler.go
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AryanKumarOfficial/bloodchain/internal/models"
	"github.com/AryanKumarOfficial/bloodchain/internal/service"
)

type FraudHandler struct {
	engine *service.FraudEngine
	logger *zap.Logger
}

func NewFraudHandler(engine *service.FraudEngine, logger *zap.Logger) *FraudHandler {
	return &FraudHandler{
		engine: engine,
		logger: logger,
	}
}

type analyzeRequest struct {
	UserID string               `json:"user_id" binding:"required"`
	Event  string               `json:"event"`
	Device models.DeviceSignals `json:"device"`
}

// Analyze handles POST /api/v1/fraud/analyze
func (h *FraudHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event := &models.FraudEvent{
		Event:  req.Event,
		Device: req.Device,
	}

	score, err := h.engine.Analyze(c.Request.Context(), req.UserID, event)
	if err != nil {
		// A blocked user still gets the score back alongside the 403.
		if errors.Is(err, models.ErrFraudDetected) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": err.Error(),
				"score": score,
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"score": score})
}

// AlertHistory handles GET /api/v1/fraud/alerts/:user_id
func (h *FraudHandler) AlertHistory(c *gin.Context) {
	userID := c.Param("user_id")

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	alerts, err := h.engine.AlertHistory(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}
