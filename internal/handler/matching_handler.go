// internal/handler/matching_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AryanKumarOfficial/bloodchain/internal/geo"
	"github.com/AryanKumarOfficial/bloodchain/internal/service"
)

type MatchingHandler struct {
	engine    *service.MatchEngine
	locations *service.LocationCache
	logger    *zap.Logger
}

func NewMatchingHandler(engine *service.MatchEngine, locations *service.LocationCache, logger *zap.Logger) *MatchingHandler {
	return &MatchingHandler{
		engine:    engine,
		locations: locations,
		logger:    logger,
	}
}

type runMatchingRequest struct {
	RequestID string `json:"request_id" binding:"required"`
	Limit     int    `json:"limit"`
}

// RunMatching handles POST /api/v1/matching/run
func (h *MatchingHandler) RunMatching(c *gin.Context) {
	var req runMatchingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidates, err := h.engine.RunMatching(c.Request.Context(), req.RequestID, req.Limit)
	if err != nil {
		h.logger.Error("matching round failed",
			zap.Error(err),
			zap.String("request_id", req.RequestID))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id": req.RequestID,
		"candidates": candidates,
		"count":      len(candidates),
	})
}

type acceptMatchRequest struct {
	DonorUserID string `json:"donor_user_id" binding:"required"`
}

// AcceptMatch handles POST /api/v1/matches/:id/accept
func (h *MatchingHandler) AcceptMatch(c *gin.Context) {
	matchID := c.Param("id")

	var req acceptMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match, err := h.engine.AcceptMatch(c.Request.Context(), matchID, req.DonorUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"match": match})
}

// CompleteMatch handles POST /api/v1/matches/:id/complete
func (h *MatchingHandler) CompleteMatch(c *gin.Context) {
	matchID := c.Param("id")

	match, err := h.engine.CompleteMatch(c.Request.Context(), matchID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"match": match})
}

// MatchesForRequest handles GET /api/v1/requests/:id/matches
func (h *MatchingHandler) MatchesForRequest(c *gin.Context) {
	requestID := c.Param("id")

	matches, err := h.engine.MatchesForRequest(c.Request.Context(), requestID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

type updateLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// UpdateDonorLocation handles PUT /api/v1/donors/:id/location
func (h *MatchingHandler) UpdateDonorLocation(c *gin.Context) {
	userID := c.Param("id")

	var req updateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coord := geo.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if !coord.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	}

	h.locations.Update(c.Request.Context(), userID, coord)
	c.JSON(http.StatusOK, gin.H{"message": "location updated"})
}
