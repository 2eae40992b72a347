// internal/handler/verification_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AryanKumarOfficial/bloodchain/internal/service"
)

type VerificationHandler struct {
	verifier *service.ConsensusVerifier
	logger   *zap.Logger
}

func NewVerificationHandler(verifier *service.ConsensusVerifier, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{
		verifier: verifier,
		logger:   logger,
	}
}

type runVerificationRequest struct {
	RecordID   string                 `json:"record_id" binding:"required"`
	RecordData map[string]interface{} `json:"record_data" binding:"required"`
}

// RunVerification handles POST /api/v1/verifications/run
func (h *VerificationHandler) RunVerification(c *gin.Context) {
	var req runVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	verifierIDs, err := h.verifier.Verify(c.Request.Context(), req.RecordID, req.RecordData)
	if err != nil {
		h.logger.Error("verification round failed",
			zap.Error(err),
			zap.String("record_id", req.RecordID))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"record_id": req.RecordID,
		"verifiers": verifierIDs,
		"verified":  true,
	})
}

type registerVerifierRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// RegisterVerifier handles POST /api/v1/verifiers
func (h *VerificationHandler) RegisterVerifier(c *gin.Context) {
	var req registerVerifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.verifier.RegisterAsVerifier(c.Request.Context(), req.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "verifier registered"})
}

type updateQualificationRequest struct {
	Successful *bool `json:"successful" binding:"required"`
}

// UpdateQualification handles POST /api/v1/verifiers/:id/qualification
func (h *VerificationHandler) UpdateQualification(c *gin.Context) {
	verifierID := c.Param("id")

	var req updateQualificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.verifier.UpdateQualification(c.Request.Context(), verifierID, *req.Successful); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "qualification updated"})
}
