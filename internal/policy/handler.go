package policy

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fitbook/internal/auth"
	"fitbook/internal/logger"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// Get godoc
// @Summary Get the caller's cancellation policy
// @Tags policies
// @Produce json
// @Success 200 {object} Policy
// @Failure 404 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /policies [get]
func (h *Handler) Get(c *gin.Context) {
	ownerID, ok := auth.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p, err := h.repo.GetByOwner(c.Request.Context(), ownerID)
	if err != nil {
		if errors.Is(err, ErrNoPolicy) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no cancellation policy configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load policy"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// Upsert godoc
// @Summary Create or replace the caller's cancellation policy
// @Tags policies
// @Accept json
// @Produce json
// @Param request body UpsertPolicyRequest true "Policy settings"
// @Success 200 {object} Policy
// @Failure 400 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /policies [put]
func (h *Handler) Upsert(c *gin.Context) {
	ownerID, ok := auth.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req UpsertPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := &Policy{
		OwnerID:               ownerID,
		Active:                req.Active,
		MinAdvanceHours:       req.MinAdvanceHours,
		AllowLateCancellation: req.AllowLateCancellation,
		ApplyLateFee:          req.ApplyLateFee,
		FeePercentage:         req.FeePercentage,
		FeeFixedAmount:        req.FeeFixedAmount,
		ApplyPackPenalty:      req.ApplyPackPenalty,
		NotifyClient:          req.NotifyClient,
		CustomMessage:         req.CustomMessage,
	}

	if err := h.repo.Upsert(c.Request.Context(), p); err != nil {
		logger.Errorf("Failed to save policy for owner %s: %v", ownerID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save policy"})
		return
	}

	logger.Info("Cancellation policy saved", "owner_id", ownerID, "active", p.Active)
	c.JSON(http.StatusOK, p)
}
