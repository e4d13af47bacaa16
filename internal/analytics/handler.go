package analytics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fitbook/internal/auth"
	"fitbook/internal/logger"
	"fitbook/internal/reservation"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Snapshot godoc
// @Summary Revenue and utilization snapshot over the caller's reservations
// @Tags analytics
// @Produce json
// @Param client_id query string false "Filter by client"
// @Param state query string false "Filter by state"
// @Param session_type query string false "Filter by session type"
// @Param from query string false "Start of range (RFC 3339)"
// @Param to query string false "End of range (RFC 3339)"
// @Param owner_id query string false "Scope to one owner (center role only)"
// @Success 200 {object} Snapshot
// @Security BearerAuth
// @Router /analytics/reservations [get]
func (h *Handler) Snapshot(c *gin.Context) {
	ownerID, ok := auth.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	f := reservation.Filter{
		OwnerID:     ownerID,
		ClientID:    c.Query("client_id"),
		SessionType: reservation.SessionType(c.Query("session_type")),
	}

	// Trainers only ever see their own set. The center role may widen the
	// scope to the whole organization or pin it to one trainer.
	if auth.GetRole(c) == auth.RoleCenter {
		f.OwnerID = c.Query("owner_id")
	}

	if state := c.Query("state"); state != "" {
		f.States = []reservation.State{reservation.State(state)}
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		f.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		f.To = &to
	}

	snap, err := h.svc.Snapshot(c.Request.Context(), f)
	if err != nil {
		logger.Errorf("Failed to build analytics snapshot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build snapshot"})
		return
	}

	c.JSON(http.StatusOK, snap)
}
