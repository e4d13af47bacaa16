package reservation

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fitbook/internal/api"
	"fitbook/internal/auth"
	"fitbook/internal/logger"
	"fitbook/internal/pack"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Create godoc
// @Summary Book a session
// @Tags reservations
// @Accept json
// @Produce json
// @Param request body CreateReservationRequest true "Reservation"
// @Success 201 {object} Reservation
// @Failure 400 {object} api.ErrorResponse
// @Failure 422 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /reservations [post]
func (h *Handler) Create(c *gin.Context) {
	ownerID, ok := auth.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.svc.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, r)
}

// Get godoc
// @Summary Get a reservation
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} Reservation
// @Failure 404 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /reservations/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	r, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// List godoc
// @Summary List the caller's reservations
// @Tags reservations
// @Produce json
// @Param state query string false "Filter by state"
// @Param client_id query string false "Filter by client"
// @Param session_type query string false "Filter by session type"
// @Param from query string false "Start of range (RFC 3339)"
// @Param to query string false "End of range (RFC 3339)"
// @Success 200 {array} Reservation
// @Security BearerAuth
// @Router /reservations [get]
func (h *Handler) List(c *gin.Context) {
	ownerID, ok := auth.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	f := Filter{
		OwnerID:     ownerID,
		ClientID:    c.Query("client_id"),
		SessionType: SessionType(c.Query("session_type")),
	}
	if state := c.Query("state"); state != "" {
		f.States = []State{State(state)}
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		f.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		f.To = &to
	}

	list, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reservations"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// Confirm godoc
// @Summary Confirm a pending reservation
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} Reservation
// @Failure 409 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /reservations/{id}/confirm [post]
func (h *Handler) Confirm(c *gin.Context) {
	r, err := h.svc.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// Reschedule godoc
// @Summary Move a reservation to a new time slot
// @Tags reservations
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body RescheduleRequest true "New time slot"
// @Success 200 {object} Reservation
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /reservations/{id}/reschedule [post]
func (h *Handler) Reschedule(c *gin.Context) {
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.svc.Reschedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// Cancel godoc
// @Summary Cancel a reservation
// @Tags reservations
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body CancelRequest true "Who cancels and why"
// @Success 200 {object} api.CancellationResponse
// @Failure 409 {object} api.ErrorResponse
// @Failure 422 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /reservations/{id}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.svc.Cancel(c.Request.Context(), c.Param("id"), req.Initiator, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.CancellationResponse{
		Message:            result.Message,
		FeeAmount:          result.FeeAmount,
		PackPenaltyApplied: result.PackPenaltyApplied,
	})
}

// Complete godoc
// @Summary Mark a reservation as completed
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} Reservation
// @Failure 409 {object} api.ErrorResponse
// @Failure 422 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /reservations/{id}/complete [post]
func (h *Handler) Complete(c *gin.Context) {
	r, err := h.svc.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// NoShow godoc
// @Summary Mark a reservation as a no-show
// @Tags reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} Reservation
// @Failure 409 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /reservations/{id}/no-show [post]
func (h *Handler) NoShow(c *gin.Context) {
	r, err := h.svc.MarkNoShow(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

// Upcoming godoc
// @Summary List reservations starting within the next 24 hours
// @Tags reservations
// @Produce json
// @Success 200 {array} Reservation
// @Security BearerAuth
// @Router /reservations/upcoming [get]
func (h *Handler) Upcoming(c *gin.Context) {
	ownerID, ok := auth.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	list, err := h.svc.Upcoming(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reservations"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// Unpaid godoc
// @Summary List reservations with pending payment
// @Tags reservations
// @Produce json
// @Success 200 {array} Reservation
// @Security BearerAuth
// @Router /reservations/unpaid [get]
func (h *Handler) Unpaid(c *gin.Context) {
	ownerID, ok := auth.GetOwnerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	list, err := h.svc.Unpaid(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reservations"})
		return
	}

	c.JSON(http.StatusOK, list)
}

// Pay godoc
// @Summary Mark a reservation as paid
// @Tags reservations
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body MarkPaidRequest false "Payment method"
// @Success 200 {object} Reservation
// @Failure 404 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /reservations/{id}/pay [post]
func (h *Handler) Pay(c *gin.Context) {
	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.svc.MarkPaid(c.Request.Context(), c.Param("id"), req.Method)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, r)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, pack.ErrPackNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrSlotUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrCancellationNotAllowed),
		errors.Is(err, ErrSessionNotFinished),
		errors.Is(err, pack.ErrPackExhausted),
		errors.Is(err, pack.ErrPackExpired),
		errors.Is(err, pack.ErrPackSuspended):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, ErrPastDate),
		errors.Is(err, ErrInvalidTimeRange),
		errors.Is(err, ErrInvalidSessionType),
		errors.Is(err, ErrPackClientMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("Reservation operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
