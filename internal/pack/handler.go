package pack

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fitbook/internal/logger"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Create godoc
// @Summary Sell a session pack to a client
// @Tags packs
// @Accept json
// @Produce json
// @Param request body CreatePackRequest true "Pack purchase"
// @Success 201 {object} Pack
// @Failure 400 {object} api.ErrorResponse
// @Router /packs [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreatePackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	def := Definition{
		ID:              req.DefinitionID,
		Name:            req.Name,
		SessionCount:    req.SessionCount,
		PricePerSession: req.PricePerSession,
		ValidityMonths:  req.ValidityMonths,
	}
	if def.ID == "" {
		def.ID = uuid.NewString()
	}

	p, err := h.svc.CreatePack(c.Request.Context(), def, Client{ID: req.ClientID, Name: req.ClientName})
	if err != nil {
		logger.Errorf("Failed to create pack for client %s: %v", req.ClientID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create pack"})
		return
	}

	c.JSON(http.StatusCreated, p)
}

// Get godoc
// @Summary Get a session pack
// @Tags packs
// @Produce json
// @Param id path string true "Pack ID"
// @Success 200 {object} Pack
// @Failure 404 {object} api.ErrorResponse
// @Router /packs/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	p, err := h.svc.GetPack(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrPackNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pack not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pack"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// Status godoc
// @Summary Get a pack's derived status and remaining sessions
// @Tags packs
// @Produce json
// @Param id path string true "Pack ID"
// @Success 200 {object} PackStatusResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /packs/{id}/status [get]
func (h *Handler) Status(c *gin.Context) {
	status, err := h.svc.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrPackNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pack not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pack"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// ListByClient godoc
// @Summary List a client's session packs
// @Tags packs
// @Produce json
// @Param clientID path string true "Client ID"
// @Success 200 {array} Pack
// @Router /clients/{clientID}/packs [get]
func (h *Handler) ListByClient(c *gin.Context) {
	packs, err := h.svc.ListByClient(c.Request.Context(), c.Param("clientID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load packs"})
		return
	}

	c.JSON(http.StatusOK, packs)
}
