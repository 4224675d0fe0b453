package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miniats/miniats/internal/dtos"
	"github.com/miniats/miniats/internal/services"
	"github.com/miniats/miniats/internal/sessions"
)

type CandidateHandler struct {
	Candidates *services.CandidateService
	TalentPool *services.TalentPoolService
}

func NewCandidateHandler(candidates *services.CandidateService, pool *services.TalentPoolService) *CandidateHandler {
	return &CandidateHandler{Candidates: candidates, TalentPool: pool}
}

func (h *CandidateHandler) List(c *gin.Context) {
	candidates, err := h.Candidates.List(sessions.CurrentScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list candidates"})
		return
	}
	c.JSON(http.StatusOK, candidates)
}

func (h *CandidateHandler) Get(c *gin.Context) {
	candidate, applications, err := h.Candidates.Get(sessions.CurrentScope(c), c.Param("id"))
	if errors.Is(err, services.ErrCandidateNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load candidate"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidate": candidate, "applications": applications})
}

func (h *CandidateHandler) AddToPool(c *gin.Context) {
	var req dtos.TalentPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	entry, err := h.TalentPool.Add(sessions.CurrentScope(c), sessions.CurrentUser(c), req.CandidateID)
	switch {
	case errors.Is(err, services.ErrCandidateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
	case errors.Is(err, services.ErrAlreadyPooled):
		c.JSON(http.StatusConflict, gin.H{"error": "Candidate is already in the talent pool"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to talent pool"})
	default:
		c.JSON(http.StatusCreated, entry)
	}
}

func (h *CandidateHandler) RemoveFromPool(c *gin.Context) {
	err := h.TalentPool.Remove(sessions.CurrentScope(c), c.Param("id"))
	if errors.Is(err, services.ErrCandidateNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not in talent pool"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove from talent pool"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CandidateHandler) ListPool(c *gin.Context) {
	entries, err := h.TalentPool.List(sessions.CurrentScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list talent pool"})
		return
	}
	c.JSON(http.StatusOK, entries)
}
