package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miniats/miniats/internal/dtos"
	"github.com/miniats/miniats/internal/services"
	"github.com/miniats/miniats/internal/sessions"
	"github.com/miniats/miniats/internal/storage"
	"go.uber.org/zap"
)

const maxLogoSize = 2 * 1024 * 1024

type CompanyHandler struct {
	CompanyService *services.CompanyService
	Uploader       *storage.Uploader
	Log            *zap.Logger
}

func NewCompanyHandler(company *services.CompanyService, uploader *storage.Uploader, log *zap.Logger) *CompanyHandler {
	return &CompanyHandler{CompanyService: company, Uploader: uploader, Log: log}
}

// Onboard is POST /onboarding: creates the company and makes the current
// user its admin.
func (h *CompanyHandler) Onboard(c *gin.Context) {
	var req dtos.OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	user := sessions.CurrentUser(c)
	company, err := h.CompanyService.Onboard(user, &req)
	switch {
	case errors.Is(err, services.ErrSlugTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "This slug is already in use. Please choose another.", "field": "slug"})
	case errors.Is(err, services.ErrInvalidSlug):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slug must contain only lowercase letters, digits and hyphens", "field": "slug"})
	case errors.Is(err, services.ErrHasCompany):
		c.JSON(http.StatusBadRequest, gin.H{"error": "You already belong to a company"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create company: " + err.Error()})
	default:
		c.JSON(http.StatusCreated, gin.H{"company": company, "redirectTo": "/app/dashboard"})
	}
}

func (h *CompanyHandler) Get(c *gin.Context) {
	company, err := h.CompanyService.Get(sessions.CurrentScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load company"})
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *CompanyHandler) UpdateSettings(c *gin.Context) {
	var req dtos.CompanySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	company, err := h.CompanyService.UpdateSettings(sessions.CurrentScope(c), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, company)
}

// UploadLogo stores the company logo in the blob store and persists its
// public URL.
func (h *CompanyHandler) UploadLogo(c *gin.Context) {
	fileHeader, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Logo file is required", "field": "logo"})
		return
	}
	if fileHeader.Size > maxLogoSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Logo must be at most 2MB", "field": "logo"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := h.Uploader.Upload(c.Request.Context(), storage.BucketLogos, fileHeader.Filename, contentType, data)
	if err != nil {
		h.Log.Error("logo upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload logo"})
		return
	}
	if err := h.CompanyService.SetLogo(sessions.CurrentScope(c), url); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save logo"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logo_url": url})
}
