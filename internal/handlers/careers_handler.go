package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/mail"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/miniats/miniats/internal/mailer"
	"github.com/miniats/miniats/internal/models"
	"github.com/miniats/miniats/internal/notify"
	"github.com/miniats/miniats/internal/services"
	"github.com/miniats/miniats/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxResumeSize = 5 * 1024 * 1024

var resumeExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

type CareersHandler struct {
	Careers   *services.CareersService
	Uploader  *storage.Uploader
	Notifier  *notify.Notifier
	Mailer    *mailer.Mailer
	DB        *gorm.DB
	AppOrigin string
	Log       *zap.Logger
}

func NewCareersHandler(careers *services.CareersService, uploader *storage.Uploader, notifier *notify.Notifier, mail *mailer.Mailer, db *gorm.DB, appOrigin string, log *zap.Logger) *CareersHandler {
	return &CareersHandler{
		Careers:   careers,
		Uploader:  uploader,
		Notifier:  notifier,
		Mailer:    mail,
		DB:        db,
		AppOrigin: appOrigin,
		Log:       log,
	}
}

// CompanyPage is GET /careers/:slug, the public micro-site.
func (h *CareersHandler) CompanyPage(c *gin.Context) {
	company, jobs, err := h.Careers.CompanyBySlug(c.Param("slug"))
	if errors.Is(err, services.ErrCompanyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load career page"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company, "jobs": jobs})
}

// JobPage is GET /careers/:slug/jobs/:id.
func (h *CareersHandler) JobPage(c *gin.Context) {
	company, job, err := h.Careers.PublishedJob(c.Param("slug"), c.Param("id"))
	switch {
	case errors.Is(err, services.ErrCompanyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
	case errors.Is(err, services.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load job"})
	default:
		c.JSON(http.StatusOK, gin.H{"company": company, "job": job})
	}
}

// Apply is POST /careers/:slug/jobs/:id/apply, a multipart form. The resume
// is required and validated up front: a rejected submission writes no rows.
func (h *CareersHandler) Apply(c *gin.Context) {
	company, job, err := h.Careers.PublishedJob(c.Param("slug"), c.Param("id"))
	switch {
	case errors.Is(err, services.ErrCompanyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	case errors.Is(err, services.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load job"})
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	email := strings.TrimSpace(c.PostForm("email"))
	if len(name) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required", "field": "name"})
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required", "field": "email"})
		return
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A resume file is required", "field": "resume"})
		return
	}
	if fileHeader.Size > maxResumeSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Resume must be at most 5MB", "field": "resume"})
		return
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !resumeExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF or Word files are accepted", "field": "resume"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read resume"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read resume"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	resumeURL, err := h.Uploader.Upload(c.Request.Context(), storage.BucketResumes, fileHeader.Filename, contentType, data)
	if err != nil {
		h.Log.Error("resume upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload resume"})
		return
	}

	application, err := h.Careers.Apply(company, job, services.ApplyInput{
		Name:         name,
		Email:        email,
		Phone:        c.PostForm("phone"),
		LinkedinURL:  c.PostForm("linkedin_url"),
		PortfolioURL: c.PostForm("portfolio_url"),
		Location:     c.PostForm("location"),
		Message:      c.PostForm("message"),
		ResumeURL:    resumeURL,
	})
	if err != nil {
		h.Log.Error("application create failed", zap.String("job_id", job.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit application"})
		return
	}

	h.notifyNewApplication(c, company, job, application)
	c.JSON(http.StatusCreated, gin.H{"application_id": application.ID})
}

// notifyNewApplication tells the company's admins about the application,
// in-app and by mail. Best effort after the commit.
func (h *CareersHandler) notifyNewApplication(c *gin.Context, company *models.Company, job *models.Job, app *models.Application) {
	jobTitle := localized(job.Title)
	link := h.AppOrigin + "/app/candidates/" + app.CandidateID

	err := h.Notifier.SendToRole(c.Request.Context(), company.ID,
		[]string{models.RoleAdmin},
		func(userID string) *models.Notification {
			return &models.Notification{
				CompanyID: company.ID,
				UserID:    userID,
				Type:      "application_received",
				Title:     "New application",
				Message:   app.Candidate.Name + " applied for " + jobTitle,
				Link:      link,
			}
		})
	if err != nil {
		h.Log.Warn("application notification failed", zap.Error(err))
	}

	var admins []models.User
	err = h.DB.Where("company_id = ? AND role = ?", company.ID, models.RoleAdmin).Find(&admins).Error
	if err != nil {
		h.Log.Warn("admin lookup for application mail failed", zap.Error(err))
		return
	}
	for _, admin := range admins {
		if err := h.Mailer.SendApplicationReceived(admin.Email, app.Candidate.Name, jobTitle, company.Name, link); err != nil {
			h.Log.Warn("application mail failed", zap.String("to", admin.Email), zap.Error(err))
		}
	}
}
