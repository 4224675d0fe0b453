package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miniats/miniats/internal/dtos"
	"github.com/miniats/miniats/internal/mailer"
	"github.com/miniats/miniats/internal/models"
	"github.com/miniats/miniats/internal/notify"
	"github.com/miniats/miniats/internal/pipeline"
	"github.com/miniats/miniats/internal/services"
	"github.com/miniats/miniats/internal/sessions"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type JobHandler struct {
	JobService *services.JobService
	Pipeline   *pipeline.Service
	Notifier   *notify.Notifier
	Mailer     *mailer.Mailer
	DB         *gorm.DB
	AppOrigin  string
	Log        *zap.Logger
}

func NewJobHandler(jobs *services.JobService, board *pipeline.Service, notifier *notify.Notifier, mail *mailer.Mailer, db *gorm.DB, appOrigin string, log *zap.Logger) *JobHandler {
	return &JobHandler{
		JobService: jobs,
		Pipeline:   board,
		Notifier:   notifier,
		Mailer:     mail,
		DB:         db,
		AppOrigin:  appOrigin,
		Log:        log,
	}
}

func (h *JobHandler) Create(c *gin.Context) {
	var req dtos.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	job, err := h.JobService.Create(sessions.CurrentScope(c), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create job: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.JobService.List(sessions.CurrentScope(c), c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs"})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.JobService.Get(sessions.CurrentScope(c), c.Param("id"))
	if errors.Is(err, services.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load job"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Update(c *gin.Context) {
	var req dtos.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	job, err := h.JobService.Update(sessions.CurrentScope(c), c.Param("id"), &req)
	if errors.Is(err, services.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update job: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) UpdateStatus(c *gin.Context) {
	var req dtos.JobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}
	job, err := h.JobService.UpdateStatus(sessions.CurrentScope(c), c.Param("id"), req.Status)
	if errors.Is(err, services.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Delete(c *gin.Context) {
	err := h.JobService.Delete(sessions.CurrentScope(c), c.Param("id"))
	if errors.Is(err, services.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete job"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Board is GET /app/jobs/:id/board, the stage-keyed kanban view.
func (h *JobHandler) Board(c *gin.Context) {
	scope := sessions.CurrentScope(c)
	if _, err := h.JobService.Get(scope, c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	board, err := h.Pipeline.Load(scope, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load board"})
		return
	}
	c.JSON(http.StatusOK, board)
}

// Move is POST /app/applications/:id/move, the drag-and-drop stage
// transition. The stage update and audit entry commit atomically; team
// notification and email afterwards are best effort.
func (h *JobHandler) Move(c *gin.Context) {
	var req dtos.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	scope := sessions.CurrentScope(c)
	actor := sessions.CurrentUser(c)
	app, err := h.Pipeline.Move(scope, actor, c.Param("id"), req.FromStage, req.ToStage, req.ToIndex)
	switch {
	case errors.Is(err, pipeline.ErrUnknownStage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown stage: " + req.ToStage})
		return
	case errors.Is(err, pipeline.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	case errors.Is(err, pipeline.ErrStageConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Application moved by someone else, reload the board"})
		return
	case err != nil:
		h.Log.Error("stage move failed", zap.String("application_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move application"})
		return
	}

	h.notifyStageChange(c, scope.CompanyID, app, req.ToStage)
	c.JSON(http.StatusOK, app)
}

func (h *JobHandler) notifyStageChange(c *gin.Context, companyID string, app *models.Application, stage string) {
	link := h.AppOrigin + "/app/candidates/" + app.CandidateID
	err := h.Notifier.SendToRole(c.Request.Context(), companyID,
		[]string{models.RoleAdmin, models.RoleManager},
		func(userID string) *models.Notification {
			return &models.Notification{
				CompanyID: companyID,
				UserID:    userID,
				Type:      "candidate_stage_changed",
				Title:     "Application update",
				Message:   app.Candidate.Name + " moved to " + mailer.StageName(stage),
				Link:      link,
			}
		})
	if err != nil {
		h.Log.Warn("stage-change notification failed", zap.Error(err))
	}

	var job models.Job
	if err := h.DB.Where("id = ?", app.JobID).First(&job).Error; err != nil {
		return
	}
	jobTitle := localized(job.Title)

	var team []models.User
	err = h.DB.Where("company_id = ? AND role IN ?", companyID,
		[]string{models.RoleAdmin, models.RoleManager}).Find(&team).Error
	if err != nil {
		h.Log.Warn("team lookup for stage mail failed", zap.Error(err))
		return
	}
	for _, member := range team {
		if err := h.Mailer.SendStageChanged(member.Email, app.Candidate.Name, jobTitle, stage, link); err != nil {
			h.Log.Warn("stage-change mail failed", zap.String("to", member.Email), zap.Error(err))
		}
	}
}

// localized picks a display string from a locale-keyed JSON map.
func localized(m map[string]interface{}) string {
	for _, key := range []string{"en", "pt"} {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}
	for _, v := range m {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}
