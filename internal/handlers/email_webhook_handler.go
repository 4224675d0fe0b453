package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miniats/miniats/internal/dtos"
	"github.com/miniats/miniats/internal/mailer"
	"github.com/miniats/miniats/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EmailWebhookHandler is the internal email-dispatch receiver: other parts of
// the platform post an event type plus identifiers, and the handler resolves
// the entities and sends the matching transactional mail.
type EmailWebhookHandler struct {
	DB        *gorm.DB
	Mailer    *mailer.Mailer
	AppOrigin string
	Log       *zap.Logger
}

func NewEmailWebhookHandler(db *gorm.DB, mail *mailer.Mailer, appOrigin string, log *zap.Logger) *EmailWebhookHandler {
	return &EmailWebhookHandler{DB: db, Mailer: mail, AppOrigin: appOrigin, Log: log}
}

func (h *EmailWebhookHandler) Handle(c *gin.Context) {
	var req dtos.EmailEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	switch req.Type {
	case "team_invite":
		h.teamInvite(c, req.Data)
	case "application_received":
		h.applicationReceived(c, req.Data)
	case "candidate_stage_changed":
		h.stageChanged(c, req.Data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification type"})
	}
}

func (h *EmailWebhookHandler) teamInvite(c *gin.Context, data map[string]interface{}) {
	companyID := str(data, "companyId")
	inviterEmail := str(data, "inviterEmail")
	inviteeEmail := str(data, "inviteeEmail")
	token := str(data, "inviteToken")

	var company models.Company
	var inviter models.User
	if h.DB.Where("id = ?", companyID).First(&company).Error != nil ||
		h.DB.Where("email = ?", inviterEmail).First(&inviter).Error != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company or inviter not found"})
		return
	}

	inviterName := inviter.Name
	if inviterName == "" {
		inviterName = inviterEmail
	}
	inviteURL := h.AppOrigin + "/auth/invite?token=" + token
	if err := h.Mailer.SendTeamInvite(inviteeEmail, inviterName, company.Name, inviteURL); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *EmailWebhookHandler) applicationReceived(c *gin.Context, data map[string]interface{}) {
	company, job, candidate, ok := h.resolve(c, data)
	if !ok {
		return
	}

	var admins []models.User
	h.DB.Where("company_id = ? AND role = ?", company.ID, models.RoleAdmin).Find(&admins)
	if len(admins) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No admin users found"})
		return
	}

	link := h.AppOrigin + "/app/candidates/" + candidate.ID
	for _, admin := range admins {
		if err := h.Mailer.SendApplicationReceived(admin.Email, candidate.Name, localized(job.Title), company.Name, link); err != nil {
			h.Log.Warn("application mail failed", zap.String("to", admin.Email), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *EmailWebhookHandler) stageChanged(c *gin.Context, data map[string]interface{}) {
	company, job, candidate, ok := h.resolve(c, data)
	if !ok {
		return
	}
	stage := str(data, "stage")

	var team []models.User
	h.DB.Where("company_id = ? AND role IN ?", company.ID,
		[]string{models.RoleAdmin, models.RoleManager}).Find(&team)
	if len(team) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No team members found"})
		return
	}

	link := h.AppOrigin + "/app/candidates/" + candidate.ID
	for _, member := range team {
		if err := h.Mailer.SendStageChanged(member.Email, candidate.Name, localized(job.Title), stage, link); err != nil {
			h.Log.Warn("stage mail failed", zap.String("to", member.Email), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *EmailWebhookHandler) resolve(c *gin.Context, data map[string]interface{}) (*models.Company, *models.Job, *models.Candidate, bool) {
	var company models.Company
	var job models.Job
	var candidate models.Candidate
	if h.DB.Where("id = ?", str(data, "companyId")).First(&company).Error != nil ||
		h.DB.Where("id = ?", str(data, "jobId")).First(&job).Error != nil ||
		h.DB.Where("id = ?", str(data, "candidateId")).First(&candidate).Error != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company, job or candidate not found"})
		return nil, nil, nil, false
	}
	return &company, &job, &candidate, true
}

func str(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
