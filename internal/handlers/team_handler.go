package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miniats/miniats/internal/dtos"
	"github.com/miniats/miniats/internal/mailer"
	"github.com/miniats/miniats/internal/models"
	"github.com/miniats/miniats/internal/services"
	"github.com/miniats/miniats/internal/sessions"
	"github.com/miniats/miniats/internal/tenant"
	"go.uber.org/zap"
)

type TeamHandler struct {
	TeamService    *services.TeamService
	CompanyService *services.CompanyService
	Mailer         *mailer.Mailer
	AppOrigin      string
	Log            *zap.Logger
}

func NewTeamHandler(team *services.TeamService, company *services.CompanyService, mail *mailer.Mailer, appOrigin string, log *zap.Logger) *TeamHandler {
	return &TeamHandler{
		TeamService:    team,
		CompanyService: company,
		Mailer:         mail,
		AppOrigin:      appOrigin,
		Log:            log,
	}
}

func (h *TeamHandler) List(c *gin.Context) {
	members, err := h.TeamService.List(sessions.CurrentScope(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list team"})
		return
	}
	c.JSON(http.StatusOK, members)
}

// Invite creates the pending membership and mails the invite link.
func (h *TeamHandler) Invite(c *gin.Context) {
	var req dtos.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	scope := sessions.CurrentScope(c)
	inviter := sessions.CurrentUser(c)
	member, err := h.TeamService.Invite(scope, inviter, &req)
	if errors.Is(err, services.ErrAlreadyMember) {
		c.JSON(http.StatusConflict, gin.H{"error": "This email is already on the team", "field": "email"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invite: " + err.Error()})
		return
	}

	h.sendInviteMail(scope, inviter, member)
	c.JSON(http.StatusCreated, member)
}

func (h *TeamHandler) Resend(c *gin.Context) {
	scope := sessions.CurrentScope(c)
	member, err := h.TeamService.Resend(scope, c.Param("id"))
	if errors.Is(err, services.ErrMemberNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pending invite not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resend invite"})
		return
	}
	h.sendInviteMail(scope, sessions.CurrentUser(c), member)
	c.JSON(http.StatusOK, member)
}

func (h *TeamHandler) Revoke(c *gin.Context) {
	err := h.TeamService.Revoke(sessions.CurrentScope(c), c.Param("id"))
	if errors.Is(err, services.ErrMemberNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team member not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove team member"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TeamHandler) sendInviteMail(scope tenant.Scope, inviter *models.User, member *models.TeamMember) {
	company, err := h.CompanyService.Get(scope)
	if err != nil {
		h.Log.Warn("company lookup for invite mail failed", zap.Error(err))
		return
	}
	inviterName := inviter.Name
	if inviterName == "" {
		inviterName = inviter.Email
	}
	inviteURL := h.AppOrigin + "/auth/invite?token=" + member.InviteToken
	if err := h.Mailer.SendTeamInvite(member.Email, inviterName, company.Name, inviteURL); err != nil {
		h.Log.Warn("invite mail failed", zap.String("to", member.Email), zap.Error(err))
	}
}
