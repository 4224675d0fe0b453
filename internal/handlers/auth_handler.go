package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/miniats/miniats/internal/dtos"
	"github.com/miniats/miniats/internal/models"
	"github.com/miniats/miniats/internal/services"
	"github.com/miniats/miniats/internal/sessions"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const sessionCookieMaxAge = 30 * 24 * 60 * 60

type AuthHandler struct {
	DB          *gorm.DB
	Store       *sessions.Store
	TeamService *services.TeamService
	Log         *zap.Logger
}

func NewAuthHandler(db *gorm.DB, store *sessions.Store, team *services.TeamService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Store: store, TeamService: team, Log: log}
}

// Login checks the credentials and opens a session. The redirectTo query
// parameter set by the session gate decides where the client lands next.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	var user models.User
	err := h.DB.Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := h.Store.Create(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}
	h.setSessionCookie(c, token)

	redirectTo := c.Query("redirectTo")
	if redirectTo == "" {
		if user.CompanyID != "" {
			redirectTo = "/app/dashboard"
		} else {
			redirectTo = "/onboarding"
		}
	}
	c.JSON(http.StatusOK, gin.H{"redirectTo": redirectTo})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(sessions.CookieName); err == nil {
		if err := h.Store.Revoke(token); err != nil {
			h.Log.Warn("session revoke failed", zap.Error(err))
		}
	}
	c.SetCookie(sessions.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"redirectTo": "/"})
}

// AcceptInvite consumes a team invite token, creates the account and signs
// it in.
func (h *AuthHandler) AcceptInvite(c *gin.Context) {
	var req dtos.AcceptInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format: " + err.Error()})
		return
	}

	user, err := h.TeamService.Accept(&req)
	if errors.Is(err, services.ErrInviteNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invite not found or already accepted"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept invite: " + err.Error()})
		return
	}

	token, err := h.Store.Create(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open session"})
		return
	}
	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"redirectTo": "/app/dashboard"})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessions.CookieName, token, sessionCookieMaxAge, "/", "", false, true)
}
