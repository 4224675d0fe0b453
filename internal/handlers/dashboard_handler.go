package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/miniats/miniats/internal/config"
	"github.com/miniats/miniats/internal/services"
	"github.com/miniats/miniats/internal/sessions"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	Dashboard *services.DashboardService
	DB        *gorm.DB
}

func NewDashboardHandler(dashboard *services.DashboardService, db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{Dashboard: dashboard, DB: db}
}

// TenantDashboard is GET /app/dashboard. The side lists are non-critical and
// degrade to empty on error.
func (h *DashboardHandler) TenantDashboard(c *gin.Context) {
	scope := sessions.CurrentScope(c)
	stats, err := h.Dashboard.TenantStats(scope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stats":               stats,
		"recent_applications": h.Dashboard.RecentApplications(scope, 5),
		"activity":            h.Dashboard.ActivityFeed(scope, 10),
	})
}

// AdminDashboard is GET /admin/dashboard, the cross-tenant overview.
func (h *DashboardHandler) AdminDashboard(c *gin.Context) {
	stats, err := h.Dashboard.AdminStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load admin dashboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stats":            stats,
		"recent_companies": h.Dashboard.RecentCompanies(5),
		"recent_activity":  h.Dashboard.RecentActivity(10),
	})
}

// Health is GET /health: database connectivity plus missing env keys.
func (h *DashboardHandler) Health(c *gin.Context) {
	status := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": gin.H{
			"database":    "connected",
			"environment": "configured",
		},
	}

	sqlDB, err := h.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "unhealthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"error":     "database: " + err.Error(),
		})
		return
	}

	if missing := config.Missing(); len(missing) > 0 {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "unhealthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"error":     "missing environment variables",
			"missing":   missing,
		})
		return
	}
	c.JSON(http.StatusOK, status)
}
