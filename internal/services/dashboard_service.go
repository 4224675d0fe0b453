package services

import (
	"fmt"
	"math"
	"time"

	"github.com/miniats/miniats/internal/models"
	"github.com/miniats/miniats/internal/tenant"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DashboardService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewDashboardService(db *gorm.DB, log *zap.Logger) *DashboardService {
	return &DashboardService{DB: db, Log: log}
}

// TenantStats are the dashboard cards for one company.
type TenantStats struct {
	ActiveJobs            int64            `json:"active_jobs"`
	TotalApplications     int64            `json:"total_applications"`
	ApplicationsThisMonth int64            `json:"applications_this_month"`
	ByStage               map[string]int64 `json:"by_stage"`
}

func (s *DashboardService) TenantStats(scope tenant.Scope) (*TenantStats, error) {
	stats := &TenantStats{ByStage: map[string]int64{}}

	err := scope.Scoped(s.DB.Model(&models.Job{})).
		Where("status = ?", models.JobStatusPublished).
		Count(&stats.ActiveJobs).Error
	if err != nil {
		return nil, err
	}
	err = scope.Scoped(s.DB.Model(&models.Application{})).Count(&stats.TotalApplications).Error
	if err != nil {
		return nil, err
	}

	monthStart := time.Now().AddDate(0, 0, -30)
	err = scope.Scoped(s.DB.Model(&models.Application{})).
		Where("created_at >= ?", monthStart).
		Count(&stats.ApplicationsThisMonth).Error
	if err != nil {
		return nil, err
	}

	type stageCount struct {
		Stage string
		Count int64
	}
	var rows []stageCount
	err = scope.Scoped(s.DB.Model(&models.Application{})).
		Select("stage, count(*) as count").
		Group("stage").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByStage[row.Stage] = row.Count
	}
	return stats, nil
}

// RecentApplications feeds the dashboard list; a failure degrades to empty
// rather than failing the page.
func (s *DashboardService) RecentApplications(scope tenant.Scope, limit int) []models.Application {
	var apps []models.Application
	err := scope.Scoped(s.DB).
		Preload("Candidate").
		Preload("Job").
		Order("created_at DESC").
		Limit(limit).
		Find(&apps).Error
	if err != nil {
		s.Log.Warn("recent applications fetch failed", zap.Error(err))
		return []models.Application{}
	}
	return apps
}

// ActivityFeed is non-critical: errors degrade to an empty feed.
func (s *DashboardService) ActivityFeed(scope tenant.Scope, limit int) []models.ActivityLog {
	var entries []models.ActivityLog
	err := scope.Scoped(s.DB).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		s.Log.Warn("activity feed fetch failed", zap.Error(err))
		return []models.ActivityLog{}
	}
	return entries
}

// AdminStats is the operator-panel overview across all tenants.
type AdminStats struct {
	TotalCompanies      int64  `json:"total_companies"`
	TotalUsers          int64  `json:"total_users"`
	ActiveSubscriptions int64  `json:"active_subscriptions"`
	SubscriptionRate    string `json:"subscription_rate"`
}

func (s *DashboardService) AdminStats() (*AdminStats, error) {
	stats := &AdminStats{}
	if err := s.DB.Model(&models.Company{}).Count(&stats.TotalCompanies).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	err := s.DB.Model(&models.Company{}).
		Where("subscription_status = ?", "active").
		Count(&stats.ActiveSubscriptions).Error
	if err != nil {
		return nil, err
	}
	stats.SubscriptionRate = SubscriptionRate(stats.ActiveSubscriptions, stats.TotalCompanies)
	return stats, nil
}

// SubscriptionRate is round(active/total*100) as a percent string, 0% when
// there are no companies.
func SubscriptionRate(active, total int64) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%d%%", int(math.Round(float64(active)/float64(total)*100)))
}

// RecentCompanies lists the newest tenants for the operator panel; failures
// degrade to empty.
func (s *DashboardService) RecentCompanies(limit int) []models.Company {
	var companies []models.Company
	err := s.DB.Order("created_at DESC").Limit(limit).Find(&companies).Error
	if err != nil {
		s.Log.Warn("recent companies fetch failed", zap.Error(err))
		return []models.Company{}
	}
	return companies
}

// RecentActivity is the cross-tenant feed for the operator panel.
func (s *DashboardService) RecentActivity(limit int) []models.ActivityLog {
	var entries []models.ActivityLog
	err := s.DB.Preload("Company").
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		s.Log.Warn("recent activity fetch failed", zap.Error(err))
		return []models.ActivityLog{}
	}
	return entries
}
