package services

import (
	"testing"

	"github.com/miniats/miniats/internal/models"
	"github.com/miniats/miniats/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func TestTenantStatsCountsOnlyOwnRows(t *testing.T) {
	db := newTestDB(t)
	svc := NewDashboardService(db, zap.NewNop())

	for _, companyID := range []string{"co-1", "co-2"} {
		job := models.Job{
			CompanyID: companyID,
			Title:     datatypes.JSONMap{"en": "Engineer"},
			Status:    models.JobStatusPublished,
		}
		require.NoError(t, db.Create(&job).Error)
		candidate := models.Candidate{Email: companyID + "@example.com", Name: "C"}
		require.NoError(t, db.Create(&candidate).Error)
		for _, stage := range []string{"new", "new", "interview"} {
			app := models.Application{
				CompanyID:   companyID,
				JobID:       job.ID,
				CandidateID: candidate.ID,
				Stage:       stage,
			}
			require.NoError(t, db.Create(&app).Error)
		}
	}

	stats, err := svc.TenantStats(tenant.Scope{CompanyID: "co-1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.ActiveJobs)
	assert.EqualValues(t, 3, stats.TotalApplications)
	assert.EqualValues(t, 3, stats.ApplicationsThisMonth)
	assert.EqualValues(t, 2, stats.ByStage["new"])
	assert.EqualValues(t, 1, stats.ByStage["interview"])
}

func TestAdminStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewDashboardService(db, zap.NewNop())

	for i, status := range []string{"active", "active", "canceled", ""} {
		company := models.Company{
			Name:               "Co",
			Slug:               "co-" + string(rune('a'+i)),
			PlanID:             "free",
			SubscriptionStatus: status,
		}
		require.NoError(t, db.Create(&company).Error)
	}
	createUser(t, db, "one@example.com", "")
	createUser(t, db, "two@example.com", "")

	stats, err := svc.AdminStats()
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalCompanies)
	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.EqualValues(t, 2, stats.ActiveSubscriptions)
	assert.Equal(t, "50%", stats.SubscriptionRate)
}

func TestSubscriptionRate(t *testing.T) {
	tests := []struct {
		active, total int64
		want          string
	}{
		{0, 0, "0%"},
		{0, 10, "0%"},
		{1, 3, "33%"},
		{2, 3, "67%"},
		{10, 10, "100%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SubscriptionRate(tt.active, tt.total))
	}
}
