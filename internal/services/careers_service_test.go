package services

import (
	"testing"

	"github.com/miniats/miniats/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func seedCareersPage(t *testing.T, db *gorm.DB) (*models.Company, *models.Job) {
	t.Helper()
	company := models.Company{Name: "Acme", Slug: "acme", PlanID: "free"}
	require.NoError(t, db.Create(&company).Error)
	job := models.Job{
		CompanyID: company.ID,
		Title:     datatypes.JSONMap{"en": "Backend Engineer"},
		Status:    models.JobStatusPublished,
	}
	require.NoError(t, db.Create(&job).Error)
	return &company, &job
}

func TestCompanyBySlugShowsOnlyPublishedJobs(t *testing.T) {
	db := newTestDB(t)
	svc := NewCareersService(db)
	company, published := seedCareersPage(t, db)

	draft := models.Job{
		CompanyID: company.ID,
		Title:     datatypes.JSONMap{"en": "Unannounced Role"},
		Status:    models.JobStatusDraft,
	}
	require.NoError(t, db.Create(&draft).Error)

	got, jobs, err := svc.CompanyBySlug("acme")
	require.NoError(t, err)
	assert.Equal(t, company.ID, got.ID)
	require.Len(t, jobs, 1)
	assert.Equal(t, published.ID, jobs[0].ID)

	_, _, err = svc.CompanyBySlug("nobody")
	assert.ErrorIs(t, err, ErrCompanyNotFound)

	_, _, err = svc.PublishedJob("acme", draft.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestApplyCreatesCandidateApplicationAndAudit(t *testing.T) {
	db := newTestDB(t)
	svc := NewCareersService(db)
	company, job := seedCareersPage(t, db)

	app, err := svc.Apply(company, job, ApplyInput{
		Name:      "Jo Doe",
		Email:     "jo@example.com",
		Phone:     "+351 900 000 000",
		ResumeURL: "https://files.test/resumes/jo.pdf",
		Message:   "Excited to apply.",
	})
	require.NoError(t, err)
	assert.Equal(t, "new", app.Stage)
	assert.Equal(t, company.ID, app.CompanyID)
	assert.NotEmpty(t, app.Notes)

	var candidate models.Candidate
	require.NoError(t, db.First(&candidate, "email = ?", "jo@example.com").Error)
	assert.Equal(t, "Jo Doe", candidate.Name)

	var audit models.ActivityLog
	require.NoError(t, db.First(&audit, "company_id = ? AND action = ?", company.ID, "application_received").Error)
	assert.Equal(t, app.ID, audit.EntityID)
	assert.Equal(t, "Jo Doe", audit.Metadata["candidate_name"])
}

func TestApplyUpsertsCandidateByEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewCareersService(db)
	company, job := seedCareersPage(t, db)

	second := models.Job{
		CompanyID: company.ID,
		Title:     datatypes.JSONMap{"en": "Platform Engineer"},
		Status:    models.JobStatusPublished,
	}
	require.NoError(t, db.Create(&second).Error)

	_, err := svc.Apply(company, job, ApplyInput{
		Name: "Jo", Email: "jo@example.com", ResumeURL: "https://files.test/v1.pdf",
	})
	require.NoError(t, err)
	_, err = svc.Apply(company, &second, ApplyInput{
		Name: "Jo Doe", Email: "jo@example.com", ResumeURL: "https://files.test/v2.pdf",
	})
	require.NoError(t, err)

	var candidates int64
	db.Model(&models.Candidate{}).Where("email = ?", "jo@example.com").Count(&candidates)
	assert.EqualValues(t, 1, candidates)

	var candidate models.Candidate
	require.NoError(t, db.First(&candidate, "email = ?", "jo@example.com").Error)
	assert.Equal(t, "Jo Doe", candidate.Name)
	assert.Equal(t, "https://files.test/v2.pdf", candidate.ResumeURL)

	var applications int64
	db.Model(&models.Application{}).Where("candidate_id = ?", candidate.ID).Count(&applications)
	assert.EqualValues(t, 2, applications)
}
