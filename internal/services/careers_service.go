package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/miniats/miniats/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrCompanyNotFound = errors.New("company not found")

// CareersService backs the public career pages: company micro-site, job
// detail and the application form.
type CareersService struct {
	DB *gorm.DB
}

func NewCareersService(db *gorm.DB) *CareersService {
	return &CareersService{DB: db}
}

// CompanyBySlug resolves a career page. Only published jobs are visible.
func (s *CareersService) CompanyBySlug(slug string) (*models.Company, []models.Job, error) {
	var company models.Company
	err := s.DB.Where("slug = ?", slug).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	var jobs []models.Job
	err = s.DB.Where("company_id = ? AND status = ?", company.ID, models.JobStatusPublished).
		Order("published_at DESC").
		Find(&jobs).Error
	if err != nil {
		return nil, nil, err
	}
	return &company, jobs, nil
}

// PublishedJob fetches one job of a career page; drafts and closed jobs are
// invisible to the public.
func (s *CareersService) PublishedJob(slug, jobID string) (*models.Company, *models.Job, error) {
	var company models.Company
	err := s.DB.Where("slug = ?", slug).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	var job models.Job
	err = s.DB.Where("id = ? AND company_id = ? AND status = ?", jobID, company.ID, models.JobStatusPublished).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrJobNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return &company, &job, nil
}

// ApplyInput is a validated application submission. ResumeURL points at the
// already-uploaded file; the handler rejects submissions without one before
// any row is written.
type ApplyInput struct {
	Name         string
	Email        string
	Phone        string
	LinkedinURL  string
	PortfolioURL string
	Location     string
	Message      string
	ResumeURL    string
}

// Apply upserts the candidate by email and creates the application, in one
// transaction. Resubmitting under a known email updates the candidate's
// contact details and resume instead of duplicating the record.
func (s *CareersService) Apply(company *models.Company, job *models.Job, input ApplyInput) (*models.Application, error) {
	var application *models.Application

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var candidate models.Candidate
		err := tx.Where("email = ?", input.Email).First(&candidate).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			candidate = models.Candidate{
				Email:        input.Email,
				Name:         input.Name,
				Phone:        input.Phone,
				LinkedinURL:  input.LinkedinURL,
				PortfolioURL: input.PortfolioURL,
				Location:     input.Location,
				ResumeURL:    input.ResumeURL,
			}
			if err := tx.Create(&candidate).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			err := tx.Model(&candidate).Updates(map[string]interface{}{
				"name":          input.Name,
				"phone":         input.Phone,
				"linkedin_url":  input.LinkedinURL,
				"portfolio_url": input.PortfolioURL,
				"location":      input.Location,
				"resume_url":    input.ResumeURL,
			}).Error
			if err != nil {
				return err
			}
		}

		app := models.Application{
			CompanyID:   company.ID,
			JobID:       job.ID,
			CandidateID: candidate.ID,
			Stage:       "new",
		}
		if input.Message != "" {
			notes, err := json.Marshal([]map[string]interface{}{{
				"text":       input.Message,
				"type":       "candidate_message",
				"created_at": time.Now().Format(time.RFC3339),
			}})
			if err != nil {
				return err
			}
			app.Notes = notes
		}
		if err := tx.Create(&app).Error; err != nil {
			return err
		}

		entry := models.ActivityLog{
			CompanyID:  company.ID,
			EntityType: "application",
			EntityID:   app.ID,
			Action:     "application_received",
			Metadata: datatypes.JSONMap{
				"job_id":         job.ID,
				"candidate_name": input.Name,
			},
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		app.Candidate = candidate
		application = &app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return application, nil
}
