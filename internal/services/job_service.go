package services

import (
	"errors"
	"time"

	"github.com/miniats/miniats/internal/dtos"
	"github.com/miniats/miniats/internal/models"
	"github.com/miniats/miniats/internal/tenant"
	"gorm.io/gorm"
)

var ErrJobNotFound = errors.New("job not found")

type JobService struct {
	DB *gorm.DB
}

func NewJobService(db *gorm.DB) *JobService {
	return &JobService{DB: db}
}

func (s *JobService) Create(scope tenant.Scope, req *dtos.JobRequest) (*models.Job, error) {
	job := &models.Job{
		CompanyID:      scope.CompanyID,
		Title:          req.Title,
		Description:    req.Description,
		Requirements:   req.Requirements,
		Benefits:       req.Benefits,
		Location:       req.Location,
		RemoteType:     req.RemoteType,
		EmploymentType: req.EmploymentType,
		Department:     req.Department,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		Status:         models.JobStatusDraft,
	}
	if req.SalaryCurrency != "" {
		job.SalaryCurrency = req.SalaryCurrency
	}
	if err := s.DB.Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// List returns the company's jobs, optionally filtered by lifecycle status.
func (s *JobService) List(scope tenant.Scope, status string) ([]models.Job, error) {
	q := scope.Scoped(s.DB).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var jobs []models.Job
	err := q.Find(&jobs).Error
	return jobs, err
}

func (s *JobService) Get(scope tenant.Scope, jobID string) (*models.Job, error) {
	var job models.Job
	err := scope.Scoped(s.DB).Where("id = ?", jobID).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *JobService) Update(scope tenant.Scope, jobID string, req *dtos.JobRequest) (*models.Job, error) {
	job, err := s.Get(scope, jobID)
	if err != nil {
		return nil, err
	}
	job.Title = req.Title
	job.Description = req.Description
	job.Requirements = req.Requirements
	job.Benefits = req.Benefits
	job.Location = req.Location
	job.RemoteType = req.RemoteType
	job.EmploymentType = req.EmploymentType
	job.Department = req.Department
	job.SalaryMin = req.SalaryMin
	job.SalaryMax = req.SalaryMax
	if req.SalaryCurrency != "" {
		job.SalaryCurrency = req.SalaryCurrency
	}
	if err := s.DB.Save(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateStatus applies a user-triggered lifecycle transition. Publishing
// stamps published_at the first time.
func (s *JobService) UpdateStatus(scope tenant.Scope, jobID, status string) (*models.Job, error) {
	job, err := s.Get(scope, jobID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"status": status}
	if status == models.JobStatusPublished && job.PublishedAt == nil {
		now := time.Now()
		updates["published_at"] = now
		job.PublishedAt = &now
	}
	if err := s.DB.Model(job).Updates(updates).Error; err != nil {
		return nil, err
	}
	job.Status = status
	return job, nil
}

func (s *JobService) Delete(scope tenant.Scope, jobID string) error {
	result := scope.Scoped(s.DB).Where("id = ?", jobID).Delete(&models.Job{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}
