package services

import (
	"errors"

	"github.com/miniats/miniats/internal/models"
	"github.com/miniats/miniats/internal/tenant"
	"gorm.io/gorm"
)

var ErrCandidateNotFound = errors.New("candidate not found")

// CandidateService exposes candidates through the lens of one company:
// candidates are global records, but a tenant only sees those who applied to
// it or were bookmarked into its talent pool.
type CandidateService struct {
	DB *gorm.DB
}

func NewCandidateService(db *gorm.DB) *CandidateService {
	return &CandidateService{DB: db}
}

// List returns the candidates with at least one application at the company.
func (s *CandidateService) List(scope tenant.Scope) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := s.DB.
		Joins("JOIN applications ON applications.candidate_id = candidates.id").
		Where("applications.company_id = ?", scope.CompanyID).
		Distinct("candidates.*").
		Find(&candidates).Error
	return candidates, err
}

// Get returns one candidate plus their application history at this company.
// Candidates with no relationship to the tenant are invisible.
func (s *CandidateService) Get(scope tenant.Scope, candidateID string) (*models.Candidate, []models.Application, error) {
	var apps []models.Application
	err := scope.Scoped(s.DB).
		Preload("Job").
		Where("candidate_id = ?", candidateID).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, nil, err
	}

	var pooled int64
	scope.Scoped(s.DB.Model(&models.TalentPoolEntry{})).
		Where("candidate_id = ?", candidateID).
		Count(&pooled)
	if len(apps) == 0 && pooled == 0 {
		return nil, nil, ErrCandidateNotFound
	}

	var candidate models.Candidate
	err = s.DB.Where("id = ?", candidateID).First(&candidate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrCandidateNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return &candidate, apps, nil
}
