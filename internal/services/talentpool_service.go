package services

import (
	"errors"

	"github.com/miniats/miniats/internal/models"
	"github.com/miniats/miniats/internal/tenant"
	"gorm.io/gorm"
)

var ErrAlreadyPooled = errors.New("candidate is already in the talent pool")

type TalentPoolService struct {
	DB *gorm.DB
}

func NewTalentPoolService(db *gorm.DB) *TalentPoolService {
	return &TalentPoolService{DB: db}
}

// Add bookmarks a candidate for the company, independent of any application.
func (s *TalentPoolService) Add(scope tenant.Scope, actor *models.User, candidateID string) (*models.TalentPoolEntry, error) {
	var candidate models.Candidate
	err := s.DB.Where("id = ?", candidateID).First(&candidate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCandidateNotFound
	}
	if err != nil {
		return nil, err
	}

	var count int64
	scope.Scoped(s.DB.Model(&models.TalentPoolEntry{})).
		Where("candidate_id = ?", candidateID).
		Count(&count)
	if count > 0 {
		return nil, ErrAlreadyPooled
	}

	entry := models.TalentPoolEntry{
		CompanyID:   scope.CompanyID,
		CandidateID: candidateID,
	}
	if actor != nil {
		entry.AddedBy = actor.ID
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		return nil, err
	}
	entry.Candidate = candidate
	return &entry, nil
}

func (s *TalentPoolService) Remove(scope tenant.Scope, candidateID string) error {
	result := scope.Scoped(s.DB).
		Where("candidate_id = ?", candidateID).
		Delete(&models.TalentPoolEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

func (s *TalentPoolService) List(scope tenant.Scope) ([]models.TalentPoolEntry, error) {
	var entries []models.TalentPoolEntry
	err := scope.Scoped(s.DB).
		Preload("Candidate").
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}
