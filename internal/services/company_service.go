package services

import (
	"errors"
	"regexp"
	"time"

	"github.com/miniats/miniats/internal/dtos"
	"github.com/miniats/miniats/internal/models"
	"github.com/miniats/miniats/internal/tenant"
	"gorm.io/gorm"
)

var (
	ErrSlugTaken   = errors.New("slug is already in use")
	ErrInvalidSlug = errors.New("slug must be lowercase letters, digits and hyphens")
	ErrHasCompany  = errors.New("user already belongs to a company")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

const trialDays = 14

type CompanyService struct {
	DB *gorm.DB
}

func NewCompanyService(db *gorm.DB) *CompanyService {
	return &CompanyService{DB: db}
}

// Onboard creates the company and promotes the signing-up user to its admin,
// in one transaction. The slug is the career-page address and must be unique.
func (s *CompanyService) Onboard(user *models.User, req *dtos.OnboardingRequest) (*models.Company, error) {
	if user.CompanyID != "" {
		return nil, ErrHasCompany
	}
	if !slugPattern.MatchString(req.Slug) {
		return nil, ErrInvalidSlug
	}

	var count int64
	s.DB.Model(&models.Company{}).Where("slug = ?", req.Slug).Count(&count)
	if count > 0 {
		return nil, ErrSlugTaken
	}

	trialEnd := time.Now().AddDate(0, 0, trialDays)
	company := models.Company{
		Name:        req.CompanyName,
		Slug:        req.Slug,
		Website:     req.Website,
		PlanID:      "free",
		TrialEndsAt: &trialEnd,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"company_id": company.ID,
			"role":       models.RoleAdmin,
		}
		if req.UserName != "" {
			updates["name"] = req.UserName
		}
		if err := tx.Model(user).Updates(updates).Error; err != nil {
			return err
		}
		member := models.TeamMember{
			CompanyID: company.ID,
			UserID:    user.ID,
			Email:     user.Email,
			Name:      req.UserName,
			Role:      models.RoleAdmin,
			Status:    models.MemberStatusActive,
			InvitedAt: time.Now(),
		}
		now := time.Now()
		member.JoinedAt = &now
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (s *CompanyService) Get(scope tenant.Scope) (*models.Company, error) {
	var company models.Company
	err := s.DB.Where("id = ?", scope.CompanyID).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// UpdateSettings mutates the company profile and the career-page settings
// blob. Companies are never hard-deleted.
func (s *CompanyService) UpdateSettings(scope tenant.Scope, req *dtos.CompanySettingsRequest) (*models.Company, error) {
	company, err := s.Get(scope)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Website != "" {
		updates["website"] = req.Website
	}
	if len(updates) > 0 {
		if err := s.DB.Model(company).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	if req.Settings != nil {
		merged := company.Settings
		if merged == nil {
			merged = map[string]interface{}{}
		}
		for k, v := range req.Settings {
			merged[k] = v
		}
		if err := s.DB.Model(company).Update("settings", merged).Error; err != nil {
			return nil, err
		}
		company.Settings = merged
	}
	return company, nil
}

// SetLogo persists the uploaded logo's public URL.
func (s *CompanyService) SetLogo(scope tenant.Scope, logoURL string) error {
	return s.DB.Model(&models.Company{}).
		Where("id = ?", scope.CompanyID).
		Update("logo_url", logoURL).Error
}
