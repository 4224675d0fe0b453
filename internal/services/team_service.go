package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/miniats/miniats/internal/dtos"
	"github.com/miniats/miniats/internal/models"
	"github.com/miniats/miniats/internal/tenant"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrAlreadyMember  = errors.New("email already belongs to the team")
	ErrInviteNotFound = errors.New("invite not found or already accepted")
	ErrMemberNotFound = errors.New("team member not found")
)

type TeamService struct {
	DB *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{DB: db}
}

func (s *TeamService) List(scope tenant.Scope) ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := scope.Scoped(s.DB).Order("invited_at ASC").Find(&members).Error
	return members, err
}

// Invite creates a pending membership with a fresh token and records the
// activity. The caller dispatches the invite email.
func (s *TeamService) Invite(scope tenant.Scope, inviter *models.User, req *dtos.InviteRequest) (*models.TeamMember, error) {
	var count int64
	scope.Scoped(s.DB.Model(&models.TeamMember{})).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		return nil, ErrAlreadyMember
	}

	member := models.TeamMember{
		CompanyID:   scope.CompanyID,
		Email:       req.Email,
		Name:        req.Name,
		Role:        req.Role,
		Status:      models.MemberStatusPending,
		InviteToken: uuid.NewString(),
		InvitedAt:   time.Now(),
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return tx.Create(&models.ActivityLog{
			CompanyID:  scope.CompanyID,
			UserID:     inviter.ID,
			EntityType: "team_member",
			EntityID:   member.ID,
			Action:     "team_member_invited",
			Metadata:   datatypes.JSONMap{"email": req.Email, "role": req.Role},
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Accept turns a pending invite into an active membership, creating the user
// account and returning it so the caller can open a session.
func (s *TeamService) Accept(req *dtos.AcceptInviteRequest) (*models.User, error) {
	var member models.TeamMember
	err := s.DB.Where("invite_token = ? AND status = ?", req.Token, models.MemberStatusPending).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = member.Name
	}
	user := models.User{
		CompanyID:    member.CompanyID,
		Email:        member.Email,
		Name:         name,
		Role:         member.Role,
		PasswordHash: string(hash),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&member).Updates(map[string]interface{}{
			"user_id":      user.ID,
			"status":       models.MemberStatusActive,
			"joined_at":    now,
			"invite_token": "",
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Resend rotates the invite token of a pending member. The caller re-sends
// the email with the new token.
func (s *TeamService) Resend(scope tenant.Scope, memberID string) (*models.TeamMember, error) {
	var member models.TeamMember
	err := scope.Scoped(s.DB).
		Where("id = ? AND status = ?", memberID, models.MemberStatusPending).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}

	member.InviteToken = uuid.NewString()
	member.InvitedAt = time.Now()
	err = s.DB.Model(&member).Updates(map[string]interface{}{
		"invite_token": member.InviteToken,
		"invited_at":   member.InvitedAt,
	}).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Revoke removes a membership. Pending invites simply disappear; active
// members keep their user account but lose the company association.
func (s *TeamService) Revoke(scope tenant.Scope, memberID string) error {
	var member models.TeamMember
	err := scope.Scoped(s.DB).Where("id = ?", memberID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMemberNotFound
	}
	if err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if member.UserID != "" {
			err := tx.Model(&models.User{}).
				Where("id = ?", member.UserID).
				Updates(map[string]interface{}{"company_id": "", "role": models.RoleMember}).Error
			if err != nil {
				return err
			}
		}
		return tx.Delete(&member).Error
	})
}
