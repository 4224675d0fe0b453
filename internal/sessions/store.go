package sessions

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/miniats/miniats/internal/models"
	"gorm.io/gorm"
)

const (
	// CookieName is the session cookie.
	CookieName = "ats_session"

	sessionTTL = 30 * 24 * time.Hour
)

var ErrNoSession = errors.New("no valid session")

type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Create issues a new session token for the user.
func (s *Store) Create(userID string) (string, error) {
	session := models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(sessionTTL),
	}
	if err := s.DB.Create(&session).Error; err != nil {
		return "", err
	}
	return session.Token, nil
}

// Get resolves a token to its user. Expired or unknown tokens return
// ErrNoSession.
func (s *Store) Get(token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	var session models.Session
	err := s.DB.Preload("User").Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if time.Now().After(session.ExpiresAt) {
		s.DB.Delete(&session)
		return nil, ErrNoSession
	}
	return &session.User, nil
}

// Revoke removes the session behind the token. Unknown tokens are a no-op.
func (s *Store) Revoke(token string) error {
	return s.DB.Where("token = ?", token).Delete(&models.Session{}).Error
}
