package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BaseModel is shared by every persisted entity. IDs are UUID strings so they
// are safe to expose in public career-page URLs.
type BaseModel struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Company is the tenant. Every other entity except Candidate and
// Administrator is scoped to exactly one company.
type Company struct {
	BaseModel

	Name    string `gorm:"not null" json:"name"`
	Slug    string `gorm:"uniqueIndex;not null" json:"slug"`
	LogoURL string `json:"logo_url,omitempty"`
	Website string `json:"website,omitempty"`

	PlanID             string     `gorm:"default:'free'" json:"plan_id"`
	SubscriptionStatus string     `json:"subscription_status,omitempty"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`

	// Career-page copy and feature toggles.
	Settings datatypes.JSONMap `json:"settings,omitempty"`

	StripeCustomerID     string `gorm:"index" json:"-"`
	StripeSubscriptionID string `gorm:"index" json:"-"`

	Users []User `json:"users,omitempty"`
	Jobs  []Job  `json:"jobs,omitempty"`
}

type User struct {
	BaseModel

	CompanyID string `gorm:"index" json:"company_id,omitempty"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Name      string `json:"name,omitempty"`
	Role      string `gorm:"default:'member'" json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`

	PasswordHash string `json:"-"`
}

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)

// Session backs the cookie-token session gate.
type Session struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	UserID    string    `gorm:"index;not null" json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`

	User User `json:"-"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Administrator marks operator-panel access. Separate from User roles on
// purpose: a tenant admin is not a platform administrator.
type Administrator struct {
	BaseModel

	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Name  string `json:"name,omitempty"`
}

// Job carries localized copy keyed by locale ("en", "pt", ...).
type Job struct {
	BaseModel

	CompanyID string  `gorm:"index;not null" json:"company_id"`
	Company   Company `json:"company,omitempty"`

	Title        datatypes.JSONMap `gorm:"not null" json:"title"`
	Description  datatypes.JSONMap `json:"description"`
	Requirements datatypes.JSONMap `json:"requirements,omitempty"`
	Benefits     datatypes.JSONMap `json:"benefits,omitempty"`

	Location       string `json:"location,omitempty"`
	RemoteType     string `json:"remote_type,omitempty"`
	EmploymentType string `json:"employment_type,omitempty"`
	Department     string `json:"department,omitempty"`

	SalaryMin      int    `json:"salary_min,omitempty"`
	SalaryMax      int    `json:"salary_max,omitempty"`
	SalaryCurrency string `gorm:"default:'USD'" json:"salary_currency"`

	Status      string     `gorm:"default:'draft'" json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

const (
	JobStatusDraft     = "draft"
	JobStatusPublished = "published"
	JobStatusPaused    = "paused"
	JobStatusClosed    = "closed"
)

// Candidate is global, deduped by email across companies. Resubmitting under
// the same email updates the existing record.
type Candidate struct {
	BaseModel

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Name         string `gorm:"not null" json:"name"`
	Phone        string `json:"phone,omitempty"`
	LinkedinURL  string `json:"linkedin_url,omitempty"`
	PortfolioURL string `json:"portfolio_url,omitempty"`
	Location     string `json:"location,omitempty"`
	ResumeURL    string `json:"resume_url,omitempty"`
}

// Application links a Candidate to a Job within a Company and carries the
// pipeline stage.
type Application struct {
	BaseModel

	CompanyID   string `gorm:"index;not null" json:"company_id"`
	JobID       string `gorm:"index;not null" json:"job_id"`
	CandidateID string `gorm:"index;not null" json:"candidate_id"`

	Job       Job       `json:"job,omitempty"`
	Candidate Candidate `json:"candidate,omitempty"`

	Stage          string         `gorm:"default:'new'" json:"stage"`
	Rating         int            `json:"rating,omitempty"`
	Notes          datatypes.JSON `json:"notes,omitempty"`
	RejectedReason string         `json:"rejected_reason,omitempty"`
}

// TalentPoolEntry bookmarks a candidate for a company independent of any
// application.
type TalentPoolEntry struct {
	BaseModel

	CompanyID   string `gorm:"index:idx_pool_company_candidate,unique;not null" json:"company_id"`
	CandidateID string `gorm:"index:idx_pool_company_candidate,unique;not null" json:"candidate_id"`
	AddedBy     string `json:"added_by,omitempty"`

	Candidate Candidate `json:"candidate,omitempty"`
}

// TeamMember is a pending or accepted association between an email and a
// company, carrying the invite token while pending.
type TeamMember struct {
	BaseModel

	CompanyID string `gorm:"index;not null" json:"company_id"`
	UserID    string `json:"user_id,omitempty"`
	Email     string `gorm:"index;not null" json:"email"`
	Name      string `json:"name,omitempty"`
	Role      string `gorm:"default:'member'" json:"role"`

	Status      string     `gorm:"default:'pending'" json:"status"`
	InviteToken string     `gorm:"index" json:"-"`
	InvitedAt   time.Time  `json:"invited_at"`
	JoinedAt    *time.Time `json:"joined_at,omitempty"`
}

const (
	MemberStatusPending = "pending"
	MemberStatusActive  = "active"
)

type Notification struct {
	BaseModel

	CompanyID string `gorm:"index;not null" json:"company_id"`
	UserID    string `gorm:"index;not null" json:"user_id"`

	Type    string `gorm:"not null" json:"type"`
	Title   string `gorm:"not null" json:"title"`
	Message string `json:"message,omitempty"`
	Link    string `json:"link,omitempty"`
	Read    bool   `gorm:"default:false" json:"read"`
}

// ActivityLog is the append-only audit trail.
type ActivityLog struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CompanyID  string            `gorm:"index;not null" json:"company_id"`
	UserID     string            `json:"user_id,omitempty"`
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Action     string            `gorm:"not null" json:"action"`
	Metadata   datatypes.JSONMap `json:"metadata,omitempty"`

	Company Company `json:"company,omitempty"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// ProcessedWebhookEvent dedups payment-provider webhook deliveries by the
// provider's event id, so re-delivering an event is a no-op.
type ProcessedWebhookEvent struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
}
