package dtos

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type OnboardingRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Website     string `json:"website"`
	UserName    string `json:"user_name"`
}

type CompanySettingsRequest struct {
	Name     string                 `json:"name"`
	Website  string                 `json:"website"`
	Settings map[string]interface{} `json:"settings"`
}

type JobRequest struct {
	Title        map[string]interface{} `json:"title" binding:"required"`
	Description  map[string]interface{} `json:"description"`
	Requirements map[string]interface{} `json:"requirements"`
	Benefits     map[string]interface{} `json:"benefits"`

	// Optional fields
	Location       string `json:"location"`
	RemoteType     string `json:"remote_type"`
	EmploymentType string `json:"employment_type"`
	Department     string `json:"department"`
	SalaryMin      int    `json:"salary_min"`
	SalaryMax      int    `json:"salary_max"`
	SalaryCurrency string `json:"salary_currency"`
}

type JobStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=draft published paused closed"`
}

type MoveRequest struct {
	FromStage string `json:"from_stage"`
	ToStage   string `json:"to_stage" binding:"required"`
	ToIndex   int    `json:"to_index"`
}

type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
	Role  string `json:"role" binding:"required,oneof=admin manager member"`
}

type AcceptInviteRequest struct {
	Token    string `json:"token" binding:"required"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required,min=8"`
}

type CheckoutRequest struct {
	CompanyID string `json:"companyId" binding:"required"`
	PlanID    string `json:"planId" binding:"required"`
	Interval  string `json:"interval"`
}

type PortalRequest struct {
	CompanyID string `json:"companyId" binding:"required"`
}

type TalentPoolRequest struct {
	CandidateID string `json:"candidate_id" binding:"required"`
}

// EmailEventRequest is the internal email-dispatch webhook payload.
type EmailEventRequest struct {
	Type string                 `json:"type" binding:"required"`
	Data map[string]interface{} `json:"data" binding:"required"`
}
