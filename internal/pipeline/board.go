// Package pipeline groups a job's applications into hiring stages and moves
// them between stages with an audit trail.
package pipeline

import (
	"errors"
	"time"

	"github.com/miniats/miniats/internal/models"
	"github.com/miniats/miniats/internal/tenant"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Stages in pipeline order. rejected is reachable from any stage and absorbs.
var Stages = []string{
	StageNew,
	StagePhoneScreen,
	StageInterview,
	StageTechnical,
	StageOffer,
	StageHired,
	StageRejected,
}

const (
	StageNew         = "new"
	StagePhoneScreen = "phone-screen"
	StageInterview   = "interview"
	StageTechnical   = "technical"
	StageOffer       = "offer"
	StageHired       = "hired"
	StageRejected    = "rejected"
)

var (
	ErrUnknownStage  = errors.New("unknown pipeline stage")
	ErrNotFound      = errors.New("application not found")
	ErrStageConflict = errors.New("application is not in the given source stage")
)

// ValidStage reports whether name is a known stage.
func ValidStage(name string) bool {
	for _, s := range Stages {
		if s == name {
			return true
		}
	}
	return false
}

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Board is the stage-keyed view of a job's applications. Every stage is
// present even when empty; applications with an unrecognized stage value land
// in the first bucket.
type Board struct {
	JobID   string                          `json:"job_id"`
	Columns map[string][]models.Application `json:"columns"`
}

// Load rebuilds the board from a full fetch of the job's applications,
// newest activity first.
func (s *Service) Load(scope tenant.Scope, jobID string) (*Board, error) {
	var apps []models.Application
	err := scope.Scoped(s.DB).
		Preload("Candidate").
		Where("job_id = ?", jobID).
		Order("updated_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}

	board := &Board{JobID: jobID, Columns: make(map[string][]models.Application, len(Stages))}
	for _, stage := range Stages {
		board.Columns[stage] = []models.Application{}
	}
	for _, app := range apps {
		stage := app.Stage
		if !ValidStage(stage) {
			stage = StageNew
		}
		board.Columns[stage] = append(board.Columns[stage], app)
	}
	return board, nil
}

// Move puts the application into toStage. Stage membership is the only thing
// persisted; toIndex orders the destination column client-side only. The
// stage update and the audit entry commit in one transaction, so a failure
// leaves neither behind.
func (s *Service) Move(scope tenant.Scope, actor *models.User, applicationID, fromStage, toStage string, toIndex int) (*models.Application, error) {
	if !ValidStage(toStage) {
		return nil, ErrUnknownStage
	}

	var app models.Application
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		err := scope.Scoped(tx).Preload("Candidate").Where("id = ?", applicationID).First(&app).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if fromStage != "" && app.Stage != fromStage {
			return ErrStageConflict
		}
		if app.Stage == toStage {
			// Reorder within a column is a no-op server side.
			return nil
		}
		previous := app.Stage

		now := time.Now()
		if err := tx.Model(&app).Updates(map[string]interface{}{
			"stage":      toStage,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}

		entry := models.ActivityLog{
			CompanyID:  scope.CompanyID,
			EntityType: "application",
			EntityID:   app.ID,
			Action:     "application_stage_changed",
			Metadata: datatypes.JSONMap{
				"from_stage":     previous,
				"to_stage":       toStage,
				"candidate_name": app.Candidate.Name,
			},
		}
		if actor != nil {
			entry.UserID = actor.ID
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		app.Stage = toStage
		app.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}
