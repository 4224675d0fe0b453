package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/miniats/miniats/internal/database"
	"github.com/miniats/miniats/internal/models"
	"github.com/miniats/miniats/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedApplication(t *testing.T, db *gorm.DB, companyID, stage string) *models.Application {
	t.Helper()
	candidate := models.Candidate{Email: stage + "-" + companyID + "@example.com", Name: "Jane Doe"}
	require.NoError(t, db.Create(&candidate).Error)
	job := models.Job{CompanyID: companyID, Title: datatypes.JSONMap{"en": "Backend Engineer"}}
	require.NoError(t, db.Create(&job).Error)
	app := models.Application{
		CompanyID:   companyID,
		JobID:       job.ID,
		CandidateID: candidate.ID,
		Stage:       stage,
	}
	require.NoError(t, db.Create(&app).Error)
	app.Candidate = candidate
	return &app
}

func TestLoadPartitionsByStage(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	scope := tenant.Scope{CompanyID: "co-1"}

	app := seedApplication(t, db, "co-1", StageInterview)

	// Same job, unknown stage value: must fall back to the first bucket.
	stray := models.Application{
		CompanyID:   "co-1",
		JobID:       app.JobID,
		CandidateID: app.CandidateID,
		Stage:       "limbo",
	}
	require.NoError(t, db.Create(&stray).Error)

	board, err := svc.Load(scope, app.JobID)
	require.NoError(t, err)

	assert.Len(t, board.Columns, len(Stages))
	assert.Len(t, board.Columns[StageInterview], 1)
	assert.Len(t, board.Columns[StageNew], 1)
	assert.Equal(t, stray.ID, board.Columns[StageNew][0].ID)
	assert.Empty(t, board.Columns[StageOffer])
}

func TestLoadIsTenantScoped(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	app := seedApplication(t, db, "co-1", StageNew)
	board, err := svc.Load(tenant.Scope{CompanyID: "co-2"}, app.JobID)
	require.NoError(t, err)
	for _, stage := range Stages {
		assert.Empty(t, board.Columns[stage])
	}
}

func TestMoveWritesStageAndAudit(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	scope := tenant.Scope{CompanyID: "co-1"}
	actor := &models.User{BaseModel: models.BaseModel{ID: "user-1"}}

	app := seedApplication(t, db, "co-1", StageNew)

	moved, err := svc.Move(scope, actor, app.ID, StageNew, StageInterview, 0)
	require.NoError(t, err)
	assert.Equal(t, StageInterview, moved.Stage)

	var stored models.Application
	require.NoError(t, db.First(&stored, "id = ?", app.ID).Error)
	assert.Equal(t, StageInterview, stored.Stage)

	var entry models.ActivityLog
	require.NoError(t, db.First(&entry, "entity_id = ?", app.ID).Error)
	assert.Equal(t, "application_stage_changed", entry.Action)
	assert.Equal(t, "user-1", entry.UserID)
	assert.Equal(t, StageNew, entry.Metadata["from_stage"])
	assert.Equal(t, StageInterview, entry.Metadata["to_stage"])
}

func TestMoveToRejectedAndBackKeepsAssociation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	scope := tenant.Scope{CompanyID: "co-1"}

	app := seedApplication(t, db, "co-1", StageTechnical)

	_, err := svc.Move(scope, nil, app.ID, StageTechnical, StageRejected, 0)
	require.NoError(t, err)
	_, err = svc.Move(scope, nil, app.ID, StageRejected, StageTechnical, 0)
	require.NoError(t, err)

	var stored models.Application
	require.NoError(t, db.First(&stored, "id = ?", app.ID).Error)
	assert.Equal(t, app.CandidateID, stored.CandidateID)
	assert.Equal(t, app.JobID, stored.JobID)
	assert.Equal(t, StageTechnical, stored.Stage)
}

func TestMoveEdgeCases(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	scope := tenant.Scope{CompanyID: "co-1"}
	app := seedApplication(t, db, "co-1", StageNew)

	t.Run("unknown destination stage", func(t *testing.T) {
		_, err := svc.Move(scope, nil, app.ID, StageNew, "limbo", 0)
		assert.ErrorIs(t, err, ErrUnknownStage)
	})

	t.Run("missing application", func(t *testing.T) {
		_, err := svc.Move(scope, nil, "nope", StageNew, StageOffer, 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("stale source stage", func(t *testing.T) {
		_, err := svc.Move(scope, nil, app.ID, StageOffer, StageHired, 0)
		assert.ErrorIs(t, err, ErrStageConflict)
	})

	t.Run("same stage is a no-op", func(t *testing.T) {
		moved, err := svc.Move(scope, nil, app.ID, StageNew, StageNew, 3)
		require.NoError(t, err)
		assert.Equal(t, StageNew, moved.Stage)

		var count int64
		db.Model(&models.ActivityLog{}).Where("entity_id = ?", app.ID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("other tenant cannot move", func(t *testing.T) {
		_, err := svc.Move(tenant.Scope{CompanyID: "co-2"}, nil, app.ID, StageNew, StageOffer, 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
