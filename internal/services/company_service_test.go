package services

import (
	"path/filepath"
	"testing"

	"github.com/miniats/miniats/internal/database"
	"github.com/miniats/miniats/internal/dtos"
	"github.com/miniats/miniats/internal/models"
	"github.com/miniats/miniats/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func createUser(t *testing.T, db *gorm.DB, email, companyID string) *models.User {
	t.Helper()
	user := models.User{Email: email, CompanyID: companyID, Role: models.RoleMember}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestOnboardCreatesCompanyAndPromotesUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewCompanyService(db)
	user := createUser(t, db, "founder@acme.com", "")

	company, err := svc.Onboard(user, &dtos.OnboardingRequest{
		CompanyName: "Acme Inc",
		Slug:        "acme",
		Website:     "https://acme.com",
		UserName:    "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, "acme", company.Slug)
	assert.Equal(t, "free", company.PlanID)
	require.NotNil(t, company.TrialEndsAt)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
	assert.Equal(t, company.ID, reloaded.CompanyID)
	assert.Equal(t, models.RoleAdmin, reloaded.Role)
	assert.Equal(t, "Ada", reloaded.Name)

	var member models.TeamMember
	require.NoError(t, db.First(&member, "company_id = ? AND user_id = ?", company.ID, user.ID).Error)
	assert.Equal(t, models.MemberStatusActive, member.Status)
	assert.Equal(t, models.RoleAdmin, member.Role)
}

func TestOnboardRejectsTakenAndInvalidSlugs(t *testing.T) {
	db := newTestDB(t)
	svc := NewCompanyService(db)

	first := createUser(t, db, "a@acme.com", "")
	_, err := svc.Onboard(first, &dtos.OnboardingRequest{CompanyName: "Acme", Slug: "acme"})
	require.NoError(t, err)

	second := createUser(t, db, "b@other.com", "")
	_, err = svc.Onboard(second, &dtos.OnboardingRequest{CompanyName: "Other", Slug: "acme"})
	assert.ErrorIs(t, err, ErrSlugTaken)

	for _, slug := range []string{"Acme", "acme inc", "-acme", "acme-", "acme_inc"} {
		_, err = svc.Onboard(second, &dtos.OnboardingRequest{CompanyName: "Other", Slug: slug})
		assert.ErrorIs(t, err, ErrInvalidSlug, slug)
	}
}

func TestOnboardRejectsUserWithCompany(t *testing.T) {
	db := newTestDB(t)
	svc := NewCompanyService(db)
	user := createUser(t, db, "taken@acme.com", "existing-co")

	_, err := svc.Onboard(user, &dtos.OnboardingRequest{CompanyName: "Second", Slug: "second"})
	assert.ErrorIs(t, err, ErrHasCompany)
}

func TestUpdateSettingsMergesBlob(t *testing.T) {
	db := newTestDB(t)
	svc := NewCompanyService(db)
	user := createUser(t, db, "founder@acme.com", "")
	company, err := svc.Onboard(user, &dtos.OnboardingRequest{CompanyName: "Acme", Slug: "acme"})
	require.NoError(t, err)
	scope := tenant.Scope{CompanyID: company.ID}

	_, err = svc.UpdateSettings(scope, &dtos.CompanySettingsRequest{
		Settings: map[string]interface{}{"primary_color": "#336699", "language": "en"},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateSettings(scope, &dtos.CompanySettingsRequest{
		Name:     "Acme Corp",
		Settings: map[string]interface{}{"language": "pt"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, "#336699", updated.Settings["primary_color"])
	assert.Equal(t, "pt", updated.Settings["language"])
}
