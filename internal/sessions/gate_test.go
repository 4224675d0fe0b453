package sessions

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/miniats/miniats/internal/database"
	"github.com/miniats/miniats/internal/models"
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

func newTestRouter(t *testing.T, db *gorm.DB) (*gin.Engine, *Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := NewStore(db)
	gate := NewGate(store, db)

	r := gin.New()
	r.GET("/app/dashboard", gate.RequireSession(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"company_id": CurrentScope(c).CompanyID})
	})
	r.GET("/admin/dashboard", gate.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/onboarding", gate.RequireOnboarding(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, store
}

func seedUser(t *testing.T, db *gorm.DB, email, companyID string) *models.User {
	t.Helper()
	user := models.User{Email: email, CompanyID: companyID}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func sessionCookie(t *testing.T, store *Store, userID string) *http.Cookie {
	t.Helper()
	token, err := store.Create(userID)
	require.NoError(t, err)
	return &http.Cookie{Name: CookieName, Value: token}
}

func TestAnonymousRedirectedToLoginWithReturnPath(t *testing.T) {
	db := newTestDB(t)
	r, _ := newTestRouter(t, db)

	for _, path := range []string{"/app/dashboard", "/onboarding"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code, path)
		loc, err := w.Result().Location()
		require.NoError(t, err)
		assert.Equal(t, "/auth/login", loc.Path)
		assert.Equal(t, path, loc.Query().Get("redirectTo"))
	}
}

func TestUserWithoutCompanyGoesToOnboarding(t *testing.T) {
	db := newTestDB(t)
	r, store := newTestRouter(t, db)
	user := seedUser(t, db, "new@example.com", "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/app/dashboard", nil)
	req.AddCookie(sessionCookie(t, store, user.ID))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	loc, err := w.Result().Location()
	require.NoError(t, err)
	assert.Equal(t, "/onboarding", loc.Path)
}

func TestMemberPassesGateWithScope(t *testing.T) {
	db := newTestDB(t)
	r, store := newTestRouter(t, db)
	user := seedUser(t, db, "member@example.com", "co-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/app/dashboard", nil)
	req.AddCookie(sessionCookie(t, store, user.ID))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "co-1")
}

func TestNonOperatorBouncedFromAdmin(t *testing.T) {
	db := newTestDB(t)
	r, store := newTestRouter(t, db)
	user := seedUser(t, db, "member@example.com", "co-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(sessionCookie(t, store, user.ID))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	loc, err := w.Result().Location()
	require.NoError(t, err)
	assert.Equal(t, "/app/dashboard", loc.Path)
}

func TestOperatorPassesAdminGate(t *testing.T) {
	db := newTestDB(t)
	r, store := newTestRouter(t, db)
	user := seedUser(t, db, "ops@example.com", "co-1")
	require.NoError(t, db.Create(&models.Administrator{Email: "ops@example.com"}).Error)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(sessionCookie(t, store, user.ID))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRevokedSessionIsAnonymous(t *testing.T) {
	db := newTestDB(t)
	r, store := newTestRouter(t, db)
	user := seedUser(t, db, "member@example.com", "co-1")

	cookie := sessionCookie(t, store, user.ID)
	require.NoError(t, store.Revoke(cookie.Value))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/app/dashboard", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	loc, err := w.Result().Location()
	require.NoError(t, err)
	assert.Equal(t, "/auth/login", loc.Path)
}
