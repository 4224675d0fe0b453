package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/miniats/miniats/internal/database"
	"github.com/miniats/miniats/internal/mailer"
	"github.com/miniats/miniats/internal/models"
	"github.com/miniats/miniats/internal/notify"
	"github.com/miniats/miniats/internal/services"
	"github.com/miniats/miniats/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newCareersTestRouter(t *testing.T, storageURL string) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	log := zap.NewNop()
	h := NewCareersHandler(
		services.NewCareersService(db),
		storage.NewUploader(storageURL, log),
		notify.NewNotifier(db, nil, log),
		mailer.New("localhost", 2525, "", "", "noreply@test", log),
		db,
		"https://app.test",
		log,
	)

	r := gin.New()
	r.GET("/careers/:slug", h.CompanyPage)
	r.GET("/careers/:slug/jobs/:id", h.JobPage)
	r.POST("/careers/:slug/jobs/:id/apply", h.Apply)
	return r, db
}

func seedPublishedJob(t *testing.T, db *gorm.DB) (*models.Company, *models.Job) {
	t.Helper()
	company := models.Company{Name: "Acme", Slug: "acme", PlanID: "free"}
	require.NoError(t, db.Create(&company).Error)
	job := models.Job{
		CompanyID: company.ID,
		Title:     datatypes.JSONMap{"en": "Backend Engineer"},
		Status:    models.JobStatusPublished,
	}
	require.NoError(t, db.Create(&job).Error)
	return &company, &job
}

type applyForm struct {
	name, email    string
	resumeFilename string
	resumeContent  []byte
}

func encodeApplyForm(t *testing.T, form applyForm) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("name", form.name))
	require.NoError(t, w.WriteField("email", form.email))
	if form.resumeFilename != "" {
		fw, err := w.CreateFormFile("resume", form.resumeFilename)
		require.NoError(t, err)
		_, err = fw.Write(form.resumeContent)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}

func TestApplyWithoutResumeWritesNothing(t *testing.T) {
	r, db := newCareersTestRouter(t, "http://storage.invalid")
	_, job := seedPublishedJob(t, db)

	body, contentType := encodeApplyForm(t, applyForm{
		name:  "Jo Doe",
		email: "jo@example.com",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/careers/acme/jobs/"+job.ID+"/apply", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"resume"`)
	assert.EqualValues(t, 0, countRows(t, db, &models.Candidate{}))
	assert.EqualValues(t, 0, countRows(t, db, &models.Application{}))
}

func TestApplyValidationRejections(t *testing.T) {
	r, db := newCareersTestRouter(t, "http://storage.invalid")
	_, job := seedPublishedJob(t, db)

	tests := []struct {
		name  string
		form  applyForm
		field string
	}{
		{"short name", applyForm{name: "J", email: "jo@example.com", resumeFilename: "cv.pdf", resumeContent: []byte("pdf")}, "name"},
		{"bad email", applyForm{name: "Jo Doe", email: "not-an-email", resumeFilename: "cv.pdf", resumeContent: []byte("pdf")}, "email"},
		{"bad extension", applyForm{name: "Jo Doe", email: "jo@example.com", resumeFilename: "cv.exe", resumeContent: []byte("bin")}, "resume"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := encodeApplyForm(t, tt.form)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/careers/acme/jobs/"+job.ID+"/apply", body)
			req.Header.Set("Content-Type", contentType)
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"field":"`+tt.field+`"`)
		})
	}
	assert.EqualValues(t, 0, countRows(t, db, &models.Application{}))
}

func TestApplyUploadsAndCreatesApplication(t *testing.T) {
	var uploaded int
	blobStore := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uploaded++
		w.WriteHeader(http.StatusOK)
	}))
	defer blobStore.Close()

	r, db := newCareersTestRouter(t, blobStore.URL)
	_, job := seedPublishedJob(t, db)

	body, contentType := encodeApplyForm(t, applyForm{
		name:           "Jo Doe",
		email:          "jo@example.com",
		resumeFilename: "jo resume.pdf",
		resumeContent:  []byte("%PDF-1.4 fake"),
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/careers/acme/jobs/"+job.ID+"/apply", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, uploaded)

	var app models.Application
	require.NoError(t, db.First(&app, "job_id = ?", job.ID).Error)
	assert.Equal(t, "new", app.Stage)

	var candidate models.Candidate
	require.NoError(t, db.First(&candidate, "id = ?", app.CandidateID).Error)
	assert.Contains(t, candidate.ResumeURL, blobStore.URL+"/object/public/resumes/")
	assert.NotContains(t, candidate.ResumeURL, " ")
}

func TestApplyToDraftJobIsNotFound(t *testing.T) {
	r, db := newCareersTestRouter(t, "http://storage.invalid")
	company, _ := seedPublishedJob(t, db)

	draft := models.Job{
		CompanyID: company.ID,
		Title:     datatypes.JSONMap{"en": "Hidden"},
		Status:    models.JobStatusDraft,
	}
	require.NoError(t, db.Create(&draft).Error)

	body, contentType := encodeApplyForm(t, applyForm{
		name: "Jo Doe", email: "jo@example.com",
		resumeFilename: "cv.pdf", resumeContent: []byte("pdf"),
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/careers/acme/jobs/"+draft.ID+"/apply", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.EqualValues(t, 0, countRows(t, db, &models.Application{}))
}

func TestCompanyPageHidesDrafts(t *testing.T) {
	r, db := newCareersTestRouter(t, "http://storage.invalid")
	company, published := seedPublishedJob(t, db)

	draft := models.Job{
		CompanyID: company.ID,
		Title:     datatypes.JSONMap{"en": "Hidden"},
		Status:    models.JobStatusDraft,
	}
	require.NoError(t, db.Create(&draft).Error)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/careers/acme", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), published.ID)
	assert.NotContains(t, w.Body.String(), draft.ID)
}
