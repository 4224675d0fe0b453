package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/miniats/miniats/internal/billing"
	"github.com/miniats/miniats/internal/config"
	"github.com/miniats/miniats/internal/database"
	"github.com/miniats/miniats/internal/handlers"
	"github.com/miniats/miniats/internal/logger"
	"github.com/miniats/miniats/internal/mailer"
	"github.com/miniats/miniats/internal/notify"
	"github.com/miniats/miniats/internal/pipeline"
	"github.com/miniats/miniats/internal/services"
	"github.com/miniats/miniats/internal/sessions"
	"github.com/miniats/miniats/internal/storage"
	"github.com/miniats/miniats/internal/tenant"
	"go.uber.org/zap"
)

func main() {
	// 1. Configuration
	cfg := config.Load()

	zapLog, err := logger.New(cfg.LogLevel, "json")
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer zapLog.Sync()

	if missing := config.Missing(); len(missing) > 0 {
		zapLog.Warn("running with missing configuration", zap.Strings("missing", missing))
	}

	// 2. Database connection
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	zapLog.Info("database connection established")

	// 3. Redis for notification fan-out
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		zapLog.Warn("redis unavailable, notification push disabled", zap.Error(err))
	}
	cancel()

	// 4. Core services
	store := sessions.NewStore(db)
	gate := sessions.NewGate(store, db)
	notifier := notify.NewNotifier(db, rdb, zapLog)
	mail := mailer.New(cfg.EmailHost, cfg.EmailPort, cfg.EmailUser, cfg.EmailPassword, cfg.EmailFrom, zapLog)
	uploader := storage.NewUploader(cfg.StorageURL, zapLog)
	billingService := billing.NewService(db, zapLog, cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.AppOrigin)

	companyService := services.NewCompanyService(db)
	jobService := services.NewJobService(db)
	careersService := services.NewCareersService(db)
	candidateService := services.NewCandidateService(db)
	talentPoolService := services.NewTalentPoolService(db)
	teamService := services.NewTeamService(db)
	dashboardService := services.NewDashboardService(db, zapLog)
	pipelineService := pipeline.NewService(db)

	// 5. Handlers
	authHandler := handlers.NewAuthHandler(db, store, teamService, zapLog)
	companyHandler := handlers.NewCompanyHandler(companyService, uploader, zapLog)
	jobHandler := handlers.NewJobHandler(jobService, pipelineService, notifier, mail, db, cfg.AppOrigin, zapLog)
	careersHandler := handlers.NewCareersHandler(careersService, uploader, notifier, mail, db, cfg.AppOrigin, zapLog)
	candidateHandler := handlers.NewCandidateHandler(candidateService, talentPoolService)
	teamHandler := handlers.NewTeamHandler(teamService, companyService, mail, cfg.AppOrigin, zapLog)
	notificationHandler := handlers.NewNotificationHandler(notifier, zapLog)
	billingHandler := handlers.NewBillingHandler(billingService, zapLog)
	emailWebhookHandler := handlers.NewEmailWebhookHandler(db, mail, cfg.AppOrigin, zapLog)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, db)

	// 6. Router & CORS
	r := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.AppOrigin, "https://" + cfg.BaseDomain}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// 7. Routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "Mini ATS", "status": "ok"})
	})
	r.GET("/health", dashboardHandler.Health)

	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.POST("/invite", authHandler.AcceptInvite)
	}

	onboarding := r.Group("/onboarding", gate.RequireOnboarding())
	{
		onboarding.POST("", companyHandler.Onboard)
	}

	app := r.Group("/app", gate.RequireSession())
	{
		app.GET("/dashboard", dashboardHandler.TenantDashboard)

		app.GET("/jobs", jobHandler.List)
		app.POST("/jobs", jobHandler.Create)
		app.GET("/jobs/:id", jobHandler.Get)
		app.PUT("/jobs/:id", jobHandler.Update)
		app.PATCH("/jobs/:id/status", jobHandler.UpdateStatus)
		app.DELETE("/jobs/:id", jobHandler.Delete)
		app.GET("/jobs/:id/board", jobHandler.Board)
		app.POST("/applications/:id/move", jobHandler.Move)

		app.GET("/candidates", candidateHandler.List)
		app.GET("/candidates/:id", candidateHandler.Get)
		app.GET("/talent-pool", candidateHandler.ListPool)
		app.POST("/talent-pool", candidateHandler.AddToPool)
		app.DELETE("/talent-pool/:id", candidateHandler.RemoveFromPool)

		app.GET("/team", teamHandler.List)
		app.POST("/team", teamHandler.Invite)
		app.POST("/team/:id/resend", teamHandler.Resend)
		app.DELETE("/team/:id", teamHandler.Revoke)

		app.GET("/settings/company", companyHandler.Get)
		app.PUT("/settings/company", companyHandler.UpdateSettings)
		app.POST("/settings/company/logo", companyHandler.UploadLogo)

		app.GET("/notifications", notificationHandler.List)
		app.GET("/notifications/unread", notificationHandler.UnreadCount)
		app.POST("/notifications/:id/read", notificationHandler.MarkRead)
		app.POST("/notifications/read-all", notificationHandler.MarkAllRead)
		app.GET("/notifications/stream", notificationHandler.Stream)
	}

	admin := r.Group("/admin", gate.RequireAdmin())
	{
		admin.GET("/dashboard", dashboardHandler.AdminDashboard)
	}

	careers := r.Group("/careers")
	{
		careers.GET("/:slug", careersHandler.CompanyPage)
		careers.GET("/:slug/jobs/:id", careersHandler.JobPage)
		careers.POST("/:slug/jobs/:id/apply", careersHandler.Apply)
	}

	api := r.Group("/api")
	{
		api.GET("/health", dashboardHandler.Health)
		api.GET("/plans", billingHandler.Plans)
		api.POST("/stripe/checkout", billingHandler.CreateCheckout)
		api.POST("/stripe/portal", billingHandler.CreatePortal)
		api.POST("/webhooks/stripe", billingHandler.Webhook)
		api.POST("/webhooks/email", emailWebhookHandler.Handle)
	}

	// 8. Serve behind the tenant resolver so subdomains land on the right
	// route group.
	addr := ":" + cfg.Port
	zapLog.Info("server starting", zap.String("addr", addr), zap.String("base_domain", cfg.BaseDomain))
	if err := http.ListenAndServe(addr, tenant.NewResolver(cfg.BaseDomain, r)); err != nil {
		zapLog.Fatal("server failed", zap.Error(err))
	}
}
