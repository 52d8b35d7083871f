package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edunet-br/sge-api/api/swagger"
	"github.com/edunet-br/sge-api/internal/handler"
	"github.com/edunet-br/sge-api/internal/middleware"
	"github.com/edunet-br/sge-api/internal/models"
	"github.com/edunet-br/sge-api/internal/repository"
	"github.com/edunet-br/sge-api/internal/service"
	"github.com/edunet-br/sge-api/pkg/cache"
	"github.com/edunet-br/sge-api/pkg/config"
	"github.com/edunet-br/sge-api/pkg/database"
	"github.com/edunet-br/sge-api/pkg/export"
	"github.com/edunet-br/sge-api/pkg/logger"
	corsmiddleware "github.com/edunet-br/sge-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edunet-br/sge-api/pkg/middleware/requestid"
)

// @title SGE API
// @version 1.0.0
// @description Sistema de Gestão Escolar - enrollment, attendance, grading and period closing
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	yearRepo := repository.NewAcademicYearRepository(db)
	periodRepo := repository.NewAssessmentPeriodRepository(db)
	configRepo := repository.NewAssessmentConfigRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	attendanceConfigRepo := repository.NewAttendanceConfigRepository(db)
	justificationRepo := repository.NewJustificationRepository(db)
	lessonRepo := repository.NewLessonRecordRepository(db)
	closingRepo := repository.NewPeriodClosingRepository(db)
	rectificationRepo := repository.NewRectificationRepository(db)
	finalResultRepo := repository.NewFinalResultRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.Enabled && redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "sge-api",
		Audience:           []string{"sge"},
	})
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, directoryRepo, validate, logr)
	periodSvc := service.NewAssessmentPeriodService(periodRepo, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, configRepo, closingRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, attendanceConfigRepo, cfg.Alerts.RecentWindow, validate, logr)
	justificationSvc := service.NewJustificationService(justificationRepo, validate, logr)
	lessonSvc := service.NewLessonRecordService(lessonRepo, validate, logr)
	completenessSvc := service.NewCompletenessService(gradeRepo, configRepo, enrollmentRepo, attendanceRepo, lessonRepo)
	closingSvc := service.NewPeriodClosingService(closingRepo, periodRepo, completenessSvc, validate, logr)
	rectificationSvc := service.NewRectificationService(rectificationRepo, closingRepo, validate, logr)
	yearSvc := service.NewAcademicYearService(yearRepo, finalResultRepo, logr)
	finalResultSvc := service.NewFinalResultService(finalResultRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(enrollmentRepo, periodRepo, attendanceSvc, gradeSvc, directoryRepo, cacheSvc, validate, logr, cfg.Dashboard.CacheTTL)
	exportSvc := service.NewExportService(dashboardSvc, finalResultRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	authHandler := handler.NewAuthHandler(authSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	periodHandler := handler.NewAssessmentPeriodHandler(periodSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	justificationHandler := handler.NewJustificationHandler(justificationSvc)
	lessonHandler := handler.NewLessonRecordHandler(lessonSvc)
	closingHandler := handler.NewPeriodClosingHandler(closingSvc, metricsSvc)
	rectificationHandler := handler.NewRectificationHandler(rectificationSvc)
	yearHandler := handler.NewAcademicYearHandler(yearSvc, metricsSvc)
	finalResultHandler := handler.NewFinalResultHandler(finalResultSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))

	staff := []models.UserRole{models.RoleAdmin, models.RoleSecretary, models.RoleCoordinator}
	teaching := append(staff, models.RoleTeacher)

	enrollments := secured.Group("/enrollments", middleware.RequireRoles(staff...))
	{
		enrollments.GET("", enrollmentHandler.ListActive)
		enrollments.POST("", middleware.Audit(userRepo, "ENROLLMENT_CREATE", "enrollments"), enrollmentHandler.Enroll)
		enrollments.POST("/reassign", middleware.Audit(userRepo, "ENROLLMENT_REASSIGN", "enrollments"), enrollmentHandler.Reassign)
		enrollments.POST("/transfer", middleware.Audit(userRepo, "ENROLLMENT_TRANSFER", "enrollments"), enrollmentHandler.Transfer)
	}

	periods := secured.Group("/assessment-periods")
	{
		periods.GET("", periodHandler.List)
		periods.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator), periodHandler.Create)
		periods.PUT("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator), periodHandler.Update)
		periods.POST("/:id/transition", middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator), periodHandler.Transition)
	}

	grades := secured.Group("/grades", middleware.RequireRoles(teaching...))
	{
		grades.GET("", gradeHandler.List)
		grades.POST("", gradeHandler.Upsert)
		grades.POST("/average", gradeHandler.StudentAverage)
	}

	attendance := secured.Group("/attendance", middleware.RequireRoles(teaching...))
	{
		attendance.GET("", attendanceHandler.List)
		attendance.POST("", attendanceHandler.Mark)
		attendance.POST("/bulk", attendanceHandler.BulkMark)
		attendance.GET("/frequency", attendanceHandler.Frequency)
		attendance.GET("/alerts", attendanceHandler.Alerts)
	}

	justifications := secured.Group("/justifications")
	{
		justifications.POST("", middleware.RequireRoles(staff...), justificationHandler.Create)
		justifications.POST("/:id/approve", middleware.RequireRoles(staff...), middleware.Audit(userRepo, models.AuditActionJustifyApprove, "justifications"), justificationHandler.Approve)
	}

	lessons := secured.Group("/lesson-records", middleware.RequireRoles(teaching...))
	{
		lessons.GET("", lessonHandler.List)
		lessons.POST("", lessonHandler.Create)
	}

	closings := secured.Group("/period-closings")
	{
		closings.GET("", closingHandler.List)
		closings.POST("", middleware.RequireRoles(teaching...), closingHandler.Open)
		closings.POST("/submit", middleware.RequireRoles(teaching...), middleware.Audit(userRepo, models.AuditActionClosingSubmit, "period_closings"), closingHandler.Submit)
		closings.POST("/reject", middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator), middleware.Audit(userRepo, models.AuditActionClosingReject, "period_closings"), closingHandler.Reject)
		closings.POST("/:id/validate", middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator), middleware.Audit(userRepo, models.AuditActionClosingValidate, "period_closings"), closingHandler.Validate)
		closings.POST("/:id/finalize", middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator), middleware.Audit(userRepo, models.AuditActionClosingFinalize, "period_closings"), closingHandler.Finalize)
	}

	rectifications := secured.Group("/rectifications")
	{
		rectifications.GET("", rectificationHandler.ListByClosing)
		rectifications.POST("", middleware.RequireRoles(teaching...), middleware.Audit(userRepo, models.AuditActionRectificationReq, "rectifications"), rectificationHandler.Request)
		rectifications.POST("/:id/review", middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator), rectificationHandler.Review)
	}

	years := secured.Group("/academic-years")
	{
		years.GET("/:id", yearHandler.Get)
		years.POST("/:id/transition", middleware.RequireRoles(models.RoleAdmin), yearHandler.Transition)
		years.POST("/:id/close", middleware.RequireRoles(models.RoleAdmin), middleware.Audit(userRepo, models.AuditActionYearClose, "academic_years"), yearHandler.Close)
	}

	finalResults := secured.Group("/final-results", middleware.RequireRoles(staff...))
	{
		finalResults.GET("", finalResultHandler.ListByYear)
		finalResults.POST("", finalResultHandler.Record)
	}

	if cfg.Dashboard.Enabled {
		secured.GET("/dashboards/class-group", middleware.RequireRoles(staff...), dashboardHandler.ClassGroup)
	}

	if cfg.Exports.Enabled {
		exports := secured.Group("/exports", middleware.RequireRoles(staff...))
		exports.GET("/closing-summary", exportHandler.ClosingSummary)
		exports.GET("/final-results", exportHandler.FinalResults)
	}

	secured.GET("/metrics/snapshot", middleware.RequireRoles(models.RoleAdmin), metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
