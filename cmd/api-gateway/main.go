package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/enhc-tech/career-guide-api/api/swagger"
	"github.com/enhc-tech/career-guide-api/internal/handler"
	"github.com/enhc-tech/career-guide-api/internal/middleware"
	"github.com/enhc-tech/career-guide-api/internal/models"
	"github.com/enhc-tech/career-guide-api/internal/repository"
	"github.com/enhc-tech/career-guide-api/internal/service"
	"github.com/enhc-tech/career-guide-api/pkg/cache"
	"github.com/enhc-tech/career-guide-api/pkg/config"
	"github.com/enhc-tech/career-guide-api/pkg/database"
	"github.com/enhc-tech/career-guide-api/pkg/jobs"
	"github.com/enhc-tech/career-guide-api/pkg/logger"
	corsmiddleware "github.com/enhc-tech/career-guide-api/pkg/middleware/cors"
	reqidmiddleware "github.com/enhc-tech/career-guide-api/pkg/middleware/requestid"
	"github.com/enhc-tech/career-guide-api/pkg/storage"
)

// @title Career Guide API
// @version 1.0.0
// @description Assessment lifecycle and report delivery service
// @BasePath /
// @schemes http

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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The listing cache is an optimization; the service runs
		// without it.
		logr.Sugar().Warnw("redis unavailable, running without listing cache", "error", err)
		redisClient = nil
	}

	reportStore, err := storage.NewReportStore(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init report store", "error", err)
	}

	signer := storage.NewDownloadTokenSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	studentRepo := repository.NewStudentRepository(db)
	assessRepo := repository.NewAssessmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	if inFlight, err := assessRepo.CountByStatus(context.Background(), models.StatusAnalyzing); err == nil {
		metricsSvc.SetAnalysesInFlight(inFlight)
	} else {
		logr.Sugar().Warnw("failed to seed in-flight analyses gauge", "error", err)
	}

	authSvc := service.NewAuthService(studentRepo, assessRepo, auditRepo, validator.New(), logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	var worker *service.AnalysisWorker
	queue := jobs.NewQueue("analysis", func(ctx context.Context, job jobs.Job) error {
		return worker.Handle(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Analysis.WorkerConcurrency,
		MaxRetries: cfg.Analysis.WorkerRetries,
		RetryDelay: cfg.Analysis.RetryDelay,
		Logger:     logr,
	})

	assessSvc := service.NewAssessmentService(assessRepo, queue, cacheRepo, metricsSvc, logr)
	worker = service.NewAnalysisWorker(studentRepo, assessRepo, assessSvc,
		service.NewPDFAnalyzer(reportStore), cfg.Analysis.WorkerRetries, logr)

	deliverySvc := service.NewDeliveryService(assessRepo, studentRepo, reportStore, cacheRepo, signer, auditRepo, logr, cfg.Listing.CacheTTL)

	queueCtx, queueCancel := context.WithCancel(context.Background())
	defer queueCancel()
	queue.Start(queueCtx)
	defer queue.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	marksHandler := handler.NewMarksHandler(assessSvc)
	reportHandler := handler.NewReportHandler(deliverySvc)
	studentHandler := handler.NewStudentHandler(deliverySvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)

	// Signed listing tokens carry their own authorization.
	api.GET("/reports/export/:token", reportHandler.DownloadSigned)

	protected := api.Group("", middleware.JWT(authSvc))
	protected.GET("/auth/me", authHandler.Profile)

	student := protected.Group("", middleware.RequireRoles(models.RoleStudent))
	student.POST("/marks", middleware.Audit(auditRepo, models.AuditActionMarksSubmit, "assessment"), marksHandler.SubmitMarks)
	student.GET("/questionnaire/report-status", marksHandler.ReportStatus)
	student.GET("/download-report/:handle", reportHandler.DownloadOwn)

	admin := protected.Group("/auth",
		middleware.RequireRoles(models.RoleAdmin),
		middleware.AdminGate(cfg.Admin.PanelSecret))
	admin.GET("/students", studentHandler.ListStudents)
	admin.GET("/download-report/:handle", reportHandler.DownloadForAdmin)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
