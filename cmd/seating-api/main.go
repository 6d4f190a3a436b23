package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/exam-seating-api/api/swagger"
	"github.com/noah-isme/exam-seating-api/internal/handler"
	"github.com/noah-isme/exam-seating-api/internal/middleware"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/repository"
	"github.com/noah-isme/exam-seating-api/internal/service"
	"github.com/noah-isme/exam-seating-api/pkg/cache"
	"github.com/noah-isme/exam-seating-api/pkg/config"
	"github.com/noah-isme/exam-seating-api/pkg/database"
	"github.com/noah-isme/exam-seating-api/pkg/jobs"
	"github.com/noah-isme/exam-seating-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-seating-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-seating-api/pkg/middleware/requestid"
	"github.com/noah-isme/exam-seating-api/pkg/storage"
)

// @title Exam Seating API
// @version 1.0.0
// @description Anti-collusion exam seat allocation and reporting
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
	defer db.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	seatRepo := repository.NewSeatRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	userRepo := repository.NewUserRepository(db)

	var cacheRepo *repository.CacheRepository
	if redisClient, redisErr := cache.NewRedis(cfg.Redis); redisErr != nil {
		logr.Sugar().Warnw("redis unavailable, report cache disabled", "error", redisErr)
	} else {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
	}

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, assignmentRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, seatRepo, assignmentRepo, validate, logr)
	statsSvc := service.NewStatsService(studentRepo, roomRepo, seatRepo, assignmentRepo, logr)

	reportCfg := service.ReportServiceConfig{
		CacheEnabled: cfg.Seating.ReportCacheEnabled && cacheRepo != nil,
		CacheTTL:     cfg.Seating.ReportCacheTTL,
	}
	var seatingSvc *service.SeatingService
	var reportSvc *service.ReportService
	if cacheRepo != nil {
		seatingSvc = service.NewSeatingService(studentRepo, roomRepo, seatRepo, assignmentRepo, cacheRepo, metricsSvc, validate, logr)
		reportSvc = service.NewReportService(assignmentRepo, cacheRepo, logr, reportCfg)
	} else {
		seatingSvc = service.NewSeatingService(studentRepo, roomRepo, seatRepo, assignmentRepo, nil, metricsSvc, validate, logr)
		reportSvc = service.NewReportService(assignmentRepo, nil, logr, reportCfg)
	}

	exportHandler := handler.NewExportHandler(nil)
	if cfg.Reports.Enabled {
		store, storeErr := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if storeErr != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", storeErr)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		builder := service.NewExportBuilder(reportSvc, store, signer, service.ExportBuilderConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Reports.SignedURLTTL,
		}, logr, nil, nil, nil)

		exportRepo := repository.NewExportJobRepository(db)
		worker := service.NewExportWorker(exportRepo, builder, cfg.Reports.WorkerRetries, logr)
		queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()

		exportSvc := service.NewExportService(exportRepo, queue, builder, validate, logr, service.ExportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		exportSvc.RecoverPendingJobs(ctx)
		exportSvc.StartCleanup(ctx)
		exportHandler = handler.NewExportHandler(exportSvc)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, cfg.Uploads.MaxFileSizeBytes)
	roomHandler := handler.NewRoomHandler(roomSvc, cfg.Uploads.MaxFileSizeBytes)
	seatingHandler := handler.NewSeatingHandler(seatingSvc, statsSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	authed.GET("/auth/me", authHandler.Me)
	authed.GET("/metrics/summary", metricsHandler.Snapshot)

	admin := authed.Group("")
	admin.Use(middleware.RequireRole(models.RoleAdmin))

	authed.GET("/students", studentHandler.List)
	authed.GET("/students/department-subjects", studentHandler.DepartmentSubjects)
	admin.POST("/students", studentHandler.Create)
	admin.POST("/students/upload", studentHandler.Upload)
	authed.GET("/students/template", studentHandler.Template)
	admin.DELETE("/students", studentHandler.DeleteAll)

	authed.GET("/rooms", roomHandler.List)
	admin.POST("/rooms", roomHandler.Create)
	admin.POST("/rooms/upload", roomHandler.Upload)
	authed.GET("/rooms/template", roomHandler.Template)
	admin.DELETE("/rooms", roomHandler.DeleteAll)

	admin.POST("/seating/generate", seatingHandler.Generate)
	authed.GET("/seating/dates", seatingHandler.Dates)
	authed.GET("/seating/counts", seatingHandler.Counts)
	admin.DELETE("/seating/:date", seatingHandler.Delete)

	authed.GET("/reports/consolidated/:date", reportHandler.Consolidated)
	authed.GET("/reports/room/:date/:roomNo", reportHandler.Room)
	authed.GET("/reports/supervisor/:date", reportHandler.Supervisor)

	if cfg.Reports.Enabled {
		authed.POST("/exports", exportHandler.Create)
		authed.GET("/exports/:id", exportHandler.Status)
		api.GET("/export/:token", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", serveErr)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
