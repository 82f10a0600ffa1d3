package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"student-records/internal/auth"
	"student-records/internal/config"
	apphttp "student-records/internal/http"
	"student-records/internal/logging"
	"student-records/internal/repository"
	"student-records/internal/repository/gormstore"
	"student-records/internal/repository/sqlite"
	"student-records/internal/service"
	"student-records/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.Fatalf("setup logging: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	students, admins, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer closeStore()

	if err := students.Init(ctx); err != nil {
		logger.Fatalf("init student repository: %v", err)
	}
	if err := admins.Init(ctx); err != nil {
		logger.Fatalf("init admin repository: %v", err)
	}

	tokens, err := auth.NewTokenProvider(auth.TokenConfig{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.TokenTTL,
	})
	if err != nil {
		logger.Fatalf("setup tokens: %v", err)
	}

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	studentService := service.NewStudentService(students, logger)
	authService := service.NewAuthService(admins, auth.NewBcryptHasher(cfg.Auth.BcryptCost), tokens, logger)
	exportService := service.NewExportService(students, storageSvc, service.ExportConfig{
		Bucket:    cfg.Export.Bucket,
		KeyPrefix: cfg.Export.KeyPrefix,
	}, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(studentService, authService, exportService, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s (%s store)", cfg.Server.Addr, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func openStore(cfg config.Config) (repository.StudentRepository, repository.AdminRepository, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		db, err := gormstore.Open(cfg.Database.DSN)
		if err != nil {
			return nil, nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("mysql handle: %w", err)
		}
		return gormstore.NewStudentRepository(db), gormstore.NewAdminRepository(db), func() { sqlDB.Close() }, nil
	default:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return sqlite.NewStudentRepository(db), sqlite.NewAdminRepository(db), func() { db.Close() }, nil
	}
}

// buildStorage returns a nil Service when no export bucket is configured.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Export.Bucket == "" {
		logger.Info("export bucket not configured, roster export disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Export.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Export.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Export.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Export.Bucket, cfg.Export.Region)
	return storage.NewS3Service(client), nil
}
