package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/config"
	apphttp "github.com/techizeBuilder/wellness-full-backend-sub002/internal/http"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/repository/sqlite"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/seed"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/service"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/storage"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/token"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	expertRepo := sqlite.NewExpertRepository(db)
	adminRepo := sqlite.NewAdminRepository(db)
	permRepo := sqlite.NewPermissionRepository(db)
	planRepo := sqlite.NewPlanRepository(db)
	subRepo := sqlite.NewSubscriptionRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := expertRepo.Init(ctx); err != nil {
		logger.Fatalf("init expert repository: %v", err)
	}
	if err := adminRepo.Init(ctx); err != nil {
		logger.Fatalf("init admin repository: %v", err)
	}
	if err := permRepo.Init(ctx); err != nil {
		logger.Fatalf("init permission repository: %v", err)
	}
	if err := planRepo.Init(ctx); err != nil {
		logger.Fatalf("init plan repository: %v", err)
	}
	if err := subRepo.Init(ctx); err != nil {
		logger.Fatalf("init subscription repository: %v", err)
	}

	if cfg.Seed.Enabled {
		seeder := seed.New(adminRepo, permRepo, planRepo, logger)
		if err := seeder.Run(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
			logger.Fatalf("seed baseline data: %v", err)
		}
	}

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	issuer := token.NewIssuer(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTTLHours)*time.Hour,
	)

	lockout := service.LockoutPolicy{
		MaxAttempts: cfg.Lockout.MaxAttempts,
		LockWindow:  time.Duration(cfg.Lockout.LockMinutes) * time.Minute,
	}

	authService := service.NewAuthService(userRepo, expertRepo, adminRepo, storageSvc, issuer, lockout, logger)
	accountService := service.NewAccountService(userRepo, expertRepo, adminRepo, storageSvc, issuer, logger)
	planService := service.NewPlanService(planRepo, subRepo)
	adminService := service.NewAdminService(permRepo)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(authService, accountService, planService, adminService, issuer, logger)
	handler.RegisterRoutes(router)

	if cfg.Storage.Bucket == "" {
		router.Static(cfg.Uploads.BaseURL, cfg.Uploads.Dir)
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
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

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Infof("using local uploads dir %s", cfg.Uploads.Dir)
		return storage.NewLocalService(cfg.Uploads.Dir, cfg.Uploads.BaseURL), nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client, storage.S3Options{
		Bucket:    cfg.Storage.Bucket,
		KeyPrefix: cfg.Storage.KeyPrefix,
		URLTTL:    time.Duration(cfg.Storage.URLTTLMinutes) * time.Minute,
	}), nil
}
