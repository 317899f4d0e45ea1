package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/theoribbi/tenantly/internal/caching"
	"github.com/theoribbi/tenantly/internal/config"
	"github.com/theoribbi/tenantly/internal/database"
	"github.com/theoribbi/tenantly/internal/handlers"
	"github.com/theoribbi/tenantly/internal/middleware"
	"github.com/theoribbi/tenantly/internal/repositories"
	"github.com/theoribbi/tenantly/internal/schema"
	"github.com/theoribbi/tenantly/internal/services"
	"github.com/theoribbi/tenantly/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	cfg.ConfigureLogging()

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.EnsureRegistry(ctx, pool); err != nil {
		logrus.Fatalf("failed to ensure tenant registry: %v", err)
	}

	changesets, err := schema.LoadChangesets(migrations.Tenant())
	if err != nil {
		logrus.Fatalf("failed to load changesets: %v", err)
	}

	acquirer := database.PoolAcquirer{Pool: pool}
	provisioner := schema.NewProvisioner(acquirer, changesets)
	gateway := database.NewGateway(acquirer,
		database.WithAcquireTimeout(cfg.AcquireTimeout),
		database.WithSchemaVerification(),
	)

	var tenantCache caching.TenantCache = caching.NoopTenantCache{}
	if cfg.RedisAddr != "" {
		tenantCache = caching.NewRedisTenantCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}

	storage, err := services.NewMinioStorage(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		logrus.Fatalf("failed to initialize object storage: %v", err)
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		logrus.WithError(err).Warn("could not ensure logo bucket, uploads may fail")
	}

	// Repositories and services
	companyRepo := repositories.NewCompanyRepo(pool)
	userRepo := repositories.NewUserRepo()
	companySvc := services.NewCompanyService(companyRepo, provisioner, storage)
	userSvc := services.NewUserService(gateway, userRepo, companyRepo)

	// Handlers
	companyHandlers := handlers.NewCompanyHandlers(companySvc)
	userHandlers := handlers.NewUserHandlers(userSvc)
	adminDBHandlers := handlers.NewAdminDBHandlers(companySvc)
	healthHandlers := handlers.NewHealthHandlers(pool)

	tenantResolver := middleware.NewTenantResolver(companyRepo, tenantCache)

	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(tenantResolver.Resolve())

	e.GET("/health", healthHandlers.HealthCheck)

	// Admin surface (no subdomain, or a reserved one)
	e.POST("/companies", companyHandlers.CreateCompany)
	e.GET("/companies", companyHandlers.ListCompanies)
	e.GET("/companies/:id", companyHandlers.GetCompany)
	e.GET("/companies/slug/:slug", companyHandlers.GetCompanyBySlug)
	e.POST("/companies/:id/logo", companyHandlers.UploadLogo)
	e.GET("/companies/:id/logo", companyHandlers.GetLogo)
	e.GET("/companies/:id/users", userHandlers.ListCompanyUsers)
	e.POST("/companies/:id/users", userHandlers.CreateCompanyUser)
	e.GET("/companies/:id/users/:userId", userHandlers.GetCompanyUser)
	e.PATCH("/companies/:id/users/:userId", userHandlers.UpdateCompanyUser)
	e.DELETE("/companies/:id/users/:userId", userHandlers.DeleteCompanyUser)
	e.POST("/admin/db/migrate-tenants", adminDBHandlers.MigrateTenants)

	// Tenant surface (subdomain routed)
	e.GET("/users", userHandlers.ListUsers)
	e.POST("/users", userHandlers.CreateUser)
	e.GET("/users/:id", userHandlers.GetUser)
	e.PATCH("/users/:id", userHandlers.UpdateUser)
	e.DELETE("/users/:id", userHandlers.DeleteUser)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("shutdown: %v", err)
	}
	logrus.Info("server stopped")
}
