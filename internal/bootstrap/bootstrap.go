package bootstrap

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/makerloft/craftfolio-backend/internal/audit"
	"github.com/makerloft/craftfolio-backend/internal/auth"
	"github.com/makerloft/craftfolio-backend/internal/config"
	"github.com/makerloft/craftfolio-backend/internal/email"
	app_errors "github.com/makerloft/craftfolio-backend/internal/errors"
	"github.com/makerloft/craftfolio-backend/internal/files"
	httpserver "github.com/makerloft/craftfolio-backend/internal/http"
	"github.com/makerloft/craftfolio-backend/internal/jwt"
	"github.com/makerloft/craftfolio-backend/internal/logger"
	"github.com/makerloft/craftfolio-backend/internal/portfolio"
	"github.com/makerloft/craftfolio-backend/internal/rbac"
	"github.com/makerloft/craftfolio-backend/internal/storage"
	"github.com/makerloft/craftfolio-backend/internal/telegram"
	"github.com/makerloft/craftfolio-backend/internal/ydb"
)

// App bundles everything main needs to run and shut down cleanly.
type App struct {
	Router http.Handler
	Config *config.Config

	db ydb.Database
}

// Initialize wires all dependencies and returns the application.
func Initialize(ctx context.Context) (*App, error) {
	cfg := config.Load()

	tgClient := telegram.NewClient(cfg)

	log := logger.New(tgClient)
	slog.SetDefault(log)

	db, err := ydb.NewYDBClient(ctx, cfg)
	if err != nil {
		return nil, app_errors.ErrFailedToConnectYDB
	}

	jwtManager := jwt.NewJWTManager(cfg)
	if jwtManager == nil {
		return nil, app_errors.ErrJWTSecretKeyNotConfigured
	}

	rbacManager := rbac.NewRBAC()

	emailClient := email.NewClient(cfg)

	storageClient, err := storage.NewClient(ctx, cfg)
	if err != nil {
		return nil, app_errors.ErrFailedToInitStorageClient
	}

	auditService := audit.NewService(db, log)
	authService := auth.NewService(db, jwtManager, rbacManager, emailClient, log)
	filesService := files.NewService(db, storageClient, auditService, cfg)
	portfolioService := portfolio.NewService(db, filesService, log)

	server := httpserver.NewServer(authService, filesService, portfolioService, auditService, jwtManager, rbacManager)
	router := httpserver.SetupRouter(server, jwtManager)

	slog.Info("Application initialized successfully")
	return &App{
		Router: router,
		Config: cfg,
		db:     db,
	}, nil
}

// Close releases held resources.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
