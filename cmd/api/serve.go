package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicely-api/internal/application/service"
	"github.com/sangkips/invoicely-api/internal/infrastructure/repository"
	"github.com/sangkips/invoicely-api/internal/presentation/http/handler"
	"github.com/sangkips/invoicely-api/internal/presentation/http/middleware"
	"github.com/sangkips/invoicely-api/internal/presentation/http/routes"
	"github.com/sangkips/invoicely-api/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API on APP_PORT. The schema is migrated and default roles
are seeded first unless --skip-migrate is given.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Bool("skip-migrate", false, "Do not run migrations and seeding before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	skipMigrate, _ := cmd.Flags().GetBool("skip-migrate")
	if !skipMigrate {
		if err := a.migrate(); err != nil {
			return err
		}
	}

	if a.cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	jwtManager := utils.NewJWTManager(
		a.cfg.JWT.Secret,
		a.cfg.JWT.ExpiryHours,
		a.cfg.JWT.RefreshExpiryHours,
	)

	// Repositories
	userRepo := repository.NewUserRepository(a.db)
	roleRepo := repository.NewRoleRepository(a.db)
	clientRepo := repository.NewClientRepository(a.db)
	invoiceRepo := repository.NewInvoiceRepository(a.db)
	settingsRepo := repository.NewSettingsRepository(a.db)
	idempotencyRepo := repository.NewIdempotencyRepository(a.db)

	// Services
	authService := service.NewAuthService(userRepo, roleRepo, settingsRepo, jwtManager)
	clientService := service.NewClientService(clientRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, settingsRepo, a.metrics)
	settingsService := service.NewSettingsService(settingsRepo)
	dashboardService := service.NewDashboardService(invoiceRepo)

	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Client:    handler.NewClientHandler(clientService),
		Invoice:   handler.NewInvoiceHandler(invoiceService),
		Settings:  handler.NewSettingsHandler(settingsService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
	}

	rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfigFrom(
		a.cfg.RateLimit.Requests,
		time.Duration(a.cfg.RateLimit.Duration)*time.Second,
	))
	defer rateLimiter.Close()

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             a.cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
		Metrics:         a.metrics,
		Logger:          a.log,
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("env", a.cfg.App.Env),
			zap.String("db_driver", a.cfg.Database.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
