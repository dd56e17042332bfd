package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicely-api/internal/config"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
	domainRepo "github.com/sangkips/invoicely-api/internal/domain/repository"
	"github.com/sangkips/invoicely-api/internal/presentation/http/dto/response"
	"github.com/sangkips/invoicely-api/internal/presentation/http/handler"
	"github.com/sangkips/invoicely-api/internal/presentation/http/middleware"
	"github.com/sangkips/invoicely-api/pkg/metrics"
	"github.com/sangkips/invoicely-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Client    *handler.ClientHandler
	Invoice   *handler.InvoiceHandler
	Settings  *handler.SettingsHandler
	Dashboard *handler.DashboardHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.UserRateLimiter
	Metrics         *metrics.Recorder
	Logger          *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// Global middleware
	router.Use(middleware.LoggerMiddleware(log, deps.Metrics))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		response.InternalServerError(c, "Internal server error")
		c.Abort()
	}))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})

	router.GET("/health", func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		}
		if deps.RateLimiter != nil {
			body["rate_limiter"] = deps.RateLimiter.Stats()
		}
		c.JSON(200, body)
	})
	if deps.Cfg.Metrics.Enabled && deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		// Public routes, limited per client IP
		public := v1.Group("")
		if deps.RateLimiter != nil {
			public.Use(deps.RateLimiter.Middleware())
		}
		registerAuthRoutes(public, h)

		// Protected routes, limited per user
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}
		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Auth/Profile routes
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile", h.Auth.UpdateProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	// Settings
	settings := protected.Group("/settings")
	settings.Use(middleware.RequirePermission(entity.PermissionManageSettings))
	{
		settings.GET("", h.Settings.GetSettings)
		settings.PUT("", h.Settings.UpdateSettings)
	}

	// Dashboard
	protected.GET("/dashboard", middleware.RequirePermission(entity.PermissionViewDashboard), h.Dashboard.GetStats)

	registerClientRoutes(protected, h)
	registerInvoiceRoutes(protected, h, deps)
	registerAdminRoutes(protected, h)
}

func registerClientRoutes(protected *gin.RouterGroup, h *Handlers) {
	clients := protected.Group("/clients")
	clients.Use(middleware.RequirePermission(entity.PermissionManageClients))
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.GET("/:id", h.Client.Get)
		clients.PUT("/:id", h.Client.Update)
		clients.DELETE("/:id", h.Client.Delete)
	}
}

func registerInvoiceRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotency := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
		TTL:  deps.Cfg.Idempotency.TTL,
	})

	invoices := protected.Group("/invoices")
	invoices.Use(middleware.RequirePermission(entity.PermissionManageInvoices))
	{
		invoices.GET("", h.Invoice.List)
		invoices.POST("", h.Invoice.Create)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.PUT("/:id", h.Invoice.Update)
		invoices.DELETE("/:id", h.Invoice.Delete)
		invoices.PUT("/:id/status", h.Invoice.UpdateStatus)
		invoices.POST("/:id/payments", idempotency, h.Invoice.AddPayment)
	}
}

func registerAdminRoutes(protected *gin.RouterGroup, h *Handlers) {
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(entity.RoleAdmin))
	{
		admin.POST("/invoices/sweep-overdue", h.Invoice.SweepOverdue)
	}
}
