package api

import (
	"fmt"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/vistoria/inspection-api/docs"
	"github.com/vistoria/inspection-api/internal/api/handler"
	"github.com/vistoria/inspection-api/internal/api/middleware"
	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
	"github.com/vistoria/inspection-api/internal/infrastructure/config"
)

const jsonBodyLimit = "1M"

// Dependencies are the services the HTTP layer is built on. They are created
// in main so background workers share the same instances.
type Dependencies struct {
	Auth        ports.AuthService
	ClientAuth  ports.ClientAuthService
	Sessions    middleware.SessionResolver
	Tenants     middleware.TenantChecker
	Companies   ports.CompanyService
	Users       ports.UserService
	Properties  ports.PropertyService
	Inspections ports.InspectionService
	Uploads     ports.UploadService
	Contests    ports.ContestService
	Sync        ports.SyncService
	Dashboard   ports.DashboardService
	Health      *handler.HealthHandler
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, deps Dependencies, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddleware("inspection"))

	uploadLimit := fmt.Sprintf("%dK", (int64(cfg.Upload.MaxFiles)*cfg.Upload.MaxFileSize)/1024+1024)
	e.Use(echomiddleware.BodyLimitWithConfig(echomiddleware.BodyLimitConfig{
		Limit: jsonBodyLimit,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/v1/uploads"
		},
	}))

	loginLimiter := authRateLimiter(cfg.AuthRateLimit)
	requireUser := middleware.Auth(cfg.JWTSecret)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	clientHandler := handler.NewClientHandler(deps.ClientAuth, deps.Inspections, deps.Contests)
	companyHandler := handler.NewCompanyHandler(deps.Companies)
	userHandler := handler.NewUserHandler(deps.Users)
	propertyHandler := handler.NewPropertyHandler(deps.Properties)
	inspectionHandler := handler.NewInspectionHandler(deps.Inspections)
	uploadHandler := handler.NewUploadHandler(deps.Uploads)
	contestHandler := handler.NewContestHandler(deps.Contests)
	syncHandler := handler.NewSyncHandler(deps.Sync)
	dashboardHandler := handler.NewDashboardHandler(deps.Dashboard)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register, loginLimiter)
	auth.POST("/login", authHandler.Login, loginLimiter)
	auth.GET("/me", authHandler.Me, requireUser)
	auth.POST("/refresh", authHandler.Refresh, requireUser)

	// --- Client portal (session tokens) ---
	clients := e.Group("/clients")
	clients.POST("/register", clientHandler.Register, loginLimiter)
	clients.POST("/login", clientHandler.Login, loginLimiter)
	session := clients.Group("", middleware.Session(deps.Sessions))
	session.POST("/logout", clientHandler.Logout)
	session.GET("/me", clientHandler.Me)
	session.GET("/inspections", clientHandler.Inspections)
	session.GET("/contests", clientHandler.Contests)
	session.POST("/contests", clientHandler.CreateContest)

	// --- Tenant API (user JWT) ---
	v1 := e.Group("/v1", requireUser, middleware.RequireActiveTenant(deps.Tenants))

	superAdmin := middleware.RBAC(domain.RoleSuperAdmin)
	v1.GET("/companies", companyHandler.List, superAdmin)
	v1.GET("/companies/:id", companyHandler.Get)
	v1.PUT("/companies/:id", companyHandler.Update)
	v1.PATCH("/companies/:id/status", companyHandler.SetStatus, superAdmin)

	v1.GET("/users", userHandler.List)
	v1.POST("/users", userHandler.Create)
	v1.GET("/users/:id", userHandler.Get)
	v1.PUT("/users/:id", userHandler.Update)
	v1.DELETE("/users/:id", userHandler.Delete)

	v1.GET("/properties", propertyHandler.List)
	v1.POST("/properties", propertyHandler.Create)
	v1.GET("/properties/:id", propertyHandler.Get)
	v1.PUT("/properties/:id", propertyHandler.Update)
	v1.DELETE("/properties/:id", propertyHandler.Delete)

	v1.GET("/inspections", inspectionHandler.List)
	v1.POST("/inspections", inspectionHandler.Create)
	v1.GET("/inspections/:id", inspectionHandler.Get)
	v1.PUT("/inspections/:id", inspectionHandler.Update)
	v1.PATCH("/inspections/:id/status", inspectionHandler.Transition)
	v1.DELETE("/inspections/:id", inspectionHandler.Delete)

	v1.GET("/uploads", uploadHandler.List)
	v1.POST("/uploads", uploadHandler.Create, echomiddleware.BodyLimit(uploadLimit))
	v1.GET("/uploads/:id", uploadHandler.Get)
	v1.GET("/uploads/:id/download", uploadHandler.Download)
	v1.DELETE("/uploads/:id", uploadHandler.Delete)

	v1.GET("/contests", contestHandler.List)
	v1.GET("/contests/:id", contestHandler.Get)
	v1.PATCH("/contests/:id/status", contestHandler.Resolve)
	v1.DELETE("/contests/:id", contestHandler.Delete)

	v1.POST("/sync", syncHandler.Submit)
	v1.GET("/sync", syncHandler.List)
	v1.GET("/sync/:id", syncHandler.Get)

	v1.GET("/dashboard/stats", dashboardHandler.Stats)

	// --- Health probes, metrics and docs (no auth required) ---
	optionalUser := middleware.OptionalAuth(cfg.JWTSecret)
	e.GET("/health", deps.Health.Liveness)
	e.GET("/health/ready", deps.Health.Readiness, optionalUser)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// authRateLimiter allows perMinute credential attempts per client IP.
func authRateLimiter(perMinute float64) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perMinute / 60),
		Burst:     int(perMinute),
		ExpiresIn: 3 * time.Minute,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.ErrTooManyRequests
		},
	})
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
