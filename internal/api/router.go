package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/userhub/auth-api/docs"
	"github.com/userhub/auth-api/internal/api/handler"
	"github.com/userhub/auth-api/internal/api/middleware"
	"github.com/userhub/auth-api/internal/core/domain"
	"github.com/userhub/auth-api/internal/core/ports"
)

// Deps holds everything the router needs to build its handlers.
type Deps struct {
	AuthService ports.AuthService
	UserService ports.UserService
	Identity    ports.Identity
	Codec       ports.TokenCodec
	Probes      map[string]handler.Pinger
	CORSOrigins []string
	Logger      zerolog.Logger
}

// staffRoles may reach the role-gated probe and /users/me.
var staffRoles = []domain.Role{
	domain.RoleCustomer,
	domain.RoleAdmin,
	domain.RoleWarehouseSupervisor,
	domain.RoleSalesClerk,
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddleware("auth_api"))
	e.Use(middleware.Authenticate(d.Codec, d.Logger))

	gate := middleware.RequireRole(staffRoles...)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.AuthService, d.Logger)
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/forgotLogin", authHandler.ForgotLogin)
	auth.GET("/protected", authHandler.Protected, gate)

	// --- User routes ---
	userHandler := handler.NewUserHandler(d.UserService)
	users := e.Group("/users")
	users.POST("", userHandler.Register)
	users.GET("", userHandler.List)
	users.GET("/me", userHandler.Me, gate)
	users.GET("/:id", userHandler.Get)
	users.PATCH("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	// --- Identity ---
	meHandler := handler.NewMeHandler(d.Identity)
	e.GET("/me", userHandler.Me)
	e.GET("/me/username", meHandler.Username)
	e.GET("/me/has-role/:role", meHandler.HasRole)

	// --- Health probes (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Probes).Readiness)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog event per request. Headers and bodies are
// never logged, so tokens and passwords stay out of the logs.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= 500:
				ev = log.Error().Err(v.Error)
			case v.Error != nil:
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency.Round(time.Microsecond)).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
