package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/thegrihome/realty-platform-iam/internal/infra/config"
	"github.com/thegrihome/realty-platform-iam/internal/infra/security"
	"github.com/thegrihome/realty-platform-iam/internal/infra/telemetry"
	"github.com/thegrihome/realty-platform-iam/internal/transport/http/handlers"
	"github.com/thegrihome/realty-platform-iam/internal/transport/http/middleware"
	"github.com/thegrihome/realty-platform-iam/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Signup *usecase.SignupService
	Login  *usecase.LoginService
	Lookup *usecase.LookupService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config    *config.AppConfig
	Logger    *zap.Logger
	Telemetry *telemetry.Provider
	Services  ServiceSet
	Database  DatabaseChecker
	Cache     CacheChecker
	// StaticOTP is set when the static OTP provider is active so development
	// tooling can surface the fixed code.
	StaticOTP *security.StaticOTPVerifier
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))

	if metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{}); err == nil {
		r.Use(metrics.Handler())
	} else if deps.Logger != nil {
		deps.Logger.Warn("http metrics disabled", zap.Error(err))
	}

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, handlers.MessageResponse{Message: "Method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.MessageResponse{Message: "Not found"})
	})

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	isDev := deps.Config.App.Env == "development"

	api := r.Group("/api/v1")
	{
		notificationDispatcher := handlers.NewLoggingNotificationDispatcher(deps.Logger)

		authGroup := api.Group("/auth")

		signupHandler := handlers.NewSignupHandler(deps.Services.Signup, notificationDispatcher, deps.Telemetry)
		signupHandler.RegisterRoutes(authGroup)

		loginHandler := handlers.NewLoginHandler(deps.Services.Login, deps.Telemetry)
		loginHandler.RegisterRoutes(authGroup)

		exposeErrors := deps.Config.App.Env != "production"
		lookupHandler := handlers.NewLookupHandler(deps.Services.Lookup, notificationDispatcher, exposeErrors)
		lookupHandler.RegisterRoutes(authGroup)

		if isDev && deps.StaticOTP != nil {
			authGroup.GET("/dev/otp", func(c *gin.Context) {
				c.JSON(http.StatusOK, handlers.DevOTPResponse{Code: deps.StaticOTP.Code()})
			})
		}
	}

	if isDev {
		handlers.RegisterSwagger(r)
	}

	return r
}
