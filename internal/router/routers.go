package router

import (
	"net/http"

	"github.com/Payphone-Digital/authflow/config"
	"github.com/Payphone-Digital/authflow/internal/handler"
	"github.com/Payphone-Digital/authflow/internal/middleware"
	"github.com/Payphone-Digital/authflow/pkg/ratelimit"
	"github.com/Payphone-Digital/authflow/pkg/validation"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authHandler         *handler.AuthHandler
	verificationHandler *handler.VerificationHandler
	passwordHandler     *handler.PasswordHandler
	userHandler         *handler.UserHandler
	healthHandler       *handler.HealthHandler

	jwtMw   *middleware.JWTMiddleware
	limiter ratelimit.Limiter
	metrics http.Handler
	Config  *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	verification *handler.VerificationHandler,
	password *handler.PasswordHandler,
	user *handler.UserHandler,
	health *handler.HealthHandler,

	jwtMw *middleware.JWTMiddleware,
	limiter ratelimit.Limiter,
	metrics http.Handler,
	config *config.Config,
) *Router {
	return &Router{
		authHandler:         auth,
		verificationHandler: verification,
		passwordHandler:     password,
		userHandler:         user,
		healthHandler:       health,

		jwtMw:   jwtMw,
		limiter: limiter,
		metrics: metrics,
		Config:  config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	validation.Setup()

	router := gin.New()

	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.ContextMiddleware(r.Config.App.Timeout))
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityLoggingMiddleware())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(r.Config.App.FrontendURL))

	if r.metrics != nil {
		router.GET("/metrics", gin.WrapH(r.metrics))
	}

	api := router.Group("/api")
	{
		r.healthRoutes(api)
		r.authRoutes(api)
		r.userRoutes(api)
	}

	return router
}

func (r *Router) healthRoutes(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("", r.healthHandler.HealthCheck)
		health.GET("/live", r.healthHandler.BasicHealth)
	}
}
