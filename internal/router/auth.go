package router

import (
	"github.com/Payphone-Digital/authflow/internal/middleware"
	"github.com/gin-gonic/gin"
)

func (r *Router) authRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	if r.limiter != nil {
		auth.Use(middleware.RateLimit(r.limiter))
	}
	{
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/refresh", r.authHandler.Refresh)
		// Always 200 so a client with a stale session can still clear cookies
		auth.POST("/logout", r.authHandler.Logout)

		// Email verification
		auth.GET("/email/verify/:id/:hash", r.verificationHandler.Verify)
		auth.POST("/verify_resend", r.verificationHandler.Resend)

		// Password reset
		auth.POST("/forgot-password", r.passwordHandler.Forgot)
		auth.POST("/reset-password", r.passwordHandler.Reset)
		auth.POST("/verify-reset-token", r.passwordHandler.VerifyToken)
		auth.POST("/find-email-by-token", r.passwordHandler.FindEmail)
	}
}
