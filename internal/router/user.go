package router

import "github.com/gin-gonic/gin"

func (r *Router) userRoutes(api *gin.RouterGroup) {
	protected := api.Group("")
	protected.Use(r.jwtMw.RequireAuth())
	{
		protected.GET("/me", r.userHandler.Me)
		protected.POST("/profile", r.userHandler.UpdateProfile)
		protected.PUT("/profile/password", r.userHandler.ChangePassword)
		protected.POST("/logout", r.authHandler.Logout)
	}
}
