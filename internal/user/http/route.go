package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers auth, profile and user administration routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	me := g.Group("/me", authMiddleware)
	{
		me.GET("", h.Me)
		me.POST("/password", h.ChangePassword)
	}

	usersGroup := g.Group("/users")
	usersGroup.Use(authMiddleware, adminMiddleware)
	{
		usersGroup.GET("", h.List)
		usersGroup.GET("/:id", h.Get)
		usersGroup.PATCH("/:id", h.Update)
	}
}
