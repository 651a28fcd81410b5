package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers room routes. Reads are public; writes need the
// manager middlewares.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, managerMiddlewares ...gin.HandlerFunc) {
	rooms := g.Group("/rooms")
	{
		rooms.GET("", h.List)
		rooms.GET("/:id", h.Get)
	}

	manage := rooms.Group("", managerMiddlewares...)
	{
		manage.POST("", h.Create)
		manage.PATCH("/:id", h.Update)
		manage.DELETE("/:id", h.Delete)
		manage.POST("/:id/images", h.UploadImage)
		manage.DELETE("/:id/images/:imageId", h.RemoveImage)
	}
}
