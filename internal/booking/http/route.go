package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking routes and the public room availability route.
// staffMiddleware must run after authMiddleware.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, optionalAuthMiddleware, staffMiddleware gin.HandlerFunc) {
	g.GET("/rooms/:id/availability", h.RoomAvailability)

	bookings := g.Group("/bookings")
	bookings.POST("", optionalAuthMiddleware, h.Create)

	member := bookings.Group("", authMiddleware)
	{
		member.GET("/mine", h.Mine)
		member.GET("/:id", h.Get)
		member.POST("/:id/cancel", h.Cancel)
		member.GET("/:id/invoice", h.Invoice)
	}

	staff := bookings.Group("", authMiddleware, staffMiddleware)
	{
		staff.GET("", h.List)
		staff.GET("/upcoming", h.Upcoming)
		staff.PATCH("/:id", h.Update)
		staff.POST("/:id/resend-confirmation", h.ResendConfirmation)
	}
}
