package api

import (
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hoteljan/hotel-booking/internal/auth"
	"github.com/hoteljan/hotel-booking/internal/booking"
	bookingHttp "github.com/hoteljan/hotel-booking/internal/booking/http"
	"github.com/hoteljan/hotel-booking/internal/file"
	fileHttp "github.com/hoteljan/hotel-booking/internal/file/http"
	"github.com/hoteljan/hotel-booking/internal/room"
	roomHttp "github.com/hoteljan/hotel-booking/internal/room/http"
	"github.com/hoteljan/hotel-booking/internal/user"
	userHttp "github.com/hoteljan/hotel-booking/internal/user/http"
)

// Config holds the services the router exposes.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	UserService    user.Service
	RoomService    room.Service
	FileService    file.Service
	BookingService booking.Service
	JWTManager     *auth.JWTManager
	// AccessLogger defaults to a logger on stdout.
	AccessLogger *log.Logger
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (CORS, access log, auth) and registers the routes of each module under /v1.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	accessLogger := cfg.AccessLogger
	if accessLogger == nil {
		accessLogger = log.New(os.Stdout, "", log.LstdFlags)
	}
	r.Use(RequestID(), TraceContext(), AccessLog(accessLogger), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000", // web frontend
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", RequestIDHeader, "traceparent", "tracestate"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", RequestIDHeader}
	if len(corsConfig.AllowOrigins) > 0 {
		r.Use(cors.New(corsConfig))
	}

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	optionalAuthMiddleware := auth.OptionalAuth(cfg.JWTManager)
	staffMiddleware := auth.RequireRole(auth.RoleStaff)
	managerMiddleware := auth.RequireRole(auth.RoleManager)
	adminMiddleware := auth.RequireRole(auth.RoleAdmin)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	fileHandler := fileHttp.NewHandler(cfg.FileService)
	roomHandler := roomHttp.NewHandler(cfg.RoomService, fileHandler)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	v1 := r.Group("/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler)
		roomHttp.RegisterRoutes(v1, roomHandler, authMiddleware, managerMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, optionalAuthMiddleware, staffMiddleware)
	}

	return r
}

// splitOrigins parses the comma separated PROD_ORIGINS value.
func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
