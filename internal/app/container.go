package app

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hoteljan/hotel-booking/internal/api"
	"github.com/hoteljan/hotel-booking/internal/auth"
	"github.com/hoteljan/hotel-booking/internal/booking"
	"github.com/hoteljan/hotel-booking/internal/file"
	"github.com/hoteljan/hotel-booking/internal/invoice"
	"github.com/hoteljan/hotel-booking/internal/notify"
	"github.com/hoteljan/hotel-booking/internal/pkg/storage"
	"github.com/hoteljan/hotel-booking/internal/room"
	"github.com/hoteljan/hotel-booking/internal/user"
)

const (
	thumbnailMaxWidth  = 400
	thumbnailMaxHeight = 300
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	StoragePath  string
	RoomCacheTTL time.Duration
	HotelName    string
	// Publisher defaults to notify.LogPublisher.
	Publisher notify.Publisher
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Publisher  notify.Publisher
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	publisher := cfg.Publisher
	if publisher == nil {
		log.Println("no message broker configured, booking confirmations are only logged")
		publisher = notify.LogPublisher{}
	}

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// File Module
	fileRepo := file.NewPgxRepository(cfg.DBPool)
	fileService := file.NewService(fileRepo, store, storage.NewImageProcessor(thumbnailMaxWidth, thumbnailMaxHeight))

	// Room Module
	roomRepo := room.NewPgxRepository(cfg.DBPool)
	roomService := room.NewService(roomRepo, fileService, cfg.RoomCacheTTL)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	invoices := invoice.NewRenderer(invoice.DefaultHotel(cfg.HotelName))
	bookingService := booking.NewService(bookingRepo, roomService, publisher, invoices)

	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		UserService:    userService,
		RoomService:    roomService,
		FileService:    fileService,
		BookingService: bookingService,
		JWTManager:     jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Publisher:  publisher,
	}, nil
}
