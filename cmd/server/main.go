package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/mosesmmoisebidth/rod-backend/internal/cache"
	"github.com/mosesmmoisebidth/rod-backend/internal/handlers"
	"github.com/mosesmmoisebidth/rod-backend/internal/handlers/ws"
	"github.com/mosesmmoisebidth/rod-backend/internal/middleware"
	"github.com/mosesmmoisebidth/rod-backend/internal/repository"
	"github.com/mosesmmoisebidth/rod-backend/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Rod Chat Backend",
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache (best-effort; the app runs without it)
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, os.Getenv("REDIS_PASSWORD"), redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	roomCache := cache.NewRoomCache(redisCache)
	presenceCache := cache.NewPresenceCache(redisCache)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// The hub is the broker capability: per-user private channels plus
	// shared topics.
	hub := ws.NewHub()

	// Initialize services
	userService := service.NewUserService(userRepo)
	roomService := service.NewRoomService(roomRepo, membershipRepo, messageRepo, userRepo)
	membershipService := service.NewMembershipService(membershipRepo, roomRepo, userRepo)
	messageService := service.NewMessageService(messageRepo, roomRepo)
	fanoutService := service.NewFanoutService(messageService, membershipRepo, hub)
	presenceService := service.NewPresenceService(userRepo, presenceCache, hub)

	// Initialize handlers
	roomHandler := handlers.NewRoomHandler(roomService)
	membershipHandler := handlers.NewMembershipHandler(membershipService)
	messageHandler := handlers.NewMessageHandler(messageService, fanoutService, roomCache)
	userHandler := handlers.NewUserHandler(userService, presenceService)
	wsHandler := handlers.NewWebSocketHandler(hub, fanoutService, membershipService, presenceService, roomCache)

	api := app.Group("/api", middleware.OriginAllowed())

	// Protected routes
	protected := api.Group("/", middleware.AuthRequired(), limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
	}))

	protected.Get("/rooms/resolve", roomHandler.ResolveRoom)
	protected.Post("/rooms", roomHandler.CreateRoom)
	protected.Get("/rooms", roomHandler.ListUserRooms)
	protected.Get("/rooms/:id", roomHandler.GetRoom)
	protected.Put("/rooms/:id/name", roomHandler.RenameGroup)

	protected.Get("/rooms/:id/messages", messageHandler.ListRoomMessages)
	protected.Post("/rooms/:id/messages", messageHandler.SendMessage)
	protected.Post("/rooms/:id/read", membershipHandler.MarkRead)

	protected.Post("/rooms/:id/members", membershipHandler.AddMembers)
	protected.Delete("/rooms/:id/members/:username", membershipHandler.RemoveMember)
	protected.Put("/rooms/:id/members/:username/admin", membershipHandler.SetAdmin)

	protected.Get("/users/online", userHandler.ListOnline)
	protected.Get("/users/search", userHandler.SearchUsers)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(),
		middleware.AuthRequired(),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Rod chat backend is running",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
