package main

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"quizclash/config"
	"quizclash/handlers"
	"quizclash/models"
	"quizclash/routes"
	"quizclash/services"
	"quizclash/store"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.PlayerStats{},
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Initialize Redis-backed stores
	redisClient := config.InitRedis(cfg)
	roomStore := store.NewRoomStore(redisClient, cfg.Timing.RoomTTL)
	matchmakingStore := store.NewMatchmakingStore(redisClient, cfg.Timing.QueueTTL)

	// Initialize WebSocket hub (the notification sink)
	hub := services.NewHub(logger)
	go hub.Run()

	// Initialize services
	questionService := services.NewQuestionService(db)
	userService := services.NewUserService(db)
	roundService := services.NewRoundService(roomStore, questionService, hub, userService, cfg.Timing, logger)
	roomService := services.NewRoomService(roomStore, userService, hub, roundService, cfg.Timing, logger)
	matchmakingService := services.NewMatchmakingService(matchmakingStore, roomStore, userService, hub, roomService, roundService, cfg.Timing, logger)
	hub.SetPresence(roomService)

	// Initialize handlers
	roomHandler := handlers.NewRoomHandler(roomService, roundService, logger)
	matchmakingHandler := handlers.NewMatchmakingHandler(matchmakingService, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	questionHandler := handlers.NewQuestionHandler(questionService, logger)

	// Setup Gin router
	router := gin.Default()
	router.Use(cors.Default())

	routes.SetupRoutes(router, roomHandler, matchmakingHandler, userHandler, questionHandler, hub, roomService, cfg.JWTSecret, logger)

	// Start server
	logger.Info().Str("port", cfg.Port).Msg("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
