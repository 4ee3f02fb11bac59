package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"quizclash/handlers"
	"quizclash/middleware"
	"quizclash/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	roomHandler *handlers.RoomHandler,
	matchmakingHandler *handlers.MatchmakingHandler,
	userHandler *handlers.UserHandler,
	questionHandler *handlers.QuestionHandler,
	hub *services.Hub,
	roomService *services.RoomService,
	jwtSecret string,
	log zerolog.Logger,
) {
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(jwtSecret))
	{
		rooms := api.Group("/rooms")
		{
			rooms.POST("", roomHandler.CreateRoom)
			rooms.GET("/me", roomHandler.GetRoom)
			rooms.POST("/:id/join", roomHandler.JoinRoom)
			rooms.POST("/:id/leave", roomHandler.LeaveRoom)
			rooms.POST("/:id/ready", roomHandler.SetReady)
			rooms.POST("/:id/start", roomHandler.StartGame)
			rooms.POST("/:id/answer", roomHandler.SubmitAnswer)
		}

		matchmaking := api.Group("/matchmaking")
		{
			matchmaking.POST("/join", matchmakingHandler.JoinQueue)
			matchmaking.POST("/leave", matchmakingHandler.LeaveQueue)
			matchmaking.GET("/status", matchmakingHandler.Status)
		}

		users := api.Group("/users")
		{
			users.GET("/me", userHandler.GetProfile)
			users.GET("/me/stats", userHandler.GetStats)
		}

		questions := api.Group("/questions")
		{
			questions.POST("", questionHandler.CreateQuestion)
			questions.GET("/count", questionHandler.CountQuestions)
		}
	}

	// Room event streams. A client must already be a member of the room it
	// subscribes to; presence tracking flips the connection flag on attach
	// and detach.
	ws := router.Group("/ws")
	ws.Use(middleware.AuthMiddleware(jwtSecret))
	{
		ws.GET("/rooms/:id", func(c *gin.Context) {
			roomID := c.Param("id")
			userID := middleware.UserID(c)

			room, err := roomService.Reconnect(c.Request.Context(), userID)
			if err != nil || room.ID != roomID {
				c.JSON(http.StatusForbidden, gin.H{"error": "not_in_room"})
				return
			}

			conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
			if err != nil {
				log.Error().Err(err).Str("room_id", roomID).Msg("websocket upgrade failed")
				return
			}
			hub.RegisterClient(conn, roomID, userID)
		})

		// lobby stream for matchmaking updates only
		ws.GET("/lobby", func(c *gin.Context) {
			conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
			if err != nil {
				log.Error().Err(err).Msg("websocket upgrade failed")
				return
			}
			hub.RegisterClient(conn, "", middleware.UserID(c))
		})
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
