package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"quizclash/middleware"
	"quizclash/models"
	"quizclash/services"
)

type MatchmakingHandler struct {
	matchmaking *services.MatchmakingService
	log         zerolog.Logger
}

func NewMatchmakingHandler(matchmaking *services.MatchmakingService, log zerolog.Logger) *MatchmakingHandler {
	return &MatchmakingHandler{matchmaking: matchmaking, log: log}
}

type QueueRequest struct {
	GameType models.GameType `json:"game_type" binding:"required"`
	Language string          `json:"language" binding:"required"`
}

func (h *MatchmakingHandler) JoinQueue(c *gin.Context) {
	var req QueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}

	result, err := h.matchmaking.JoinQueue(c.Request.Context(), middleware.UserID(c), req.GameType, req.Language)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *MatchmakingHandler) LeaveQueue(c *gin.Context) {
	var req QueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}

	if err := h.matchmaking.LeaveQueue(c.Request.Context(), middleware.UserID(c), req.GameType, req.Language); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left queue"})
}

func (h *MatchmakingHandler) Status(c *gin.Context) {
	queued, err := h.matchmaking.InQueue(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"in_queue": queued})
}
