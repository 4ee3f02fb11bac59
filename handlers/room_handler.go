package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"quizclash/middleware"
	"quizclash/models"
	"quizclash/services"
)

type RoomHandler struct {
	rooms  *services.RoomService
	rounds *services.RoundService
	log    zerolog.Logger
}

func NewRoomHandler(rooms *services.RoomService, rounds *services.RoundService, log zerolog.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, rounds: rounds, log: log}
}

type CreateRoomRequest struct {
	GameType    models.GameType `json:"game_type" binding:"required"`
	Language    string          `json:"language" binding:"required"`
	TotalRounds int             `json:"total_rounds"`
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

type SetReadyRequest struct {
	Ready *bool `json:"ready" binding:"required"`
}

// sanitizeRoom strips the question list before a room leaves the server;
// clients only ever see the current round's options through round events.
func sanitizeRoom(room *models.GameRoom) *models.GameRoom {
	if room == nil {
		return nil
	}
	cleaned := *room
	cleaned.Questions = nil
	return &cleaned
}

// CreateRoom opens a friend room; random modes go through matchmaking.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	if req.GameType.Random() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not_friend_type", "message": "random games are created through matchmaking"})
		return
	}

	room, err := h.rooms.CreateRoom(c.Request.Context(), req.GameType, req.Language, req.TotalRounds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sanitizeRoom(room))
}

func (h *RoomHandler) JoinRoom(c *gin.Context) {
	roomID := c.Param("id")
	userID := middleware.UserID(c)

	room, player, err := h.rooms.JoinRoom(c.Request.Context(), roomID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": sanitizeRoom(room), "player": player})
}

func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	roomID := c.Param("id")
	userID := middleware.UserID(c)

	if err := h.rooms.LeaveRoom(c.Request.Context(), roomID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left room"})
}

func (h *RoomHandler) SetReady(c *gin.Context) {
	roomID := c.Param("id")
	userID := middleware.UserID(c)

	var req SetReadyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	if err := h.rooms.SetReady(c.Request.Context(), roomID, userID, *req.Ready); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ready state updated"})
}

// StartGame starts a friend room on behalf of its host.
func (h *RoomHandler) StartGame(c *gin.Context) {
	roomID := c.Param("id")
	userID := middleware.UserID(c)

	room, err := h.rounds.StartGame(c.Request.Context(), roomID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sanitizeRoom(room))
}

func (h *RoomHandler) SubmitAnswer(c *gin.Context) {
	roomID := c.Param("id")
	userID := middleware.UserID(c)

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	if err := h.rounds.SubmitAnswer(c.Request.Context(), roomID, userID, req.Answer); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "answer submitted"})
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.rooms.Reconnect(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sanitizeRoom(room))
}
