package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"quizclash/middleware"
	"quizclash/services"
)

type UserHandler struct {
	users *services.UserService
	log   zerolog.Logger
}

func NewUserHandler(users *services.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

// GetStats returns the caller's accumulated game statistics.
func (h *UserHandler) GetStats(c *gin.Context) {
	stats, err := h.users.GetStats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetProfile returns the caller's display profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.users.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
