package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quizclash/services"
	"quizclash/store"
)

// errorCode pairs a stable client-facing code with the HTTP status it maps
// to. Domain outcomes surface only to the offending client; anything
// unmapped is an infrastructure failure and stays generic.
var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{store.ErrRoomNotFound, http.StatusNotFound, "room_not_found"},
	{store.ErrRoomExists, http.StatusConflict, "room_exists"},
	{store.ErrGameAlreadyStarted, http.StatusConflict, "game_already_started"},
	{store.ErrRoomFull, http.StatusConflict, "room_full"},
	{store.ErrPlayerAlreadyInRoom, http.StatusConflict, "player_already_in_room"},
	{store.ErrPlayerNotInRoom, http.StatusConflict, "player_not_in_room"},
	{store.ErrNotEnoughPlayers, http.StatusConflict, "not_enough_players"},
	{store.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{store.ErrNoMoreRounds, http.StatusConflict, "no_more_rounds"},
	{store.ErrRoundNotActive, http.StatusConflict, "round_not_active"},
	{store.ErrRoundExpired, http.StatusConflict, "round_expired"},
	{store.ErrAlreadyAnswered, http.StatusConflict, "already_answered"},
	{store.ErrNoQuestion, http.StatusConflict, "no_question"},
	{services.ErrNotEnoughQuestions, http.StatusConflict, "not_enough_questions"},
	{services.ErrNotHost, http.StatusForbidden, "not_host"},
	{services.ErrInvalidGameType, http.StatusBadRequest, "invalid_game_type"},
	{services.ErrNotMatchmadeType, http.StatusBadRequest, "not_matchmade_type"},
	{services.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
}

func respondError(c *gin.Context, err error) {
	for _, mapping := range errorCodes {
		if errors.Is(err, mapping.err) {
			c.JSON(mapping.status, gin.H{"error": mapping.code, "message": mapping.err.Error()})
			return
		}
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "internal server error"})
}
