package services

import (
	"context"
	"errors"
	"time"

	"quizclash/models"
)

// Errors raised by the orchestration layer itself; store-level outcomes pass
// through untouched.
var (
	ErrNotHost            = errors.New("only the host can start the game")
	ErrInvalidGameType    = errors.New("invalid game type")
	ErrNotMatchmadeType   = errors.New("game type is not matchmade")
	ErrNotEnoughQuestions = errors.New("not enough questions")
)

// Notifier is the one-way notification sink. The core calls these at state
// changes and never reads a response; implementations must not block game
// flow.
type Notifier interface {
	RoomCreated(room *models.GameRoom)
	PlayerJoined(roomID string, player *models.GamePlayer)
	PlayerLeft(roomID, userID string)
	PlayerReadyChanged(roomID, userID string, ready bool)
	PlayerDisconnected(roomID, userID string)
	PlayerReconnected(roomID, userID string)
	GameStarting(room *models.GameRoom)
	RoundStarted(roomID string, round int, question *models.GameQuestion, endsAt time.Time)
	PlayerAnswered(roomID, userID string)
	RoundEnded(roomID string, result *models.RoundResult)
	GameEnded(roomID string, result *models.GameResult)
	MatchFound(roomID string, players []models.MatchmakingEntry)
	MatchmakingUpdate(userID string, position int)
	Error(roomID, userID, code, message string)
}

// QuestionSource supplies bank questions for a new game. Implementations
// return fewer rows than requested only by failing with
// ErrNotEnoughQuestions.
type QuestionSource interface {
	GetRandomQuestions(ctx context.Context, language string, count int) ([]models.Question, error)
}

// UserProfileSource resolves a user id to display data for join and invite
// flows.
type UserProfileSource interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
}

// RewardSink consumes final standings when a game ends. Failures here never
// affect the already-announced result.
type RewardSink interface {
	GameFinished(ctx context.Context, result *models.GameResult) error
}
