package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"quizclash/models"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func newTestRoomStore(t *testing.T) *RoomStore {
	t.Helper()
	return NewRoomStore(newTestRedis(t), 2*time.Hour)
}

func newTestMatchmakingStore(t *testing.T) *MatchmakingStore {
	t.Helper()
	return NewMatchmakingStore(newTestRedis(t), 2*time.Hour)
}

func newWaitingRoom(totalRounds int) *models.GameRoom {
	return &models.GameRoom{
		ID:          "room-1",
		GameType:    models.GameTypeRandomDuel,
		Status:      models.StatusWaitingForPlayers,
		Language:    "en",
		TotalRounds: totalRounds,
		CreatedAt:   time.Now().UnixMilli(),
		Players:     []models.GamePlayer{},
	}
}

func testQuestions(total int, correct string) []models.GameQuestion {
	questions := make([]models.GameQuestion, total)
	for i := range questions {
		questions[i] = models.GameQuestion{
			QuestionID:    uint(i + 1),
			Round:         i + 1,
			Text:          "question",
			OptionA:       "alpha",
			OptionB:       "beta",
			OptionC:       "gamma",
			CorrectOption: correct,
		}
	}
	return questions
}

// createJoinedRoom creates a room and joins the given users in order.
func createJoinedRoom(t *testing.T, s *RoomStore, totalRounds int, users ...string) *models.GameRoom {
	t.Helper()
	ctx := context.Background()
	room := newWaitingRoom(totalRounds)
	require.NoError(t, s.CreateRoom(ctx, room))
	var joined *models.GameRoom
	for _, user := range users {
		var err error
		joined, _, err = s.JoinRoom(ctx, room.ID, user, "player "+user, "")
		require.NoError(t, err)
	}
	return joined
}

// startRound starts the game and the first round with a generous deadline.
func startRound(t *testing.T, s *RoomStore, roomID string, totalRounds int, correct string, now time.Time) *models.GameRoom {
	t.Helper()
	ctx := context.Background()
	_, err := s.StartGame(ctx, roomID, testQuestions(totalRounds, correct), now)
	require.NoError(t, err)
	room, _, err := s.StartNextRound(ctx, roomID, now, 15*time.Second)
	require.NoError(t, err)
	return room
}
