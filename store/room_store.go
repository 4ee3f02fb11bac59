package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quizclash/models"
)

const (
	roomKeyPrefix       = "room:"
	playerRoomKeyPrefix = "playerroom:"
)

func roomKey(roomID string) string {
	return roomKeyPrefix + roomID
}

func playerRoomKey(userID string) string {
	return playerRoomKeyPrefix + userID
}

// RoomStore owns the authoritative room records. All mutations run as atomic
// server-side scripts against the room's single serialized record; the store
// is the sole arbiter of who answered first.
type RoomStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRoomStore(rdb *redis.Client, ttl time.Duration) *RoomStore {
	return &RoomStore{rdb: rdb, ttl: ttl}
}

func (s *RoomStore) ttlMs() int64 {
	return s.ttl.Milliseconds()
}

func decodeRoom(raw string) (*models.GameRoom, error) {
	var room models.GameRoom
	if err := json.Unmarshal([]byte(raw), &room); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return &room, nil
}

// CreateRoom persists a freshly built room aggregate. The id is random, so a
// collision practically never happens; if it does the caller sees
// ErrRoomExists.
func (s *RoomStore) CreateRoom(ctx context.Context, room *models.GameRoom) error {
	if room.Players == nil {
		room.Players = []models.GamePlayer{}
	}
	raw, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal room: %w", err)
	}
	_, err = runScript(ctx, s.rdb, scriptCreateRoom, []string{roomKey(room.ID)}, raw, s.ttlMs())
	return err
}

// GetRoom reads a consistent snapshot of the room record.
func (s *RoomStore) GetRoom(ctx context.Context, roomID string) (*models.GameRoom, error) {
	raw, err := s.rdb.Get(ctx, roomKey(roomID)).Result()
	if err == redis.Nil {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	return decodeRoom(raw)
}

// JoinRoom appends the player, assigns the next color by join order, sets the
// host on first join and records the reverse index for reconnection.
func (s *RoomStore) JoinRoom(ctx context.Context, roomID, userID, displayName, photoURL string) (*models.GameRoom, *models.GamePlayer, error) {
	player := models.GamePlayer{
		UserID:      userID,
		DisplayName: displayName,
		PhotoURL:    photoURL,
		IsConnected: true,
	}
	playerJSON, err := json.Marshal(player)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal player: %w", err)
	}
	paletteJSON, err := json.Marshal(models.Palette)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal palette: %w", err)
	}

	payload, err := runScript(ctx, s.rdb, scriptJoinRoom,
		[]string{roomKey(roomID), playerRoomKey(userID)},
		playerJSON, paletteJSON, models.MaxPlayers, s.ttlMs())
	if err != nil {
		return nil, nil, err
	}

	room, err := decodeRoom(payloadString(payload, 0))
	if err != nil {
		return nil, nil, err
	}
	var joined models.GamePlayer
	if err := json.Unmarshal([]byte(payloadString(payload, 1)), &joined); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return room, &joined, nil
}

// LeaveRoom removes the player and their reverse-index entry. The host is
// reassigned to the next remaining player; a started room dropping below the
// minimum transitions to cancelled. The returned room is nil when the last
// player left and the record was deleted.
func (s *RoomStore) LeaveRoom(ctx context.Context, roomID, userID string) (*models.GameRoom, bool, error) {
	payload, err := runScript(ctx, s.rdb, scriptLeaveRoom,
		[]string{roomKey(roomID), playerRoomKey(userID)},
		userID, s.ttlMs())
	if err != nil {
		return nil, false, err
	}

	outcome := payloadString(payload, 1)
	if outcome == "deleted" {
		return nil, false, nil
	}
	room, err := decodeRoom(payloadString(payload, 0))
	if err != nil {
		return nil, false, err
	}
	return room, outcome == "cancelled", nil
}

func (s *RoomStore) SetPlayerReady(ctx context.Context, roomID, userID string, ready bool) (*models.GameRoom, error) {
	return s.setPlayerFlag(ctx, roomID, userID, "is_ready", ready)
}

func (s *RoomStore) SetPlayerConnected(ctx context.Context, roomID, userID string, connected bool) (*models.GameRoom, error) {
	return s.setPlayerFlag(ctx, roomID, userID, "is_connected", connected)
}

func (s *RoomStore) setPlayerFlag(ctx context.Context, roomID, userID, field string, value bool) (*models.GameRoom, error) {
	flag := "0"
	if value {
		flag = "1"
	}
	payload, err := runScript(ctx, s.rdb, scriptSetPlayerFlag,
		[]string{roomKey(roomID)},
		userID, field, flag, s.ttlMs())
	if err != nil {
		return nil, err
	}
	return decodeRoom(payloadString(payload, 0))
}

// StartGame moves the room out of the waiting state, stamps the start time
// and stores the dealt question list.
func (s *RoomStore) StartGame(ctx context.Context, roomID string, questions []models.GameQuestion, now time.Time) (*models.GameRoom, error) {
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("marshal questions: %w", err)
	}
	payload, err := runScript(ctx, s.rdb, scriptStartGame,
		[]string{roomKey(roomID)},
		questionsJSON, now.UnixMilli(), s.ttlMs())
	if err != nil {
		return nil, err
	}
	return decodeRoom(payloadString(payload, 0))
}

// StartNextRound advances to the next round, fixes the deadline as
// now+duration and clears every player's answer and per-round score. The
// returned question has its correct-option field stripped.
func (s *RoomStore) StartNextRound(ctx context.Context, roomID string, now time.Time, duration time.Duration) (*models.GameRoom, *models.GameQuestion, error) {
	payload, err := runScript(ctx, s.rdb, scriptStartNextRound,
		[]string{roomKey(roomID)},
		now.UnixMilli(), duration.Milliseconds(), s.ttlMs())
	if err != nil {
		return nil, nil, err
	}

	room, err := decodeRoom(payloadString(payload, 0))
	if err != nil {
		return nil, nil, err
	}
	var question models.GameQuestion
	if err := json.Unmarshal([]byte(payloadString(payload, 1)), &question); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return room, &question, nil
}

// SubmitAnswer records the player's answer with its response time. The
// deadline check runs against the same snapshot as the write, so a late
// submission deterministically fails with ErrRoundExpired even before any
// timer fires. The returned flag reports whether every connected player has
// now answered.
func (s *RoomStore) SubmitAnswer(ctx context.Context, roomID, userID, answer string, now time.Time) (*models.GameRoom, bool, error) {
	payload, err := runScript(ctx, s.rdb, scriptSubmitAnswer,
		[]string{roomKey(roomID)},
		userID, answer, now.UnixMilli(), s.ttlMs())
	if err != nil {
		return nil, false, err
	}
	room, err := decodeRoom(payloadString(payload, 0))
	if err != nil {
		return nil, false, err
	}
	return room, payloadInt(payload, 1) == 1, nil
}

// EndRound scores the round and transitions to round_ended in one atomic
// step: correct answers sorted by response time earn decreasing points,
// everyone else scores zero.
func (s *RoomStore) EndRound(ctx context.Context, roomID string) (*models.RoundResult, error) {
	payload, err := runScript(ctx, s.rdb, scriptEndRound,
		[]string{roomKey(roomID)},
		s.ttlMs(), models.ScoreMax, models.ScoreDecrement, models.ScoreMin)
	if err != nil {
		return nil, err
	}
	var result models.RoundResult
	if err := json.Unmarshal([]byte(payloadString(payload, 1)), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return &result, nil
}

// EndGame computes the final standings, then deletes the room record and
// every player's reverse-index entry.
func (s *RoomStore) EndGame(ctx context.Context, roomID string) (*models.GameResult, error) {
	payload, err := runScript(ctx, s.rdb, scriptEndGame,
		[]string{roomKey(roomID)},
		playerRoomKeyPrefix)
	if err != nil {
		return nil, err
	}
	var result models.GameResult
	if err := json.Unmarshal([]byte(payloadString(payload, 0)), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return &result, nil
}

// RoomIDByPlayer resolves the reverse index used for reconnection. Returns
// "" when the player is in no room.
func (s *RoomStore) RoomIDByPlayer(ctx context.Context, userID string) (string, error) {
	roomID, err := s.rdb.Get(ctx, playerRoomKey(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reverse lookup: %w", err)
	}
	return roomID, nil
}

// DeleteRoom tears a room down outside the normal end-game path (e.g. a
// matched group that never materialized). Reverse-index entries of any
// players present are removed too.
func (s *RoomStore) DeleteRoom(ctx context.Context, roomID string) error {
	room, err := s.GetRoom(ctx, roomID)
	if err == ErrRoomNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	keys := []string{roomKey(roomID)}
	for _, p := range room.Players {
		keys = append(keys, playerRoomKey(p.UserID))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}
