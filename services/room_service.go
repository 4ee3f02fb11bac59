package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"quizclash/config"
	"quizclash/models"
	"quizclash/store"
)

// RoomService orchestrates the room lifecycle outside of rounds: creation,
// joining, leaving and the player flags. It never mutates a room in process;
// every change goes through the store's atomic operations.
type RoomService struct {
	rooms    *store.RoomStore
	profiles UserProfileSource
	notifier Notifier
	rounds   *RoundService
	timing   config.Timing
	log      zerolog.Logger
}

func NewRoomService(rooms *store.RoomStore, profiles UserProfileSource, notifier Notifier, rounds *RoundService, timing config.Timing, log zerolog.Logger) *RoomService {
	return &RoomService{
		rooms:    rooms,
		profiles: profiles,
		notifier: notifier,
		rounds:   rounds,
		timing:   timing,
		log:      log.With().Str("component", "rooms").Logger(),
	}
}

// CreateRoom builds an empty room with a random 128-bit id. totalRounds of 0
// picks the configured default.
func (s *RoomService) CreateRoom(ctx context.Context, gameType models.GameType, language string, totalRounds int) (*models.GameRoom, error) {
	if !gameType.Valid() || language == "" {
		return nil, ErrInvalidGameType
	}
	if totalRounds <= 0 {
		totalRounds = s.timing.TotalRounds
	}

	room := &models.GameRoom{
		ID:          uuid.NewString(),
		GameType:    gameType,
		Status:      models.StatusWaitingForPlayers,
		Language:    language,
		TotalRounds: totalRounds,
		CreatedAt:   time.Now().UnixMilli(),
		Players:     []models.GamePlayer{},
	}
	if err := s.rooms.CreateRoom(ctx, room); err != nil {
		return nil, err
	}

	s.log.Info().Str("room_id", room.ID).Str("game_type", string(gameType)).Msg("room created")
	s.notifier.RoomCreated(room)
	return room, nil
}

// JoinRoom resolves the player's profile and appends them to the room.
func (s *RoomService) JoinRoom(ctx context.Context, roomID, userID string) (*models.GameRoom, *models.GamePlayer, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	room, player, err := s.rooms.JoinRoom(ctx, roomID, userID, profile.DisplayName, profile.PhotoURL)
	if err != nil {
		return nil, nil, err
	}
	s.notifier.PlayerJoined(roomID, player)
	return room, player, nil
}

// LeaveRoom removes the player. When the room drops below the minimum
// mid-game it is cancelled: the pending timer goes away and the game is
// finished immediately so the remaining player still gets valid standings.
func (s *RoomService) LeaveRoom(ctx context.Context, roomID, userID string) error {
	room, cancelled, err := s.rooms.LeaveRoom(ctx, roomID, userID)
	if err != nil {
		return err
	}
	s.notifier.PlayerLeft(roomID, userID)

	if room == nil {
		// last player left, room record is gone
		s.rounds.Scheduler().CancelRoundTimer(roomID)
		return nil
	}
	if cancelled {
		s.rounds.Scheduler().CancelRoundTimer(roomID)
		if err := s.rounds.finishGame(ctx, roomID); err != nil {
			s.log.Error().Err(err).Str("room_id", roomID).Msg("failed to finish cancelled game")
		}
	}
	return nil
}

func (s *RoomService) SetReady(ctx context.Context, roomID, userID string, ready bool) error {
	if _, err := s.rooms.SetPlayerReady(ctx, roomID, userID, ready); err != nil {
		return err
	}
	s.notifier.PlayerReadyChanged(roomID, userID, ready)
	return nil
}

// Reconnect resolves the room a player is currently in.
func (s *RoomService) Reconnect(ctx context.Context, userID string) (*models.GameRoom, error) {
	roomID, err := s.rooms.RoomIDByPlayer(ctx, userID)
	if err != nil {
		return nil, err
	}
	if roomID == "" {
		return nil, store.ErrRoomNotFound
	}
	return s.rooms.GetRoom(ctx, roomID)
}

// HandleConnect and HandleDisconnect track transport presence: the
// connection flag is rewritten through the same atomic path as any other
// room change, never as a side-channel write.

func (s *RoomService) HandleConnect(roomID, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), timerCallbackTimeout)
	defer cancel()
	if _, err := s.rooms.SetPlayerConnected(ctx, roomID, userID, true); err != nil {
		if store.IsDomainError(err) {
			return
		}
		s.log.Error().Err(err).Str("room_id", roomID).Str("user_id", userID).Msg("failed to mark connected")
		return
	}
	s.notifier.PlayerReconnected(roomID, userID)
}

func (s *RoomService) HandleDisconnect(roomID, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), timerCallbackTimeout)
	defer cancel()
	if _, err := s.rooms.SetPlayerConnected(ctx, roomID, userID, false); err != nil {
		if store.IsDomainError(err) {
			return
		}
		s.log.Error().Err(err).Str("room_id", roomID).Str("user_id", userID).Msg("failed to mark disconnected")
		return
	}
	s.notifier.PlayerDisconnected(roomID, userID)
}
