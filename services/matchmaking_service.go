package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"quizclash/config"
	"quizclash/models"
	"quizclash/store"
)

// MatchmakingService groups anonymous players into new rooms. The atomic
// add-and-check step lives in the store; room creation and the joins for a
// matched group happen afterward as best-effort work, accepting the small
// window where a matched player leaves before joining.
type MatchmakingService struct {
	queue    *store.MatchmakingStore
	rooms    *store.RoomStore
	profiles UserProfileSource
	notifier Notifier
	roomSvc  *RoomService
	rounds   *RoundService
	timing   config.Timing
	log      zerolog.Logger
}

func NewMatchmakingService(queue *store.MatchmakingStore, rooms *store.RoomStore, profiles UserProfileSource, notifier Notifier, roomSvc *RoomService, rounds *RoundService, timing config.Timing, log zerolog.Logger) *MatchmakingService {
	return &MatchmakingService{
		queue:    queue,
		rooms:    rooms,
		profiles: profiles,
		notifier: notifier,
		roomSvc:  roomSvc,
		rounds:   rounds,
		timing:   timing,
		log:      log.With().Str("component", "matchmaking").Logger(),
	}
}

// JoinQueue queues the player and, when the queue reaches the required count
// for the game type, forms the match and starts its game.
func (s *MatchmakingService) JoinQueue(ctx context.Context, userID string, gameType models.GameType, language string) (*models.MatchmakingResult, error) {
	if !gameType.Valid() || language == "" {
		return nil, ErrInvalidGameType
	}
	if !gameType.Random() {
		return nil, ErrNotMatchmadeType
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	entry := models.MatchmakingEntry{
		UserID:      userID,
		DisplayName: profile.DisplayName,
		PhotoURL:    profile.PhotoURL,
		JoinedAt:    time.Now().UnixMilli(),
	}

	result, err := s.queue.JoinQueue(ctx, entry, gameType, language)
	if err != nil {
		return nil, err
	}
	if !result.Matched {
		s.notifier.MatchmakingUpdate(userID, result.Position)
		return result, nil
	}

	room, err := s.createMatchedRoom(ctx, gameType, language, result.Players)
	if err != nil {
		s.log.Error().Err(err).Str("game_type", string(gameType)).Msg("failed to set up matched room")
		for _, p := range result.Players {
			s.notifier.Error("", p.UserID, "matchmaking_failed", "could not set up the matched game")
		}
		return nil, err
	}
	result.RoomID = room.ID

	s.log.Info().Str("room_id", room.ID).Int("players", len(result.Players)).Msg("match formed")
	s.notifier.MatchFound(room.ID, result.Players)

	if _, err := s.rounds.StartGame(ctx, room.ID, ""); err != nil {
		s.log.Error().Err(err).Str("room_id", room.ID).Msg("failed to start matched game")
		s.notifier.Error(room.ID, "", "start_failed", "could not start the matched game")
	}
	return result, nil
}

// createMatchedRoom creates the room and joins each matched player with the
// profile captured at queue time. A player who already left joins nothing;
// if fewer than the room minimum made it, the room is torn down.
func (s *MatchmakingService) createMatchedRoom(ctx context.Context, gameType models.GameType, language string, players []models.MatchmakingEntry) (*models.GameRoom, error) {
	room, err := s.roomSvc.CreateRoom(ctx, gameType, language, s.timing.TotalRounds)
	if err != nil {
		return nil, err
	}

	joined := 0
	for _, p := range players {
		if _, _, err := s.rooms.JoinRoom(ctx, room.ID, p.UserID, p.DisplayName, p.PhotoURL); err != nil {
			s.log.Warn().Err(err).Str("room_id", room.ID).Str("user_id", p.UserID).Msg("matched player failed to join")
			continue
		}
		joined++
	}
	if joined < models.MinPlayers {
		if err := s.rooms.DeleteRoom(ctx, room.ID); err != nil {
			s.log.Error().Err(err).Str("room_id", room.ID).Msg("failed to tear down under-filled room")
		}
		return nil, fmt.Errorf("only %d of %d matched players joined", joined, len(players))
	}
	return room, nil
}

// LeaveQueue removes the player from the queue; leaving a queue one is not
// in is a no-op.
func (s *MatchmakingService) LeaveQueue(ctx context.Context, userID string, gameType models.GameType, language string) error {
	if !gameType.Valid() {
		return ErrInvalidGameType
	}
	return s.queue.LeaveQueue(ctx, userID, gameType, language)
}

// InQueue reports whether the player is currently queued.
func (s *MatchmakingService) InQueue(ctx context.Context, userID string) (bool, error) {
	return s.queue.IsInQueue(ctx, userID)
}
