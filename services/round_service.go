package services

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"quizclash/config"
	"quizclash/models"
	"quizclash/store"
)

// RoundService turns domain intent (start game, submit answer, end round)
// into atomic store calls, enriches them with question data and drives the
// round scheduler.
type RoundService struct {
	rooms     *store.RoomStore
	questions QuestionSource
	notifier  Notifier
	rewards   RewardSink
	scheduler *RoundScheduler
	timing    config.Timing
	log       zerolog.Logger
}

func NewRoundService(rooms *store.RoomStore, questions QuestionSource, notifier Notifier, rewards RewardSink, timing config.Timing, log zerolog.Logger) *RoundService {
	s := &RoundService{
		rooms:     rooms,
		questions: questions,
		notifier:  notifier,
		rewards:   rewards,
		timing:    timing,
		log:       log.With().Str("component", "rounds").Logger(),
	}
	s.scheduler = NewRoundScheduler(timing, log)
	s.scheduler.driver = s
	return s
}

// Scheduler exposes the per-room timer unit for cleanup paths.
func (s *RoundService) Scheduler() *RoundScheduler {
	return s.scheduler
}

// StartGame deals the question list and moves the room into the starting
// state. requestedBy is the acting user for host-initiated starts; the empty
// string skips the host check for matchmade rooms started by the system.
func (s *RoundService) StartGame(ctx context.Context, roomID, requestedBy string) (*models.GameRoom, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if requestedBy != "" && room.HostPlayerID != requestedBy {
		return nil, ErrNotHost
	}

	bank, err := s.questions.GetRandomQuestions(ctx, room.Language, room.TotalRounds)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	dealt := make([]models.GameQuestion, len(bank))
	for i, q := range bank {
		dealt[i] = models.DealQuestion(q, i+1, rng)
	}

	started, err := s.rooms.StartGame(ctx, roomID, dealt, time.Now())
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("room_id", roomID).Int("rounds", started.TotalRounds).Msg("game starting")
	s.notifier.GameStarting(started)
	s.scheduler.ScheduleFirstRound(roomID)
	return started, nil
}

// SubmitAnswer records the player's answer. When the store reports that
// every connected player has answered, the pending round-end timer is
// superseded and the round ends immediately.
func (s *RoundService) SubmitAnswer(ctx context.Context, roomID, userID, answer string) error {
	_, allAnswered, err := s.rooms.SubmitAnswer(ctx, roomID, userID, answer, time.Now())
	if err != nil {
		return err
	}
	s.notifier.PlayerAnswered(roomID, userID)
	if allAnswered {
		s.scheduler.ForceEndRound(roomID)
	}
	return nil
}

// notifyInfraFailure announces a non-domain failure to the whole room. Domain
// outcomes are races with another path that already did the work and stay
// quiet.
func (s *RoundService) notifyInfraFailure(roomID string, err error) {
	if store.IsDomainError(err) {
		return
	}
	s.notifier.Error(roomID, "", "internal", "failed to advance the game")
}

func (s *RoundService) beginRound(ctx context.Context, roomID string) error {
	room, question, err := s.rooms.StartNextRound(ctx, roomID, time.Now(), s.timing.RoundDuration)
	if err != nil {
		s.notifyInfraFailure(roomID, err)
		return err
	}
	endsAt := time.UnixMilli(room.RoundEndsAt)
	s.log.Info().Str("room_id", roomID).Int("round", room.CurrentRound).Time("ends_at", endsAt).Msg("round started")
	s.notifier.RoundStarted(roomID, room.CurrentRound, question, endsAt)
	return nil
}

func (s *RoundService) completeRound(ctx context.Context, roomID string) (bool, error) {
	result, err := s.rooms.EndRound(ctx, roomID)
	if err != nil {
		s.notifyInfraFailure(roomID, err)
		return false, err
	}
	s.log.Info().Str("room_id", roomID).Int("round", result.Round).Msg("round ended")
	s.notifier.RoundEnded(roomID, result)
	return result.LastRound, nil
}

func (s *RoundService) finishGame(ctx context.Context, roomID string) error {
	result, err := s.rooms.EndGame(ctx, roomID)
	if err != nil {
		s.notifyInfraFailure(roomID, err)
		return err
	}
	s.log.Info().Str("room_id", roomID).Bool("cancelled", result.Cancelled).Msg("game ended")
	s.notifier.GameEnded(roomID, result)
	if err := s.rewards.GameFinished(ctx, result); err != nil {
		// standings are already announced; reward bookkeeping is downstream
		s.log.Error().Err(err).Str("room_id", roomID).Msg("reward sink failed")
	}
	return nil
}
