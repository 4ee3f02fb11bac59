package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"quizclash/config"
	"quizclash/store"
)

const timerCallbackTimeout = 10 * time.Second

// roundDriver is what a firing timer does: the scheduler owns deadlines, the
// round service owns the transitions behind them.
type roundDriver interface {
	beginRound(ctx context.Context, roomID string) error
	completeRound(ctx context.Context, roomID string) (lastRound bool, err error)
	finishGame(ctx context.Context, roomID string) error
}

// RoundScheduler owns the wall-clock deadlines of every room: first-round
// delay, round duration, inter-round delay and game-end delay. Timers are
// keyed by room id, never by round number, and starting a new one supersedes
// any pending one for that room, so a stale timer from a prior round can
// never fire against the current round. Correctness of the transitions
// themselves is delegated to the store's atomic scripts; a callback that
// fires after its phase already ended is simply rejected there.
type RoundScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	driver roundDriver
	timing config.Timing
	log    zerolog.Logger
}

func NewRoundScheduler(timing config.Timing, log zerolog.Logger) *RoundScheduler {
	return &RoundScheduler{
		timers: make(map[string]*time.Timer),
		timing: timing,
		log:    log.With().Str("component", "scheduler").Logger(),
	}
}

// ScheduleFirstRound starts round one after the fixed post-start delay.
func (s *RoundScheduler) ScheduleFirstRound(roomID string) {
	s.schedule(roomID, s.timing.FirstRoundDelay, func(ctx context.Context) {
		s.runStartRound(ctx, roomID)
	})
}

// ScheduleRoundEnd ends the current round when its duration elapses.
func (s *RoundScheduler) ScheduleRoundEnd(roomID string, duration time.Duration) {
	s.schedule(roomID, duration, func(ctx context.Context) {
		s.runEndRound(ctx, roomID)
	})
}

// ForceEndRound cancels the pending round-end timer and performs the
// end-of-round logic immediately; used when every connected player has
// answered so rounds finish early. If a timer-driven end won the race, the
// store's status check absorbs the duplicate.
func (s *RoundScheduler) ForceEndRound(roomID string) {
	s.CancelRoundTimer(roomID)
	ctx, cancel := context.WithTimeout(context.Background(), timerCallbackTimeout)
	defer cancel()
	s.runEndRound(ctx, roomID)
}

// CancelRoundTimer drops the room's pending timer without acting.
func (s *RoundScheduler) CancelRoundTimer(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[roomID]; ok {
		timer.Stop()
		delete(s.timers, roomID)
	}
}

// schedule arms the single pending timer for the room, stopping any prior
// one. The callback releases its bookkeeping entry before running so a
// failed transition never wedges the room.
func (s *RoundScheduler) schedule(roomID string, delay time.Duration, fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.timers[roomID]; ok {
		existing.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.timers[roomID] == timer {
			delete(s.timers, roomID)
		}
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), timerCallbackTimeout)
		defer cancel()
		fn(ctx)
	})
	s.timers[roomID] = timer
}

func (s *RoundScheduler) runStartRound(ctx context.Context, roomID string) {
	if err := s.driver.beginRound(ctx, roomID); err != nil {
		s.log.Error().Err(err).Str("room_id", roomID).Msg("failed to start round")
		return
	}
	s.ScheduleRoundEnd(roomID, s.timing.RoundDuration)
}

func (s *RoundScheduler) runEndRound(ctx context.Context, roomID string) {
	lastRound, err := s.driver.completeRound(ctx, roomID)
	if err != nil {
		if errors.Is(err, store.ErrRoundNotActive) || errors.Is(err, store.ErrRoomNotFound) {
			// another path already ended the round or tore the room down
			s.log.Debug().Str("room_id", roomID).Msg("round already ended")
		} else {
			s.log.Error().Err(err).Str("room_id", roomID).Msg("failed to end round")
		}
		return
	}
	if lastRound {
		s.schedule(roomID, s.timing.GameEndDelay, func(ctx context.Context) {
			s.runEndGame(ctx, roomID)
		})
	} else {
		s.schedule(roomID, s.timing.InterRoundDelay, func(ctx context.Context) {
			s.runStartRound(ctx, roomID)
		})
	}
}

func (s *RoundScheduler) runEndGame(ctx context.Context, roomID string) {
	if err := s.driver.finishGame(ctx, roomID); err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			s.log.Debug().Str("room_id", roomID).Msg("room already gone")
			return
		}
		s.log.Error().Err(err).Str("room_id", roomID).Msg("failed to end game")
	}
}

// pendingTimers reports the number of armed timers; test hook.
func (s *RoundScheduler) pendingTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
