package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"quizclash/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserService resolves user profiles for join and invite flows and acts as
// the reward sink that turns final standings into persistent statistics.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

// GameFinished credits every participant's games-played counter and score
// total and the winner's win counter. Cancelled games count as played but
// produce no winner.
func (s *UserService) GameFinished(ctx context.Context, result *models.GameResult) error {
	winner := result.Winner()
	for _, standing := range result.Standings {
		stats := models.PlayerStats{UserID: standing.UserID}
		if err := s.db.WithContext(ctx).FirstOrCreate(&stats, models.PlayerStats{UserID: standing.UserID}).Error; err != nil {
			return fmt.Errorf("init stats for %s: %w", standing.UserID, err)
		}

		updates := map[string]interface{}{
			"games_played": gorm.Expr("games_played + 1"),
			"total_score":  gorm.Expr("total_score + ?", standing.Score),
			"coins":        gorm.Expr("coins + ?", standing.Score/10),
		}
		if winner != nil && !result.Cancelled && standing.UserID == winner.UserID {
			updates["wins"] = gorm.Expr("wins + 1")
		}
		err := s.db.WithContext(ctx).
			Model(&models.PlayerStats{}).
			Where("user_id = ?", standing.UserID).
			Updates(updates).Error
		if err != nil {
			return fmt.Errorf("update stats for %s: %w", standing.UserID, err)
		}
	}
	return nil
}

// GetStats returns a user's accumulated results.
func (s *UserService) GetStats(ctx context.Context, userID string) (*models.PlayerStats, error) {
	var stats models.PlayerStats
	err := s.db.WithContext(ctx).First(&stats, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.PlayerStats{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	return &stats, nil
}
