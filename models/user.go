package models

import (
	"time"

	"gorm.io/gorm"
)

// User mirrors the externally managed identity record; this service only
// reads display data from it. IDs are issued by the identity provider.
type User struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	DisplayName string         `json:"display_name" gorm:"not null"`
	PhotoURL    string         `json:"photo_url"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// PlayerStats accumulates persistent per-user results written when a game
// ends.
type PlayerStats struct {
	UserID      string    `json:"user_id" gorm:"primaryKey"`
	GamesPlayed int       `json:"games_played" gorm:"not null;default:0"`
	Wins        int       `json:"wins" gorm:"not null;default:0"`
	TotalScore  int       `json:"total_score" gorm:"not null;default:0"`
	Coins       int       `json:"coins" gorm:"not null;default:0"`
	UpdatedAt   time.Time `json:"updated_at"`
}
