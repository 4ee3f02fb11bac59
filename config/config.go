package config

import (
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port        string
	BindAddress string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	RedisHost   string
	RedisPort   string
	JWTSecret   string
	Timing      Timing
}

// Timing holds every wall-clock knob of the round lifecycle. Deadlines are
// computed from these once when a phase starts and never extended.
type Timing struct {
	FirstRoundDelay time.Duration
	RoundDuration   time.Duration
	InterRoundDelay time.Duration
	GameEndDelay    time.Duration
	RoomTTL         time.Duration
	QueueTTL        time.Duration
	TotalRounds     int
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		BindAddress: getEnv("BIND_ADDRESS", "localhost"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "quizclash"),
		DBPassword:  getEnv("DB_PASSWORD", "quizclash123"),
		DBName:      getEnv("DB_NAME", "quizclash"),
		RedisHost:   getEnv("REDIS_HOST", "localhost"),
		RedisPort:   getEnv("REDIS_PORT", "6379"),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		Timing: Timing{
			FirstRoundDelay: getDurationEnv("FIRST_ROUND_DELAY", 3*time.Second),
			RoundDuration:   getDurationEnv("ROUND_DURATION", 15*time.Second),
			InterRoundDelay: getDurationEnv("INTER_ROUND_DELAY", 5*time.Second),
			GameEndDelay:    getDurationEnv("GAME_END_DELAY", 5*time.Second),
			RoomTTL:         getDurationEnv("ROOM_TTL", 2*time.Hour),
			QueueTTL:        getDurationEnv("QUEUE_TTL", 2*time.Hour),
			TotalRounds:     getIntEnv("TOTAL_ROUNDS", 5),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func InitRedis(cfg *Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	return client
}
