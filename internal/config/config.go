package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (d Database) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type Redis struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int
}

type JWT struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type Config struct {
	Port     string
	Database Database
	Redis    Redis
	JWT      JWT

	RateLimit  int
	RateWindow time.Duration

	StreakCacheTTL time.Duration
	HabitCacheTTL  time.Duration

	WorkerQueueSize int

	// Location decides which wall-clock day "today" is.
	Location *time.Location
}

// Load reads an optional .env file, then the process environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Port: getString("PORT", "8080"),
		Database: Database{
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			User:            getString("DB_USER", "kanso_user"),
			Password:        getString("DB_PASSWORD", ""),
			Name:            getString("DB_NAME", "kanso_db"),
			SSLMode:         getString("DB_SSLMODE", "disable"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: Redis{
			Enabled:  getBool("REDIS_ENABLED", true),
			Host:     getString("REDIS_HOST", "localhost"),
			Port:     getString("REDIS_PORT", "6379"),
			Password: getString("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
			PoolSize: getInt("REDIS_POOL_SIZE", 10),
		},
		JWT: JWT{
			Secret: getString("JWT_SECRET", ""),
			Issuer: getString("JWT_ISSUER", "kanso-streaks"),
			TTL:    getDuration("JWT_TTL", 24*time.Hour),
		},
		RateLimit:       getInt("RATE_LIMIT", 100),
		RateWindow:      getDuration("RATE_WINDOW", time.Minute),
		StreakCacheTTL:  getDuration("STREAK_CACHE_TTL", 24*time.Hour),
		HabitCacheTTL:   getDuration("HABIT_CACHE_TTL", 30*time.Minute),
		WorkerQueueSize: getInt("WORKER_QUEUE_SIZE", 100),
	}

	if cfg.JWT.Secret == "" {
		return nil, ErrMissingJWTSecret
	}

	loc, err := time.LoadLocation(getString("TZ_NAME", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid TZ_NAME: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

// Clock returns the current time in the configured location.
func (c *Config) Clock() func() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time {
		return time.Now().In(loc)
	}
}
