package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig aggregates runtime configuration, injected through environment
// variables so nothing is hardcoded.
type AppConfig struct {
	HTTPAddr string
	DBPath   string

	RedisAddr string
	RedisDB   int

	// Kafka cluster (comma separated), notification topic, consumer group.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// Reservation-creation rate limiting.
	ReserveRateLimit  int
	ReserveRateWindow time.Duration

	// How long a handled notification event id stays locked in Redis.
	NotifyLockTTL time.Duration

	// Where sellers are reached; passed through to the notification sink.
	SellerContactChannel string
}

// Load reads and validates configuration, applying defaults for anything
// unset.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DBPath:               getEnv("DB_PATH", "marketplace.db"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              0,
		KafkaBrokers:         splitCSV(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:           getEnv("KAFKA_TOPIC", "marketplace-notifications"),
		KafkaGroupID:         getEnv("KAFKA_GROUP_ID", "marketplace-notify-consumer"),
		ReserveRateLimit:     60,
		ReserveRateWindow:    time.Minute,
		NotifyLockTTL:        7 * 24 * time.Hour,
		SellerContactChannel: getEnv("SELLER_CONTACT_CHANNEL", "seller-inbox"),
	}

	redisDB, err := getEnvInt("REDIS_DB", cfg.RedisDB)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = redisDB

	rateLimit, err := getEnvInt("RESERVE_RATE_LIMIT", cfg.ReserveRateLimit)
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid RESERVE_RATE_LIMIT: %w", err)
	}
	if rateLimit <= 0 {
		return AppConfig{}, fmt.Errorf("RESERVE_RATE_LIMIT must be > 0")
	}
	cfg.ReserveRateLimit = rateLimit

	rateWindowSec, err := getEnvInt("RESERVE_RATE_WINDOW_SEC", int(cfg.ReserveRateWindow.Seconds()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid RESERVE_RATE_WINDOW_SEC: %w", err)
	}
	if rateWindowSec <= 0 {
		return AppConfig{}, fmt.Errorf("RESERVE_RATE_WINDOW_SEC must be > 0")
	}
	cfg.ReserveRateWindow = time.Duration(rateWindowSec) * time.Second

	lockTTLHour, err := getEnvInt("NOTIFY_LOCK_TTL_HOUR", int(cfg.NotifyLockTTL.Hours()))
	if err != nil {
		return AppConfig{}, fmt.Errorf("invalid NOTIFY_LOCK_TTL_HOUR: %w", err)
	}
	if lockTTLHour <= 0 {
		return AppConfig{}, fmt.Errorf("NOTIFY_LOCK_TTL_HOUR must be > 0")
	}
	cfg.NotifyLockTTL = time.Duration(lockTTLHour) * time.Hour

	if len(cfg.KafkaBrokers) == 0 {
		return AppConfig{}, fmt.Errorf("KAFKA_BROKERS must not be empty")
	}
	if cfg.KafkaTopic == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_TOPIC must not be empty")
	}
	if cfg.KafkaGroupID == "" {
		return AppConfig{}, fmt.Errorf("KAFKA_GROUP_ID must not be empty")
	}

	return cfg, nil
}

// getEnv reads a string variable, falling back when unset or blank.
func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// getEnvInt reads an integer variable, falling back when unset or blank.
func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

// splitCSV parses a comma-separated string into a slice.
func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
