package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port         string
	StoreBackend string
	DBUrl        string

	JWTSecret         string
	TokenTTL          time.Duration
	AdminUsername     string
	AdminPasswordHash string

	CricketAPIURL   string
	CricketAPIKey   string
	UpstreamTimeout time.Duration

	RedisAddr     string
	MatchCacheTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	RateLimit float64
	RateBurst int

	StrictTeamMatch bool

	LogLevel  string
	LogPretty bool
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg(".env file not found, using environment and defaults")
	}

	return Config{
		Port:         getEnv("PORT", "8080"),
		StoreBackend: getEnv("STORE_BACKEND", "mysql"),
		DBUrl:        os.Getenv("DB_URL"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		TokenTTL:          getDuration("TOKEN_TTL", 24*time.Hour),
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		CricketAPIURL:   getEnv("CRICKET_API_URL", "https://api.cricapi.com/v1"),
		CricketAPIKey:   os.Getenv("CRICKET_API_KEY"),
		UpstreamTimeout: getDuration("UPSTREAM_TIMEOUT", 10*time.Second),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		MatchCacheTTL: getDuration("MATCH_CACHE_TTL", time.Minute),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "cricketbet.events"),

		RateLimit: getFloat("RATE_LIMIT", 10),
		RateBurst: getInt("RATE_BURST", 20),

		StrictTeamMatch: getBool("STRICT_TEAM_MATCH", false),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getBool("LOG_PRETTY", true),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid duration, using default")
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid integer, using default")
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid number, using default")
		return fallback
	}
	return f
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid boolean, using default")
		return fallback
	}
	return b
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
