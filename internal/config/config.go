// Package config loads engine configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable of the engine and its HTTP front.
type Config struct {
	// Timeout applies per provider attempt.
	Timeout time.Duration

	// Providers toggles and credentials.
	EnableTrabis    bool
	EnableRDAP      bool
	EnableWhois     bool
	APINinjasKey    string
	TrabisHost      string
	RDAPBaseURL     string

	// Rate limiting.
	RateQuota  int
	RateWindow time.Duration

	// Retries.
	MaxAttempts int
	BackoffBase time.Duration

	// Cache.
	RedisURL    string
	SuccessTTL  time.Duration
	NotFoundTTL time.Duration

	// HTTP serve mode.
	ListenAddr string

	// Dispatch: a non-empty worker list makes this instance a coordinator.
	Workers        []string
	ForwardTimeout time.Duration
}

// Load reads configuration from the environment. A .env file in the
// working directory is merged in first when present; real environment
// variables win.
func Load() (*Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		Timeout:        envDuration("WHOISINTEL_TIMEOUT", 15*time.Second),
		EnableTrabis:   envBool("WHOISINTEL_ENABLE_TRABIS", true),
		EnableRDAP:     envBool("WHOISINTEL_ENABLE_RDAP", true),
		EnableWhois:    envBool("WHOISINTEL_ENABLE_WHOIS", true),
		APINinjasKey:   os.Getenv("API_NINJAS_KEY"),
		TrabisHost:     os.Getenv("WHOISINTEL_TRABIS_HOST"),
		RDAPBaseURL:    os.Getenv("WHOISINTEL_RDAP_URL"),
		RateQuota:      envInt("WHOISINTEL_RATE_QUOTA", 30),
		RateWindow:     envDuration("WHOISINTEL_RATE_WINDOW", time.Minute),
		MaxAttempts:    envInt("WHOISINTEL_MAX_ATTEMPTS", 3),
		BackoffBase:    envDuration("WHOISINTEL_BACKOFF_BASE", 500*time.Millisecond),
		RedisURL:       os.Getenv("WHOISINTEL_REDIS_URL"),
		SuccessTTL:     envDuration("WHOISINTEL_SUCCESS_TTL", 24*time.Hour),
		NotFoundTTL:    envDuration("WHOISINTEL_NOTFOUND_TTL", time.Hour),
		ListenAddr:     envString("WHOISINTEL_LISTEN", ":8080"),
		Workers:        envList("WHOISINTEL_WORKERS"),
		ForwardTimeout: envDuration("WHOISINTEL_FORWARD_TIMEOUT", 20*time.Second),
	}

	if cfg.RateQuota <= 0 {
		return nil, fmt.Errorf("WHOISINTEL_RATE_QUOTA must be positive")
	}
	if cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("WHOISINTEL_MAX_ATTEMPTS must be positive")
	}
	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(strings.TrimSuffix(item, "/"))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
