package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type AppConfig struct {
	// Backend
	APIBaseURL string
	SocketURL  string

	// Payment gateway (public key only; secrets stay server-side)
	RazorpayKeyID string

	// Local state
	StateDir    string
	KeyringName string

	// Checkout polling
	PollInterval time.Duration
	PollTimeout  time.Duration

	// Query cache
	CacheGCGrace time.Duration

	// HTTP
	RequestTimeout time.Duration
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		APIBaseURL: getEnv("GEARHUB_API_URL", "http://localhost:8000/api/v1"),
		SocketURL:  getEnv("GEARHUB_SOCKET_URL", "ws://localhost:8000/socket"),

		RazorpayKeyID: getEnv("RAZORPAY_KEY_ID", ""),

		StateDir:    getEnv("GEARHUB_STATE_DIR", defaultStateDir()),
		KeyringName: getEnv("GEARHUB_KEYRING_NAME", "gearhub"),

		PollInterval: getEnvDuration("GEARHUB_POLL_INTERVAL", 5*time.Second),
		PollTimeout:  getEnvDuration("GEARHUB_POLL_TIMEOUT", 5*time.Minute),

		CacheGCGrace: getEnvDuration("GEARHUB_CACHE_GC_GRACE", 60*time.Second),

		RequestTimeout: getEnvDuration("GEARHUB_REQUEST_TIMEOUT", 30*time.Second),
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gearhub"
	}
	return filepath.Join(home, ".gearhub")
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
