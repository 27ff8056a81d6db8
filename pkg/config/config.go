package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port    string
		Env     string
		Timeout time.Duration
		BaseURL string
	}

	// Storage configuration
	Storage struct {
		// Path of the Pebble database directory. Empty selects the
		// in-memory store, which loses state on restart.
		Path string
	}

	// AI responder configuration
	AI struct {
		APIKey         string
		BaseURL        string
		ChatModel      string
		ImageModel     string
		ImageEditModel string
		VideoModel     string
		TTSModel       string
		Timeout        time.Duration
		VideoPoll      time.Duration
	}

	// Chat behaviour
	Chat struct {
		SentDelay      time.Duration
		DeliveredDelay time.Duration
		DeleteDelay    time.Duration
		TypingTimeout  time.Duration
	}

	// Security configuration
	Security struct {
		RateLimit      float64
		RateLimitBurst int
		AllowedOrigins []string
		MaxBodySize    int64
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Cache settings
	Cache struct {
		Enabled     bool
		TTL         time.Duration
		MaxSize     int
		PurgeWindow time.Duration
	}
}

var (
	instance *Config
	once     sync.Once
)

// New creates a new Config instance with values from environment variables
// Uses singleton pattern to ensure only one instance exists
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = &Config{}

		// Server config
		instance.Server.Port = getEnvString("PORT", "8081")
		instance.Server.Env = getEnvString("APP_ENV", "development")
		instance.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 30*time.Second)
		instance.Server.BaseURL = getEnvString("BASE_URL", "http://localhost:"+instance.Server.Port)

		// Storage config
		instance.Storage.Path = getEnvString("STORAGE_PATH", "")

		// AI responder config
		instance.AI.APIKey = getEnvString("GEMINI_API_KEY", "")
		instance.AI.BaseURL = getEnvString("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
		instance.AI.ChatModel = getEnvString("GEMINI_CHAT_MODEL", "gemini-2.5-flash-lite")
		instance.AI.ImageModel = getEnvString("GEMINI_IMAGE_MODEL", "imagen-4.0-generate-001")
		instance.AI.ImageEditModel = getEnvString("GEMINI_IMAGE_EDIT_MODEL", "gemini-2.5-flash-image")
		instance.AI.VideoModel = getEnvString("GEMINI_VIDEO_MODEL", "veo-3.1-fast-generate-preview")
		instance.AI.TTSModel = getEnvString("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts")
		instance.AI.Timeout = getEnvDuration("AI_TIMEOUT", 60*time.Second)
		instance.AI.VideoPoll = getEnvDuration("AI_VIDEO_POLL_INTERVAL", 10*time.Second)

		// Chat behaviour
		instance.Chat.SentDelay = getEnvDuration("CHAT_SENT_DELAY", 500*time.Millisecond)
		instance.Chat.DeliveredDelay = getEnvDuration("CHAT_DELIVERED_DELAY", 1*time.Second)
		instance.Chat.DeleteDelay = getEnvDuration("CHAT_DELETE_DELAY", 300*time.Millisecond)
		instance.Chat.TypingTimeout = getEnvDuration("CHAT_TYPING_TIMEOUT", 2*time.Minute)

		// Security config
		instance.Security.RateLimit = float64(getEnvInt("RATE_LIMIT", 5))
		instance.Security.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)
		instance.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"*"})
		instance.Security.MaxBodySize = getEnvInt64("MAX_BODY_SIZE", 10<<20) // 10MB

		// Logging config
		instance.Logging.Level = getEnvString("LOG_LEVEL", "info")
		instance.Logging.Format = getEnvString("LOG_FORMAT", "json")

		// Cache settings
		instance.Cache.Enabled = getEnvBool("CACHE_ENABLED", true)
		instance.Cache.TTL = getEnvDuration("CACHE_TTL", 30*time.Minute)
		instance.Cache.MaxSize = getEnvInt("CACHE_MAX_SIZE", 1000)
		instance.Cache.PurgeWindow = getEnvDuration("CACHE_PURGE_WINDOW", 10*time.Minute)
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
