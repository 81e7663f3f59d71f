package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Backends
	StoreBackend string // memory | firestore | postgres
	MailProvider string // gmail | imap
	AIProvider   string // gemini | ollama | auto

	// AI providers
	GeminiAPIKey  string
	OllamaBaseURL string
	OllamaModel   string

	// Gmail
	GoogleClientID     string
	GoogleClientSecret string
	GmailAccessToken   string
	GmailRefreshToken  string

	// Stores
	FirebaseCredentials string
	DatabaseURL         string

	// IMAP
	IMAPHost     string
	IMAPPort     string
	IMAPUsername string
	IMAPPassword string
	IMAPTLS      bool

	// Hydration pipeline
	ExtractMinTextLen int
	AITimeout         time.Duration
	HydrateInterval   time.Duration
	HydrateUsers      []string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		StoreBackend: getEnv("STORE_BACKEND", "memory"),
		MailProvider: getEnv("MAIL_PROVIDER", "gmail"),
		AIProvider:   getEnv("AI_PROVIDER", "auto"),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GmailAccessToken:   getEnv("GMAIL_ACCESS_TOKEN", ""),
		GmailRefreshToken:  getEnv("GMAIL_REFRESH_TOKEN", ""),

		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		DatabaseURL:         getEnv("DATABASE_URL", ""),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnv("IMAP_PORT", "993"),
		IMAPUsername: getEnv("IMAP_USERNAME", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPTLS:      getBoolEnv("IMAP_TLS", true),

		ExtractMinTextLen: getIntEnv("EXTRACT_MIN_TEXT_LEN", 100),
		AITimeout:         getDurationEnv("AI_TIMEOUT", 30*time.Second),
		HydrateInterval:   getDurationEnv("HYDRATE_INTERVAL", 15*time.Minute),
		HydrateUsers:      getListEnv("HYDRATE_USERS"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
