package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Sign-up confirmation
	RequireEmailConfirmation bool
	ConfirmationExpiry       time.Duration

	// Email (Resend)
	ResendAPIKey string
	ResendAPIURL string
	EmailFrom    string
	EmailTimeout time.Duration

	// Public web client, used for links in emails
	PublicAppURL string
	SupportEmail string

	// Object storage (S3 compatible). Empty endpoint keeps uploads in memory.
	S3Endpoint       string
	S3Region         string
	S3AccessKey      string
	S3SecretKey      string
	StoragePublicURL string
	MaxUploadBytes   int

	// Fetch retry policy
	FetchRetryAttempts int
	FetchRetryDelay    time.Duration

	// Realtime
	RealtimeEnabled  bool
	RealtimeDebounce time.Duration

	// Neighborhood area
	AreaConfigPath string

	// Forum content filter
	ContentFilterEnabled bool

	// Admin
	AdminEmails  string
	AdminUserIDs string
	AdminToken   string

	// Server
	Port        string
	CORSOrigins string
	LogLevel    string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "linkhood"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		RequireEmailConfirmation: parseBool(getEnv("REQUIRE_EMAIL_CONFIRMATION", "true"), true),
		ConfirmationExpiry:       parseDuration(getEnv("CONFIRMATION_EXPIRY", "24h"), 24*time.Hour),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		ResendAPIURL: getEnv("RESEND_API_URL", "https://api.resend.com"),
		EmailFrom:    getEnv("EMAIL_FROM", "onboarding@resend.dev"),
		EmailTimeout: parseDuration(getEnv("EMAIL_TIMEOUT", "10s"), 10*time.Second),

		PublicAppURL: strings.TrimRight(getEnv("PUBLIC_APP_URL", "https://linkhooddk.netlify.app"), "/"),
		SupportEmail: getEnv("SUPPORT_EMAIL", "support@linkhood.app"),

		S3Endpoint:       getEnv("S3_ENDPOINT", ""),
		S3Region:         getEnv("S3_REGION", "us-east-1"),
		S3AccessKey:      getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:      getEnv("S3_SECRET_KEY", ""),
		StoragePublicURL: strings.TrimRight(getEnv("STORAGE_PUBLIC_URL", "http://localhost:8080/storage"), "/"),
		MaxUploadBytes:   parseInt(getEnv("MAX_UPLOAD_BYTES", "5242880"), 5*1024*1024),

		FetchRetryAttempts: parseInt(getEnv("FETCH_RETRY_ATTEMPTS", "3"), 3),
		FetchRetryDelay:    parseDuration(getEnv("FETCH_RETRY_DELAY", "1s"), time.Second),

		RealtimeEnabled:  parseBool(getEnv("REALTIME_ENABLED", "true"), true),
		RealtimeDebounce: parseDuration(getEnv("REALTIME_DEBOUNCE", "500ms"), 500*time.Millisecond),

		AreaConfigPath: getEnv("AREA_CONFIG_PATH", ""),

		ContentFilterEnabled: parseBool(getEnv("CONTENT_FILTER_ENABLED", "true"), true),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "https://linkhooddk.netlify.app"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// URL returns the database address in the URL form pgx expects for
// dedicated LISTEN connections.
func (c *Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
