package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
)

type Config struct {
	AppPort string

	// Public base URL of the web app; invite emails deep-link into it
	AppBaseURL string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// HMAC secret for the auth provider's bearer tokens
	JWTSecret string

	// SMTP (invite notifications); empty host disables invites
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// Object storage (attachment blobs)
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool

	// Video-conferencing API
	MeetingBaseURL      string
	MeetingTokenURL     string
	MeetingAccountID    string
	MeetingClientID     string
	MeetingClientSecret string
	MeetingHostEmail    string

	// LLM API (embeddings + sentiment summary)
	AIBaseURL        string
	AIAPIKey         string
	AIEmbeddingModel string
	AIChatModel      string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:    getenv("APP_PORT", "8080"),
		AppBaseURL: getenv("APP_BASE_URL", "http://localhost:8080"),
		MySQLHost:  getenv("MYSQL_HOST", "mysql"),
		MySQLPort:  getenv("MYSQL_PORT", "3306"),
		MySQLDB:    getenv("MYSQL_DB", "approveit"),
		MySQLUser:  getenv("MYSQL_USER", "approveit"),
		MySQLPass:  getenv("MYSQL_PASS", "approveit"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		IdempTTLSecs: 300,

		JWTSecret: getenv("JWT_SECRET", "approveit-dev-secret"),

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     getenv("SMTP_PORT", "587"),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", ""),
		SMTPFromName: getenv("SMTP_FROM_NAME", "ApproveIt"),

		StorageEndpoint:  getenv("STORAGE_ENDPOINT", ""),
		StorageAccessKey: getenv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey: getenv("STORAGE_SECRET_KEY", ""),
		StorageBucket:    getenv("STORAGE_BUCKET", "approveit-attachments"),
		StorageUseSSL:    getenv("STORAGE_USE_SSL", "true") == "true",

		MeetingBaseURL:      getenv("MEETING_BASE_URL", "https://api.zoom.us/v2"),
		MeetingTokenURL:     getenv("MEETING_TOKEN_URL", "https://zoom.us/oauth/token"),
		MeetingAccountID:    getenv("MEETING_ACCOUNT_ID", ""),
		MeetingClientID:     getenv("MEETING_CLIENT_ID", ""),
		MeetingClientSecret: getenv("MEETING_CLIENT_SECRET", ""),
		MeetingHostEmail:    getenv("MEETING_HOST_EMAIL", "me"),

		AIBaseURL:        getenv("AI_BASE_URL", "https://api.openai.com/v1"),
		AIAPIKey:         getenv("AI_API_KEY", ""),
		AIEmbeddingModel: getenv("AI_EMBEDDING_MODEL", ""),
		AIChatModel:      getenv("AI_CHAT_MODEL", ""),
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.JWTSecret == "" {
		return errors.New("missing JWT_SECRET")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
