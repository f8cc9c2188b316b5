package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSessionSecret is only acceptable outside production.
const DefaultSessionSecret = "dev-session-secret-change-me"

const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"

	SessionJWT   = "jwt"
	SessionRedis = "redis"
)

type Config struct {
	Port string

	// Env is "dev" (default) or "prod". Dev login routes exist only outside prod.
	Env string

	// LogLevel is a zap level name (debug, info, warn, error). Default "info".
	LogLevel string
	// LogFormat is "json" (default) or "console".
	LogFormat string

	// StoreDriver selects the entity store: postgres (default), mongo or memory.
	StoreDriver string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int
	// DBAutoMigrate applies embedded migrations on API start when true.
	DBAutoMigrate bool

	MongoURI      string
	MongoDatabase string

	// SessionBackend is "jwt" (signed cookie, default) or "redis".
	SessionBackend  string
	SessionSecret   string
	SessionTTLHours int

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	// AppBaseURL is where the API itself is reachable; used to build the OAuth callback.
	AppBaseURL string
	// FrontendURLs are the browser origins allowed by CORS. The first one is
	// where users land after login.
	FrontendURLs []string

	// AllowedEmails is the login allow-list. AdminEmail defaults to its first entry.
	AllowedEmails []string
	AdminEmail    string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// TraceExporter is "none" (default) or "stdout".
	TraceExporter string

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that overwrites those headers.
	TrustProxy bool
}

// Load reads an optional .env file, then the environment. Variables already
// present in the environment win over .env entries.
func Load() Config {
	_ = godotenv.Load()

	allowed := parseList(getEnv("ALLOWED_EMAILS", ""), strings.ToLower)
	admin := strings.ToLower(strings.TrimSpace(getEnv("ADMIN_EMAIL", "")))
	if admin == "" && len(allowed) > 0 {
		admin = allowed[0]
	}

	appBaseURL := strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8080"), "/")

	return Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "dev"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StorePostgres)),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "inventory"),
		DBUser: getEnv("DB_USER", "inventory"),
		DBPass: getEnv("DB_PASS", "inventory"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBAutoMigrate:  getEnvBool("DB_AUTO_MIGRATE", true),

		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "inventory"),

		SessionBackend:  strings.ToLower(getEnv("SESSION_BACKEND", SessionJWT)),
		SessionSecret:   getEnv("SESSION_SECRET", DefaultSessionSecret),
		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 8),

		RedisAddress:  getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleCallbackURL:  getEnv("GOOGLE_CALLBACK_URL", appBaseURL+"/auth/google/callback"),

		AppBaseURL:   appBaseURL,
		FrontendURLs: parseList(getEnv("FRONTEND_URLS", "http://localhost:5173"), func(s string) string { return strings.TrimRight(s, "/") }),

		AllowedEmails: allowed,
		AdminEmail:    admin,

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		TraceExporter: strings.ToLower(getEnv("TRACE_EXPORTER", "none")),

		TrustProxy: getEnvBool("TRUST_PROXY", false),
	}
}

func (c Config) IsProd() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

// SessionTTL is the lifetime of a login session.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// GoogleConfigured reports whether OAuth login can be offered.
func (c Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// LandingURL is where the browser is sent after login or logout.
func (c Config) LandingURL() string {
	if len(c.FrontendURLs) > 0 {
		return c.FrontendURLs[0]
	}
	return c.AppBaseURL
}

// DatabaseURL is the PostgreSQL URL form used by golang-migrate.
func (c Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPass),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Validate reports configuration that must stop the process.
func (c Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case StorePostgres, StoreMongo, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q: want postgres, mongo or memory", c.StoreDriver))
	}
	switch c.SessionBackend {
	case SessionJWT, SessionRedis:
	default:
		errs = append(errs, fmt.Errorf("SESSION_BACKEND %q: want jwt or redis", c.SessionBackend))
	}
	if c.IsProd() {
		if c.SessionSecret == "" || c.SessionSecret == DefaultSessionSecret {
			errs = append(errs, errors.New("SESSION_SECRET must be set in production"))
		}
		if c.StoreDriver == StoreMemory {
			errs = append(errs, errors.New("STORE_DRIVER=memory is not allowed in production"))
		}
		if len(c.AllowedEmails) == 0 {
			errs = append(errs, errors.New("ALLOWED_EMAILS must list at least one address in production"))
		}
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	return errors.Join(errs...)
}

// parseList splits a comma-separated list, trims spaces and applies norm.
// Empty entries are omitted.
func parseList(s string, norm func(string) string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := norm(strings.TrimSpace(p)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
