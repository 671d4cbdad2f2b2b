package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	SQLite   SQLiteConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Portal   PortalConfig
	Blob     BlobConfig
	Kafka    KafkaConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	SecureCookies         bool
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SQLiteConfig locates the durable state file.
type SQLiteConfig struct {
	Path string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines session token parameters.
type AuthConfig struct {
	JWTSecret            string
	SessionTTLMinutes    int
	RememberTTLMinutes   int
	BcryptCost           int
	ClientCookieName     string
	ClientCookieMaxDays  int
	SessionCookieName    string
	IdleEvictMinutes     int
	SweepIntervalSeconds int
}

// Storage drivers for the two persistence media.
const (
	MediumMemory   = "memory"
	MediumSQLite   = "sqlite"
	MediumPostgres = "postgres"
	MediumRedis    = "redis"
)

// Ledger persistence policies.
const (
	LedgerPersistenceNone    = "none"
	LedgerPersistenceDurable = "durable"
)

// PortalConfig holds the portal credentials and storage policy.
type PortalConfig struct {
	AdminEmail        string
	AdminPassword     string
	StaffPassword     string
	DurableMedium     string
	SessionMedium     string
	LedgerPersistence string
}

// BlobConfig selects where report attachments are kept.
type BlobConfig struct {
	Driver          string
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3PathStyle     bool
	AccessKeyID     string
	SecretAccessKey string
}

// KafkaConfig enables forwarding of report events.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	dsn := os.Getenv("POSTGRES_DSN")
	defaultDurable := MediumSQLite
	if dsn != "" {
		defaultDurable = MediumPostgres
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "staff-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			SecureCookies:         getEnvAsBool("HTTP_SECURE_COOKIES", false),
		},
		Postgres: PostgresConfig{
			DSN:            dsn,
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "data/portal.db"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:            getEnv("AUTH_JWT_SECRET", "dev-secret"),
			SessionTTLMinutes:    getEnvAsInt("AUTH_SESSION_TTL_MINUTES", 12*60),
			RememberTTLMinutes:   getEnvAsInt("AUTH_REMEMBER_TTL_MINUTES", 30*24*60),
			BcryptCost:           getEnvAsInt("AUTH_BCRYPT_COST", 10),
			ClientCookieName:     getEnv("AUTH_CLIENT_COOKIE", "portal_client"),
			ClientCookieMaxDays:  getEnvAsInt("AUTH_CLIENT_COOKIE_MAX_DAYS", 365),
			SessionCookieName:    getEnv("AUTH_SESSION_COOKIE", "portal_session"),
			IdleEvictMinutes:     getEnvAsInt("AUTH_IDLE_EVICT_MINUTES", 60),
			SweepIntervalSeconds: getEnvAsInt("AUTH_SWEEP_INTERVAL_SECONDS", 300),
		},
		Portal: PortalConfig{
			AdminEmail:        getEnv("PORTAL_ADMIN_EMAIL", "admin@ahmedabdul.com"),
			AdminPassword:     getEnv("PORTAL_ADMIN_PASSWORD", "admin123"),
			StaffPassword:     getEnv("PORTAL_STAFF_PASSWORD", "password123"),
			DurableMedium:     strings.ToLower(getEnv("PORTAL_DURABLE_MEDIUM", defaultDurable)),
			SessionMedium:     strings.ToLower(getEnv("PORTAL_SESSION_MEDIUM", MediumMemory)),
			LedgerPersistence: strings.ToLower(getEnv("LEDGER_PERSISTENCE", LedgerPersistenceNone)),
		},
		Blob: BlobConfig{
			Driver:          strings.ToLower(getEnv("BLOB_DRIVER", "memory")),
			S3Bucket:        os.Getenv("BLOB_S3_BUCKET"),
			S3Region:        getEnv("BLOB_S3_REGION", "us-east-1"),
			S3Endpoint:      os.Getenv("BLOB_S3_ENDPOINT"),
			S3PathStyle:     getEnvAsBool("BLOB_S3_PATH_STYLE", false),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "portal.reports"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Portal.DurableMedium {
	case MediumMemory, MediumSQLite:
	case MediumPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("PORTAL_DURABLE_MEDIUM=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("invalid PORTAL_DURABLE_MEDIUM %q", c.Portal.DurableMedium)
	}
	switch c.Portal.SessionMedium {
	case MediumMemory, MediumRedis:
	default:
		return fmt.Errorf("invalid PORTAL_SESSION_MEDIUM %q", c.Portal.SessionMedium)
	}
	switch c.Portal.LedgerPersistence {
	case LedgerPersistenceNone, LedgerPersistenceDurable:
	default:
		return fmt.Errorf("invalid LEDGER_PERSISTENCE %q", c.Portal.LedgerPersistence)
	}
	if c.Auth.ClientCookieName == c.Auth.SessionCookieName {
		return fmt.Errorf("AUTH_CLIENT_COOKIE and AUTH_SESSION_COOKIE must differ")
	}
	if c.Blob.Driver == "s3" && c.Blob.S3Bucket == "" {
		return fmt.Errorf("BLOB_DRIVER=s3 requires BLOB_S3_BUCKET")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SessionTTL is the lifetime of a session-scoped login.
func (a AuthConfig) SessionTTL() time.Duration {
	return minutes(a.SessionTTLMinutes, 12*60)
}

// RememberTTL is the lifetime of a remembered login.
func (a AuthConfig) RememberTTL() time.Duration {
	return minutes(a.RememberTTLMinutes, 30*24*60)
}

// IdleEvict is how long an unused client store stays in memory.
func (a AuthConfig) IdleEvict() time.Duration {
	return minutes(a.IdleEvictMinutes, 60)
}

// SweepInterval is the period of the idle store sweeper. Zero disables it.
func (a AuthConfig) SweepInterval() time.Duration {
	if a.SweepIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(a.SweepIntervalSeconds) * time.Second
}

func minutes(val, fallback int) time.Duration {
	if val <= 0 {
		val = fallback
	}
	return time.Duration(val) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
