package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the assistant.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	OpenAI   OpenAIConfig
	Weaviate WeaviateConfig
	Memory   MemoryConfig
	Matcher  MatcherConfig
	Trace    TraceConfig
	Store    StoreConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr switches the
// session memory to the in-process store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig protects the trace and ticket admin panel.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	AdminUsername         string
	AdminPassword         string
}

// OpenAIConfig drives the reasoning and synthesis completions. An empty
// APIKey disables the model; every stage then runs its deterministic
// fallback.
type OpenAIConfig struct {
	APIKey               string
	Model                string
	ReasoningTemperature float64
	ResponseTemperature  float64
	TimeoutSeconds       int
}

// WeaviateConfig points at the similarity index. An empty Host disables
// retrieval; product and document searches then degrade.
type WeaviateConfig struct {
	Host   string
	Scheme string
	APIKey string
	Class  string
}

// MemoryConfig controls session memory expiry.
type MemoryConfig struct {
	TTLMinutes int
}

// MatcherConfig tunes product matching.
type MatcherConfig struct {
	SimilarityThreshold float64
}

// TraceConfig bounds the in-process trace buffer.
type TraceConfig struct {
	BufferSize int
}

// StoreConfig bounds the write retry loop against the ticket store.
type StoreConfig struct {
	RetryAttempts  int
	RetryBackoffMs int
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

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ecomarket-assistant"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 60),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			AdminUsername:         getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword:         os.Getenv("ADMIN_PASSWORD"),
		},
		OpenAI: OpenAIConfig{
			APIKey:               os.Getenv("OPENAI_API_KEY"),
			Model:                getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			ReasoningTemperature: getEnvAsFloat("OPENAI_REASONING_TEMPERATURE", 0.1),
			ResponseTemperature:  getEnvAsFloat("OPENAI_RESPONSE_TEMPERATURE", 0.3),
			TimeoutSeconds:       getEnvAsInt("OPENAI_TIMEOUT_SECONDS", 30),
		},
		Weaviate: WeaviateConfig{
			Host:   os.Getenv("WEAVIATE_HOST"),
			Scheme: getEnv("WEAVIATE_SCHEME", "http"),
			APIKey: os.Getenv("WEAVIATE_API_KEY"),
			Class:  getEnv("WEAVIATE_CLASS", "DocumentChunk"),
		},
		Memory: MemoryConfig{
			TTLMinutes: getEnvAsInt("MEMORY_TTL_MINUTES", 5),
		},
		Matcher: MatcherConfig{
			SimilarityThreshold: getEnvAsFloat("MATCHER_SIMILARITY_THRESHOLD", 0.7),
		},
		Trace: TraceConfig{
			BufferSize: getEnvAsInt("TRACE_BUFFER_SIZE", 1000),
		},
		Store: StoreConfig{
			RetryAttempts:  getEnvAsInt("STORE_RETRY_ATTEMPTS", 3),
			RetryBackoffMs: getEnvAsInt("STORE_RETRY_BACKOFF_MS", 100),
		},
	}

	return cfg, nil
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

// TTL returns the session memory expiry window.
func (m MemoryConfig) TTL() time.Duration {
	if m.TTLMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(m.TTLMinutes) * time.Minute
}

// Timeout returns the completion request deadline.
func (o OpenAIConfig) Timeout() time.Duration {
	if o.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// RetryBackoff returns the base delay between store write attempts.
func (s StoreConfig) RetryBackoff() time.Duration {
	if s.RetryBackoffMs <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(s.RetryBackoffMs) * time.Millisecond
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

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
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
