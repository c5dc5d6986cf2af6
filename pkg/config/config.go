package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	STT        STTConfig
	Storage    StorageConfig
	OpenRouter OpenRouterConfig
	JWT        JWTConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
	// AutoMigrate applies pending SQL migrations at startup. Production
	// deployments should run the migrate script instead.
	AutoMigrate bool
}

// RedisConfig holds Redis configuration. When disabled, room broadcasts stay
// process-local and the service runs single-instance.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// STTConfig selects and configures the speech-to-text provider
type STTConfig struct {
	// Provider is "sarvam", "assemblyai" or "mock".
	Provider        string
	DefaultLanguage string
	DialTimeout     time.Duration

	SarvamURL    string
	SarvamAPIKey string
	SarvamModel  string

	AssemblyAIAPIKey string
}

// StorageConfig holds audio archive storage configuration
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	// MaxArchiveBytes bounds the per-session recording buffer.
	MaxArchiveBytes int64
}

// OpenRouterConfig holds summarization configuration
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Referer string
	Title   string
}

// JWTConfig holds the optional socket identity configuration. When Secret is
// empty, tokens are not verified and clients self-report their identity.
type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "sentrymeet"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		STT: STTConfig{
			Provider:        getEnv("STT_PROVIDER", "sarvam"),
			DefaultLanguage: getEnv("STT_DEFAULT_LANGUAGE", "en-IN"),
			DialTimeout:     getEnvAsDuration("STT_DIAL_TIMEOUT", "10s"),

			SarvamURL:    getEnv("SARVAM_WS_URL", "wss://api.sarvam.ai/speech-to-text/ws"),
			SarvamAPIKey: getEnv("SARVAM_API_KEY", ""),
			SarvamModel:  getEnv("SARVAM_MODEL", "saarika:v2.5"),

			AssemblyAIAPIKey: getEnv("ASSEMBLYAI_API_KEY", ""),
		},
		Storage: StorageConfig{
			Enabled:         getEnvAsBool("STORAGE_ENABLED", false),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "sentrymeet-recordings"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
			MaxArchiveBytes: getEnvAsInt64("STORAGE_MAX_ARCHIVE_BYTES", 64<<20),
		},
		OpenRouter: OpenRouterConfig{
			APIKey:  getEnv("OPENROUTER_API_KEY", ""),
			BaseURL: getEnv("OPENROUTER_API_URL", ""),
			Referer: getEnv("OPENROUTER_REFERER", "https://sentrymeet.dev"),
			Title:   getEnv("OPENROUTER_TITLE", "SentryMeet"),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_ACCESS_SECRET", ""),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", "15m"),
		},
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.STT.Provider {
	case "sarvam":
		if c.STT.SarvamAPIKey == "" {
			return fmt.Errorf("SARVAM_API_KEY is required when STT_PROVIDER=sarvam")
		}
	case "assemblyai":
		if c.STT.AssemblyAIAPIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_API_KEY is required when STT_PROVIDER=assemblyai")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown STT_PROVIDER %q", c.STT.Provider)
	}
	if c.STT.DialTimeout <= 0 {
		return fmt.Errorf("STT_DIAL_TIMEOUT must be positive")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
