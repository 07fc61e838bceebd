package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	OCR        OCRConfig
	Extraction ExtractionConfig
	Redis      RedisConfig
	Inbox      InboxConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // "sqlite" | "postgres"
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds the daemon listener addresses
type ServerConfig struct {
	GRPCAddr    string
	MetricsAddr string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Rasterizer   string
	Recognizer   string
	Language     string
	TessdataDir  string
	DPI          int
	ToolTimeout  time.Duration
	TempRoot     string
	Enhance      bool
	UseTextLayer bool
}

// ExtractionConfig bounds pattern matching
type ExtractionConfig struct {
	MatchTimeout time.Duration
	MaxTextRunes int
	ContextRunes int
}

// RedisConfig configures the optional pattern cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// InboxConfig configures the watched intake directory of the daemon
type InboxConfig struct {
	Dir         string
	OutDir      string
	Workers     int
	QueueSize   int
	JobTimeout  time.Duration
	Debounce    time.Duration
	InitialScan bool
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is read first when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			Driver:           strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:              getEnv("DB_URL", "file:intake.db?_pragma=busy_timeout(5000)"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr:    getEnv("GRPC_ADDR", ":8080"),
			MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		},
		OCR: OCRConfig{
			Rasterizer:   getEnv("OCR_RASTERIZER", "pdftoppm"),
			Recognizer:   getEnv("OCR_RECOGNIZER", "tesseract"),
			Language:     getEnv("OCR_LANGUAGE", "deu"),
			TessdataDir:  getEnv("TESSDATA_PREFIX", ""),
			DPI:          getEnvAsInt("OCR_DPI", 300),
			ToolTimeout:  getEnvAsDuration("OCR_TOOL_TIMEOUT", 60*time.Second),
			TempRoot:     getEnv("OCR_TEMP_ROOT", ""),
			Enhance:      getEnvAsBool("OCR_ENHANCE", false),
			UseTextLayer: getEnvAsBool("OCR_USE_TEXT_LAYER", false),
		},
		Extraction: ExtractionConfig{
			MatchTimeout: getEnvAsDuration("EXTRACT_MATCH_TIMEOUT", 2*time.Second),
			MaxTextRunes: getEnvAsInt("EXTRACT_MAX_TEXT_RUNES", 200000),
			ContextRunes: getEnvAsInt("LEARN_CONTEXT_RUNES", 20),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsDuration("REDIS_PATTERN_TTL", 10*time.Minute),
		},
		Inbox: InboxConfig{
			Dir:         getEnv("INBOX_DIR", "./inbox"),
			OutDir:      getEnv("INBOX_OUT_DIR", "./out"),
			Workers:     getEnvAsInt("INBOX_WORKERS", 4),
			QueueSize:   getEnvAsInt("INBOX_QUEUE_SIZE", 256),
			JobTimeout:  getEnvAsDuration("INBOX_JOB_TIMEOUT", 3*time.Minute),
			Debounce:    getEnvAsDuration("INBOX_DEBOUNCE", 500*time.Millisecond),
			InitialScan: getEnvAsBool("INBOX_INITIAL_SCAN", true),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return ConfigError("DB_DRIVER must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return ConfigError("DB_URL is required")
	}
	if c.OCR.DPI <= 0 {
		return ConfigError("OCR_DPI must be positive")
	}
	if c.OCR.ToolTimeout <= 0 {
		return ConfigError("OCR_TOOL_TIMEOUT must be positive")
	}
	if c.Extraction.MatchTimeout <= 0 {
		return ConfigError("EXTRACT_MATCH_TIMEOUT must be positive")
	}
	return nil
}
