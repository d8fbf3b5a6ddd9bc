package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	APIBaseURL          string
	ListingsPath        string
	ImagePlaceholderURL string
	FetchMode           string
	ChromeBin           string
	AccessToken         string

	RequestTimeoutMs int
	MaxRetries       int
	RetryDelayMs     int
	MaxConcurrency   int
	MaxPages         int
	RateLimitMs      int
	PageSize         int

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CSVOutputPath string
	HTTPAddr      string
	LogLevel      string
	LogFormat     string
}

const (
	FetchModeHTTP    = "http"
	FetchModeBrowser = "browser"
)

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		APIBaseURL:          getEnv("API_BASE_URL", "http://127.0.0.1:8000"),
		ListingsPath:        getEnv("LISTINGS_PATH", "/api/listings"),
		ImagePlaceholderURL: getEnv("IMAGE_PLACEHOLDER_URL", "https://images.pexels.com/photos/1592384/pexels-photo-1592384.jpeg?auto=compress&cs=tinysrgb&w=800"),
		FetchMode:           getEnv("FETCH_MODE", FetchModeHTTP),
		ChromeBin:           getEnv("CHROME_BIN", ""),
		AccessToken:         getEnv("API_ACCESS_TOKEN", ""),

		RequestTimeoutMs: getEnvInt("REQUEST_TIMEOUT_MS", 10000),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),
		RetryDelayMs:     getEnvInt("RETRY_DELAY_MS", 1000),
		MaxConcurrency:   getEnvInt("MAX_CONCURRENCY", 0),
		MaxPages:         getEnvInt("MAX_PAGES", 500),
		RateLimitMs:      getEnvInt("RATE_LIMIT_MS", 0),
		PageSize:         getEnvInt("PAGE_SIZE", 12),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "market"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "market123"),
		PostgresDB:       getEnv("POSTGRES_DB", "vehicle_market"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/raw_vehicles.csv"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// ListingsURL is the absolute URL of the paginated listings endpoint.
func (c *Config) ListingsURL() string {
	return c.APIBaseURL + c.ListingsPath
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
