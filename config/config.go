package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	Renderer    string
	Headless    bool
	ChromeBin   string
	UserAgent   string
	NavTimeout  time.Duration
	MaxRetries  int
	RateLimitMs int

	// Timings reproduce the delays the site needs to finish rendering.
	ListSettle       time.Duration
	DetailSettle     time.Duration
	WaitTimeout      time.Duration
	ImageWaitTimeout time.Duration

	OutputDir      string
	CategoriesFile string
	LogLevel       string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "coinafrique"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		Renderer:    strings.ToLower(getEnv("RENDERER", "chrome")),
		Headless:    getEnvBool("HEADLESS", true),
		ChromeBin:   getEnv("CHROME_BIN", ""),
		UserAgent:   getEnv("USER_AGENT", DefaultUserAgent),
		NavTimeout:  getEnvDuration("NAV_TIMEOUT", 60*time.Second),
		MaxRetries:  getEnvInt("MAX_RETRIES", 2),
		RateLimitMs: getEnvInt("RATE_LIMIT_MS", 1000),

		ListSettle:       getEnvDuration("LIST_SETTLE", 3*time.Second),
		DetailSettle:     getEnvDuration("DETAIL_SETTLE", 5*time.Second),
		WaitTimeout:      getEnvDuration("WAIT_TIMEOUT", 15*time.Second),
		ImageWaitTimeout: getEnvDuration("IMAGE_WAIT_TIMEOUT", 10*time.Second),

		OutputDir:      getEnv("OUTPUT_DIR", "./data"),
		CategoriesFile: getEnv("CATEGORIES_FILE", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

// DefaultUserAgent is sent by every renderer backend unless USER_AGENT is set.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
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

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("15s") or a bare number of milliseconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(val); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
