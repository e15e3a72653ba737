package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"

	IncomeTransactionsFirst = "transactions-first"
	IncomeProfileFirst      = "profile-first"

	DefaultGeminiModel = "gemini-2.5-flash"
)

type Config struct {
	Port               string
	DataBackend        string
	DatabaseURL        string
	JWTSecret          string
	JWTTTL             time.Duration
	DataEncryptionKey  string
	AllowedOrigins     []string
	GeminiAPIKey       string
	GeminiModel        string
	AITimeout          time.Duration
	RenderTimeout      time.Duration
	ReportLocation     *time.Location
	ReportFontPath     string
	UploadDir          string
	RateLimitPerMinute int
	SuggestionCacheTTL time.Duration
	IncomePolicy       string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DataBackend:        strings.ToLower(getEnv("DATA_BACKEND", BackendPostgres)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		DataEncryptionKey:  os.Getenv("DATA_ENCRYPTION_KEY"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        getEnv("GEMINI_MODEL", DefaultGeminiModel),
		ReportFontPath:     os.Getenv("REPORT_FONT_PATH"),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		IncomePolicy:       strings.ToLower(getEnv("INCOME_POLICY", IncomeTransactionsFirst)),
		AllowedOrigins:     allowedOrigins(),
	}

	var errs []error
	var err error
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.AITimeout, err = getDuration("AI_TIMEOUT", 10*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.RenderTimeout, err = getDuration("RENDER_TIMEOUT", 20*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.SuggestionCacheTTL, err = getDuration("SUGGESTION_CACHE_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		errs = append(errs, err)
	}
	if cfg.ReportLocation, err = time.LoadLocation(getEnv("REPORT_TIMEZONE", "UTC")); err != nil {
		errs = append(errs, fmt.Errorf("REPORT_TIMEZONE: %w", err))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.DataBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL environment variable is required"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("DATA_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, c.DataBackend))
	}

	if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters"))
	}
	if c.DataEncryptionKey != "" && len(c.DataEncryptionKey) != 32 {
		errs = append(errs, errors.New("DATA_ENCRYPTION_KEY must be exactly 32 characters"))
	}
	if c.IncomePolicy != IncomeTransactionsFirst && c.IncomePolicy != IncomeProfileFirst {
		errs = append(errs, fmt.Errorf("INCOME_POLICY must be %q or %q", IncomeTransactionsFirst, IncomeProfileFirst))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}
	if c.AITimeout <= 0 || c.RenderTimeout <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT and RENDER_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func allowedOrigins() []string {
	frontendURL := getEnv("FRONTEND_URL", "http://localhost:3000")
	origins := []string{frontendURL}
	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" && origin != frontendURL {
			origins = append(origins, origin)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
