package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vnkhanh/checkout-survey/logger"
)

type Config struct {
	Port string

	DBDriver    string // postgres | sqlite
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	JWTSecret   string
	CORSOrigins []string

	RedisURL   string
	SessionTTL time.Duration

	ExportDir      string
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string

	PublicRatePerMin int
	PublicRateBurst  int

	LogLevel  string
	LogFormat string

	// SurveyAPIURL là base URL mà runner terminal gọi tới.
	SurveyAPIURL string
}

// Load đọc .env (nếu có) rồi tới biến môi trường.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.WithError(err).Warn("config: không đọc được .env")
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           getEnv("DB_NAME", "checkout_survey"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		RedisURL:         os.Getenv("REDIS_URL"),
		SessionTTL:       getEnvDuration("SESSION_TTL", 2*time.Hour),
		ExportDir:        getEnv("EXPORT_DIR", "./exports"),
		SupabaseURL:      os.Getenv("SUPABASE_URL"),
		SupabaseKey:      os.Getenv("SUPABASE_KEY"),
		SupabaseBucket:   getEnv("SUPABASE_BUCKET", "survey_exports"),
		PublicRatePerMin: getEnvInt("PUBLIC_RATE_PER_MIN", 120),
		PublicRateBurst:  getEnvInt("PUBLIC_RATE_BURST", 20),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		SurveyAPIURL:     getEnv("SURVEY_API_URL", "http://localhost:8080"),
	}
}

// SupabaseEnabled: chỉ upload file export khi đủ URL + key.
func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.WithField("key", key).Warnf("config: %q không phải số, dùng %d", v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.WithField("key", key).Warnf("config: %q không phải duration, dùng %s", v, fallback)
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
