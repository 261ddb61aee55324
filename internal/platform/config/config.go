package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	LogMode string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CodeforcesAPIURL string
	CodeforcesKey    string
	CodeforcesSecret string
	UpstreamTimeout  time.Duration
	SubmissionCount  int

	CorpusTTL                 time.Duration
	ReferenceTTL              time.Duration
	ReferenceHandles          []string
	ReferenceFetchConcurrency int

	DefaultTimezone string
}

var AppConfig *Config

// Load populates AppConfig from the environment, after applying .env when
// present. AppConfig is always set; the returned error only reports a .env
// file that could not be read (fs.ErrNotExist when there is none).
func Load() error {
	envErr := godotenv.Load()

	AppConfig = &Config{
		APIPort:       getEnv("API_PORT", "8080"),
		LogMode:       getEnv("LOG_MODE", "development"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "user"),
		DBPassword:    getEnv("DB_PASSWORD", "password"),
		DBName:        getEnv("DB_NAME", "cf_buddy_db"),
		DBSslMode:     getEnv("DB_SSLMODE", "disable"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		CodeforcesAPIURL: getEnv("CODEFORCES_API_URL", "https://codeforces.com/api"),
		CodeforcesKey:    getEnv("CODEFORCES_KEY", ""),
		CodeforcesSecret: getEnv("CODEFORCES_SECRET", ""),
		UpstreamTimeout:  getEnvAsDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		SubmissionCount:  getEnvAsInt("SUBMISSION_FETCH_COUNT", 10000),

		CorpusTTL:    getEnvAsDuration("CORPUS_TTL", 24*time.Hour),
		ReferenceTTL: getEnvAsDuration("REFERENCE_TTL", 6*time.Hour),
		ReferenceHandles: getEnvAsList("REFERENCE_HANDLES",
			[]string{"tourist", "jiangly", "orzdevinwang", "demoralizer", "Priyansh31dec"}),
		ReferenceFetchConcurrency: getEnvAsInt("REFERENCE_FETCH_CONCURRENCY", 3),

		DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "UTC"),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
	return envErr
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("15s", "24h").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
