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

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	News      NewsConfig
	Retrieval RetrievalConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	InteractionLogPath string
	CorsAllowedOrigins string
	JWTSecret          string // empty disables the protected ingestion routes
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	Finnhub      string
}

type AIConfig struct {
	EmbeddingProvider    string // "gemini" or "ollama"
	EmbeddingModel       string
	EmbeddingDimension   int
	EmbeddingRPS         int // embedding calls per second during ingestion, 0 = unlimited
	OllamaBaseURL        string
	OllamaEmbeddingModel string
	LLMProvider          string // "gemini" or "ollama"
	LLMModel             string
	Temperature          float64
	Timeout              time.Duration
	MaxRetries           int
}

type NewsConfig struct {
	Provider         string // "finnhub" or "rss"
	FinnhubBaseURL   string
	RSSURLTemplate   string
	DefaultTickers   []string
	ThrottleCalls    int
	ThrottleCooldown time.Duration
	LookbackDays     int
	SP500URL         string
	IngestCron       string
	IngestTopic      string
	LockTTL          time.Duration
}

type RetrievalConfig struct {
	DefaultResults int
	MaxResults     int
	CacheTTL       time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			InteractionLogPath: getEnv("INTERACTION_LOG_PATH", "logs/interactions.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8501"),
			JWTSecret:          getEnv("JWT_SECRET", ""),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_API_KEY", ""),
			Finnhub:      getEnv("FINHUB_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingModel:       getEnv("EMBEDDING_MODEL", "text-embedding-004"),
			EmbeddingDimension:   getEnvAsInt("EMBEDDING_DIMENSION", 768),
			EmbeddingRPS:         getEnvAsInt("EMBEDDING_RPS", 5),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:          getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:             getEnv("LLM_MODEL", "gemini-2.5-flash"),
			Temperature:          getEnvAsFloat("LLM_TEMPERATURE", 0),
			Timeout:              getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			MaxRetries:           getEnvAsInt("LLM_MAX_RETRIES", 2),
		},
		News: NewsConfig{
			Provider:         getEnv("NEWS_PROVIDER", "finnhub"),
			FinnhubBaseURL:   getEnv("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
			RSSURLTemplate:   getEnv("NEWS_RSS_URL_TEMPLATE", "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"),
			DefaultTickers:   getEnvAsList("DEFAULT_TICKERS", []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA"}),
			ThrottleCalls:    getEnvAsInt("NEWS_THROTTLE_CALLS", 30),
			ThrottleCooldown: getEnvAsDuration("NEWS_THROTTLE_COOLDOWN", 60*time.Second),
			LookbackDays:     getEnvAsInt("NEWS_LOOKBACK_DAYS", 7),
			SP500URL:         getEnv("SP500_URL", "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"),
			IngestCron:       getEnv("INGEST_CRON", ""),
			IngestTopic:      getEnv("INGEST_TOPIC_NAME", "INGEST_NEWS"),
			LockTTL:          getEnvAsDuration("INGEST_LOCK_TTL", 2*time.Hour),
		},
		Retrieval: RetrievalConfig{
			DefaultResults: getEnvAsInt("RETRIEVAL_DEFAULT_RESULTS", 5),
			MaxResults:     getEnvAsInt("RETRIEVAL_MAX_RESULTS", 20),
			CacheTTL:       getEnvAsDuration("RETRIEVAL_CACHE_TTL", 10*time.Minute),
		},
	}
}

// Validate reports every missing setting the configured providers need.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Connection == "" {
		errs = append(errs, missing("DB_CONNECTION_STRING"))
	}
	if (c.Ai.LLMProvider == "gemini" || c.Ai.EmbeddingProvider == "gemini") && c.Keys.GoogleGemini == "" {
		errs = append(errs, missing("GOOGLE_API_KEY"))
	}
	if c.News.Provider == "finnhub" && c.Keys.Finnhub == "" {
		errs = append(errs, missing("FINHUB_API_KEY"))
	}
	if c.Retrieval.MaxResults < 1 {
		errs = append(errs, fmt.Errorf("RETRIEVAL_MAX_RESULTS must be positive"))
	}

	return errors.Join(errs...)
}

func missing(key string) error {
	return fmt.Errorf("missing required environment variable %s", key)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if strValue == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
