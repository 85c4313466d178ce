package configs

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type RESTConfig struct {
	Port string
}

// CrawlerConfig tunes the dispatch stage. Concurrency bounds the
// number of platforms fetched at once, TimeoutSeconds bounds one fetch
// attempt including its retry budget.
type CrawlerConfig struct {
	Concurrency        int
	TimeoutSeconds     int
	RandomDelaySeconds int
	Platforms          []string
	BrowserEnabled     bool
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type DBConfig struct {
	URL string
}

type RedisConfig struct {
	URL        string
	TTLSeconds int
}

type RabbitMQConfig struct {
	URL                 string
	BatchSize           int
	BatchTimeoutSeconds int
	MaxRetries          int
}

type VectorConfig struct {
	Path string
}

type SearchConfig struct {
	PriceTolerance float64
	DefaultLimit   int
	MaxLimit       int
}

type CleanupConfig struct {
	ExpireAfterDays int
}

type SchedulerConfig struct {
	Enabled     bool
	CrawlSpec   string
	CleanupSpec string
	Queries     []string
}

type SelectorsConfig struct {
	Path string
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig holds the whole application configuration.
type AppConfig struct {
	AppName      string
	Rest         RESTConfig
	Crawler      CrawlerConfig
	Gemini       GeminiConfig
	Database     DBConfig
	Redis        RedisConfig
	RabbitMQ     RabbitMQConfig
	Vector       VectorConfig
	Search       SearchConfig
	Cleanup      CleanupConfig
	Scheduler    SchedulerConfig
	Selectors    SelectorsConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LLMEnabled reports whether intent parsing may call the language
// model. Without a key the parser runs on rules alone.
func (c *AppConfig) LLMEnabled() bool {
	return c.Gemini.APIKey != ""
}

// StorageEnabled reports whether listings are persisted at all.
func (c *AppConfig) StorageEnabled() bool {
	return c.Database.URL != ""
}

// LoadConfig loads the configuration from environment variables. Every
// backend is optional: a missing DSN or API key disables the adapter
// behind it instead of failing startup.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}

	if err != nil {
		log.Printf("Info: Could not load .env file (path: %v): %v. Using process environment.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "agent-bds")

	cfg.Rest.Port = getEnvAsString("PORT", "8080")

	cfg.Crawler.Concurrency = getEnvAsInt("CRAWLER_CONCURRENCY", 5)
	cfg.Crawler.TimeoutSeconds = getEnvAsInt("CRAWLER_TIMEOUT_SECONDS", 30)
	cfg.Crawler.RandomDelaySeconds = getEnvAsInt("CRAWLER_RANDOM_DELAY_SECONDS", 3)
	cfg.Crawler.Platforms = getEnvAsSlice("CRAWLER_PLATFORMS", nil)
	cfg.Crawler.BrowserEnabled = getEnvAsBool("CRAWLER_BROWSER_ENABLED", false)

	cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	cfg.Gemini.Model = getEnvAsString("GEMINI_MODEL", "gemini-2.0-flash")
	cfg.Gemini.EmbedModel = getEnvAsString("GEMINI_EMBED_MODEL", "gemini-embedding-001")

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	if cfg.Database.URL == "" {
		log.Println("Info: DATABASE_URL is not set. Listing persistence is disabled.")
	}

	cfg.Redis.URL = os.Getenv("REDIS_URL")
	cfg.Redis.TTLSeconds = getEnvAsInt("CACHE_TTL_SECONDS", 120)

	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
	cfg.RabbitMQ.BatchSize = getEnvAsInt("RABBITMQ_BATCH_SIZE", 50)
	cfg.RabbitMQ.BatchTimeoutSeconds = getEnvAsInt("RABBITMQ_BATCH_TIMEOUT_SECONDS", 5)
	cfg.RabbitMQ.MaxRetries = getEnvAsInt("RABBITMQ_MAX_RETRIES", 3)

	cfg.Vector.Path = os.Getenv("VECTOR_DB_PATH")

	cfg.Search.PriceTolerance = getEnvAsFloat("SEARCH_PRICE_TOLERANCE", 0.3)
	cfg.Search.DefaultLimit = getEnvAsInt("SEARCH_DEFAULT_LIMIT", 50)
	cfg.Search.MaxLimit = getEnvAsInt("SEARCH_MAX_LIMIT", 200)

	cfg.Cleanup.ExpireAfterDays = getEnvAsInt("CLEANUP_EXPIRE_AFTER_DAYS", 30)

	cfg.Scheduler.Enabled = getEnvAsBool("SCHEDULER_ENABLED", false)
	cfg.Scheduler.CrawlSpec = getEnvAsString("SCHEDULER_CRAWL_SPEC", "@every 4h")
	cfg.Scheduler.CleanupSpec = getEnvAsString("SCHEDULER_CLEANUP_SPEC", "0 3 * * *")
	cfg.Scheduler.Queries = getEnvAsSlice("SCHEDULER_QUERIES", nil)

	cfg.Selectors.Path = os.Getenv("SELECTORS_PATH")

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}

		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as int or returns the
// default, logging when the variable is set but unparseable.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valFloat, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as float: %v. Using default value: %g\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valFloat
}

// getEnvAsSlice reads a comma-separated environment variable. Empty
// items are dropped, values are trimmed.
func getEnvAsSlice(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valStr) == "" {
		return defaultValue
	}

	parts := strings.Split(valStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
