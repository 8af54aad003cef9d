package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
	SourceFile     = "file"
)

type RESTconfig struct {
	PORT               string
	CORSAllowedOrigins []string
}

// SourceConfig описывает, откуда читать сырые записи
type SourceConfig struct {
	Kind         string
	APIURL       string
	APIPath      string
	DatabaseURL  string
	Table        string
	FilePath     string
	WatchFile    bool
	FetchTimeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RabbitMQConfig хранит конфигурацию для RabbitMQ
type RabbitMQConfig struct {
	Enabled              bool
	URL                  string
	ListingsExchange     string
	ListingsChangedQueue string
	PublishEvents        bool
}

type QueryConfig struct {
	PageSize        int
	ResetPageOnSort bool
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

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Rest         RESTconfig
	Source       SourceConfig
	Redis        RedisConfig
	RabbitMQ     RabbitMQConfig
	Query        QueryConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
// Файл .env необязателен: в контейнере переменные приходят из окружения.
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

	cfg.AppName = getEnvAsString("APP_NAME", "listings-service")

	cfg.Rest.PORT = getEnvAsString("PORT", "8080")
	cfg.Rest.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", nil)

	cfg.Source.Kind = strings.ToLower(getEnvAsString("LISTINGS_SOURCE", SourceHTTP))
	cfg.Source.FetchTimeout = time.Duration(getEnvAsInt("FETCH_TIMEOUT_SECONDS", 30)) * time.Second
	switch cfg.Source.Kind {
	case SourceHTTP:
		cfg.Source.APIURL = os.Getenv("LISTINGS_API_URL")
		if cfg.Source.APIURL == "" {
			return nil, fmt.Errorf("LISTINGS_API_URL environment variable is required for %s source", SourceHTTP)
		}
		cfg.Source.APIPath = getEnvAsString("LISTINGS_API_PATH", "/api/properties")
	case SourcePostgres:
		cfg.Source.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.Source.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for %s source", SourcePostgres)
		}
		cfg.Source.Table = getEnvAsString("LISTINGS_TABLE", "listings")
	case SourceFile:
		cfg.Source.FilePath = os.Getenv("LISTINGS_FILE")
		if cfg.Source.FilePath == "" {
			return nil, fmt.Errorf("LISTINGS_FILE environment variable is required for %s source", SourceFile)
		}
		cfg.Source.WatchFile = getEnvAsBool("LISTINGS_FILE_WATCH", true)
	default:
		return nil, fmt.Errorf("unknown LISTINGS_SOURCE %q (expected %s, %s or %s)", cfg.Source.Kind, SourceHTTP, SourcePostgres, SourceFile)
	}

	cfg.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", false)
	if cfg.Redis.Enabled {
		cfg.Redis.Addr = getEnvAsString("REDIS_ADDR", "localhost:6379")
		cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
		cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)
		cfg.Redis.TTL = time.Duration(getEnvAsInt("REDIS_TTL_SECONDS", 300)) * time.Second
	}

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED is true")
		}
		cfg.RabbitMQ.ListingsExchange = getEnvAsString("LISTINGS_EXCHANGE", "listings_exchange")
		cfg.RabbitMQ.ListingsChangedQueue = getEnvAsString("LISTINGS_CHANGED_QUEUE", "listings_catalog_changed")
		cfg.RabbitMQ.PublishEvents = getEnvAsBool("RABBITMQ_PUBLISH_EVENTS", true)
	}

	cfg.Query.PageSize = getEnvAsInt("PAGE_SIZE", 9)
	if cfg.Query.PageSize < 1 {
		log.Printf("Warning: PAGE_SIZE must be positive, got %d. Using default value: 9\n", cfg.Query.PageSize)
		cfg.Query.PageSize = 9
	}
	cfg.Query.ResetPageOnSort = getEnvAsBool("RESET_PAGE_ON_SORT", false)

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
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию
// Логирует ошибку, если переменная есть, но не может быть преобразована в int
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

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
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

// getEnvAsList читает список через запятую
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valStr) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
