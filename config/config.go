package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Persistence. STORAGE_DRIVER is "file" or "mongo".
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	DataDir       string `mapstructure:"DATA_DIR"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DatabaseName  string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB  int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB    int    `mapstructure:"REDIS_QUEUE_DB"`
	RedisCacheDB    int    `mapstructure:"REDIS_CACHE_DB"`
	SessionStore    string `mapstructure:"SESSION_STORE"`
	SessionTTLMin   int    `mapstructure:"SESSION_TTL_MINUTES"`
	PendingTTLMin   int    `mapstructure:"PENDING_TTL_MINUTES"`
	SweepIntervalSe int    `mapstructure:"SWEEP_INTERVAL_SECONDS"`

	// Scheduled runs. SCHEDULER_MODE is "asynq", "local" or "off".
	SchedulerMode string `mapstructure:"SCHEDULER_MODE"`
	SchedulerSpec string `mapstructure:"SCHEDULER_SPEC"`

	// Intent classification. CLASSIFIER_MODE is "gemini" or "keyword".
	ClassifierMode string `mapstructure:"CLASSIFIER_MODE"`

	// Google APIs.
	GeminiAPIKey             string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel              string `mapstructure:"GEMINI_MODEL"`
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	SpeechLanguage           string `mapstructure:"SPEECH_LANGUAGE"`
	TTSVoice                 string `mapstructure:"TTS_VOICE"`

	// Automation. EXECUTOR_MODE is "browser" or "simulated".
	ExecutorMode       string `mapstructure:"EXECUTOR_MODE"`
	ChromeHeadless     bool   `mapstructure:"CHROME_HEADLESS"`
	ExecutorTimeoutSec int    `mapstructure:"EXECUTOR_TIMEOUT_SECONDS"`
	CalendarWebhookURL string `mapstructure:"CALENDAR_WEBHOOK_URL"`
}

var AppConfig Config

func LoadConfig() {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, continuing")
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)

	viper.SetDefault("STORAGE_DRIVER", "file")
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "voicetask")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("REDIS_CACHE_DB", 2)
	viper.SetDefault("SESSION_STORE", "memory")
	viper.SetDefault("SESSION_TTL_MINUTES", 10)
	viper.SetDefault("PENDING_TTL_MINUTES", 5)
	viper.SetDefault("SWEEP_INTERVAL_SECONDS", 60)

	viper.SetDefault("SCHEDULER_MODE", "local")
	viper.SetDefault("SCHEDULER_SPEC", "@every 1m")

	viper.SetDefault("CLASSIFIER_MODE", "gemini")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("SPEECH_LANGUAGE", "nl-NL")
	viper.SetDefault("TTS_VOICE", "nl-NL-Wavenet-B")

	viper.SetDefault("EXECUTOR_MODE", "simulated")
	viper.SetDefault("CHROME_HEADLESS", true)
	viper.SetDefault("EXECUTOR_TIMEOUT_SECONDS", 90)
	viper.SetDefault("CALENDAR_WEBHOOK_URL", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// SessionTTL is how long an idle booking session survives.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

// PendingTTL is how long a single pending confirmation survives.
func (c Config) PendingTTL() time.Duration {
	return time.Duration(c.PendingTTLMin) * time.Minute
}

func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSe) * time.Second
}

func (c Config) ExecutorTimeout() time.Duration {
	return time.Duration(c.ExecutorTimeoutSec) * time.Second
}
