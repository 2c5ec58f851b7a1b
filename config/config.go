package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Mapstructure tags are used to map environment variables and config file keys.
type Config struct {
	// Server Configuration
	ServerAddress string `mapstructure:"SERVER_ADDRESS"` // e.g., ":8080"
	AppEnv        string `mapstructure:"APP_ENV"`        // "production" switches gin to release mode
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFormat     string `mapstructure:"LOG_FORMAT"` // "console" or "json"
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`
	// TrustedProxies may set X-Forwarded-For. Empty means the socket address
	// is the client address.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"` // comma separated IPs or CIDRs

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"` // postgres DSN, pgx driver

	// AI Configuration
	OpenAIKey         string  `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel       string  `mapstructure:"OPENAI_MODEL"`
	OpenAIMaxTokens   int     `mapstructure:"OPENAI_MAX_TOKENS"`
	OpenAITemperature float32 `mapstructure:"OPENAI_TEMPERATURE"`

	// Image search
	PixabayKey         string        `mapstructure:"PIXABAY_API_KEY"`
	ImageBatchSize     int           `mapstructure:"IMAGE_BATCH_SIZE"`
	ImageSearchTimeout time.Duration `mapstructure:"IMAGE_SEARCH_TIMEOUT"`

	// Demo pages and ownership session
	DemoTTL       time.Duration `mapstructure:"DEMO_TTL"`
	MaxTweaks     int           `mapstructure:"MAX_TWEAKS"` // 0 = unlimited
	SessionSecret string        `mapstructure:"SESSION_SECRET"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`
	SessionMaxIDs int           `mapstructure:"SESSION_MAX_IDS"`
	CookieSecure  bool          `mapstructure:"COOKIE_SECURE"`

	// Rate limiting
	RateLimitMax    int           `mapstructure:"RATE_LIMIT_MAX"`
	RateLimitWindow time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`
	RateLimitTweaks bool          `mapstructure:"RATE_LIMIT_TWEAKS"`

	// Prompt admin
	AdminToken     string        `mapstructure:"ADMIN_TOKEN"`
	PromptCacheTTL time.Duration `mapstructure:"PROMPT_CACHE_TTL"`

	// Cleanup
	CronSecret      string `mapstructure:"CRON_SECRET"`
	CleanupSchedule string `mapstructure:"CLEANUP_SCHEDULE"` // crontab expression, empty disables
}

var defaults = map[string]any{
	"SERVER_ADDRESS":       ":8080",
	"APP_ENV":              "development",
	"LOG_LEVEL":            "info",
	"LOG_FORMAT":           "console",
	"PUBLIC_BASE_URL":      "https://1stvibe.ai",
	"TRUSTED_PROXIES":      []string{},
	"DATABASE_URL":         "",
	"OPENAI_API_KEY":       "",
	"OPENAI_MODEL":         "gpt-4o",
	"OPENAI_MAX_TOKENS":    4096,
	"OPENAI_TEMPERATURE":   0.7,
	"PIXABAY_API_KEY":      "",
	"IMAGE_BATCH_SIZE":     5,
	"IMAGE_SEARCH_TIMEOUT": "8s",
	"DEMO_TTL":             "24h",
	"MAX_TWEAKS":           3,
	"SESSION_SECRET":       "",
	"SESSION_TTL":          "168h",
	"SESSION_MAX_IDS":      20,
	"COOKIE_SECURE":        false,
	"RATE_LIMIT_MAX":       3,
	"RATE_LIMIT_WINDOW":    "1h",
	"RATE_LIMIT_TWEAKS":    false,
	"ADMIN_TOKEN":          "",
	"PROMPT_CACHE_TTL":     "60s",
	"CRON_SECRET":          "",
	"CLEANUP_SCHEDULE":     "0 3 * * *",
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)     // Path to look for the config file in
	v.SetConfigName("config") // Name of config file (without extension)
	v.SetConfigType("yaml")

	// SetDefault also registers every key so AutomaticEnv can see it during Unmarshal.
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("Config file ('config.yaml') not found in specified path, relying solely on environment variables.")
		} else {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.Printf("Using configuration file: %s", v.ConfigFileUsed())
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return config, nil
}

// Validate checks required settings. Missing optional integrations only warn.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if len(c.SessionSecret) < 32 {
		log.Println("WARN: SESSION_SECRET is shorter than 32 bytes.")
	}
	if c.OpenAIKey == "" {
		log.Println("WARN: OPENAI_API_KEY is not set. Generation requests will fail.")
	}
	if c.CronSecret == "" {
		log.Println("WARN: CRON_SECRET is not set. /api/cron/cleanup is disabled.")
	}
	if c.PixabayKey == "" {
		log.Println("WARN: PIXABAY_API_KEY is not set. Images fall back to seeded placeholders.")
	}
	return nil
}
