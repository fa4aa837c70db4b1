package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
	Events    EventsConfig    `mapstructure:"events"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Path string `mapstructure:"path"`
}

type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend   string        `mapstructure:"backend"`
	StaleTime time.Duration `mapstructure:"stale_time"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RabbitMQConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	VHost    string `mapstructure:"vhost"`
}

type EventsConfig struct {
	// Publisher is "none", "redis" or "rabbitmq".
	Publisher string `mapstructure:"publisher"`
}

type DashboardConfig struct {
	Port int    `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("storage.path", defaultStoragePath())
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.stale_time", 30*time.Second)
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("rabbitmq.port", 5672)
	v.SetDefault("rabbitmq.vhost", "/")
	v.SetDefault("events.publisher", "none")
	v.SetDefault("dashboard.port", 8090)
	v.SetDefault("dashboard.env", "development")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		// A config file is optional for the CLI; env vars and defaults
		// are enough as long as the API base URL is set.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	if err := bindEnvs(v); err != nil {
		return nil, fmt.Errorf("bind env vars: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func defaultStoragePath() string {
	return ".merovote"
}

func bindEnvs(v *viper.Viper) error {
	bindings := map[string]string{
		"api.base_url":      "MEROVOTE_API_BASE_URL",
		"api.timeout":       "MEROVOTE_API_TIMEOUT",
		"storage.path":      "MEROVOTE_STORAGE_PATH",
		"cache.backend":     "MEROVOTE_CACHE_BACKEND",
		"cache.stale_time":  "MEROVOTE_CACHE_STALE_TIME",
		"redis.host":        "MEROVOTE_REDIS_HOST",
		"redis.port":        "MEROVOTE_REDIS_PORT",
		"redis.password":    "MEROVOTE_REDIS_PASSWORD",
		"redis.db":          "MEROVOTE_REDIS_DB",
		"rabbitmq.host":     "MEROVOTE_RABBITMQ_HOST",
		"rabbitmq.port":     "MEROVOTE_RABBITMQ_PORT",
		"rabbitmq.user":     "MEROVOTE_RABBITMQ_USER",
		"rabbitmq.password": "MEROVOTE_RABBITMQ_PASSWORD",
		"rabbitmq.vhost":    "MEROVOTE_RABBITMQ_VHOST",
		"events.publisher":  "MEROVOTE_EVENTS_PUBLISHER",
		"dashboard.port":    "MEROVOTE_DASHBOARD_PORT",
		"dashboard.env":     "MEROVOTE_DASHBOARD_ENV",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be greater than 0")
	}
	if cfg.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}

	switch cfg.Cache.Backend {
	case "memory":
	case "redis":
		if cfg.Redis.Host == "" {
			return fmt.Errorf("redis.host is required for the redis cache backend")
		}
		if cfg.Redis.Port <= 0 {
			return fmt.Errorf("redis.port must be greater than 0")
		}
	default:
		return fmt.Errorf("cache.backend must be memory or redis")
	}
	if cfg.Cache.StaleTime <= 0 {
		return fmt.Errorf("cache.stale_time must be greater than 0")
	}

	switch cfg.Events.Publisher {
	case "none":
	case "redis":
		if cfg.Redis.Host == "" {
			return fmt.Errorf("redis.host is required for the redis event publisher")
		}
	case "rabbitmq":
		if cfg.RabbitMQ.Host == "" {
			return fmt.Errorf("rabbitmq.host is required for the rabbitmq event publisher")
		}
		if cfg.RabbitMQ.User == "" {
			return fmt.Errorf("rabbitmq.user is required for the rabbitmq event publisher")
		}
	default:
		return fmt.Errorf("events.publisher must be none, redis or rabbitmq")
	}

	if cfg.Dashboard.Port <= 0 {
		return fmt.Errorf("dashboard.port must be greater than 0")
	}

	return nil
}
