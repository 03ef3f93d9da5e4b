package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultSessionSecret = "change-this-in-production-min-32-characters"

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
}

type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,oneof=development staging production"`
	Version     string `mapstructure:"version"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"port" validate:"required"`
	Host            string        `mapstructure:"host"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadSize   int64         `mapstructure:"max_upload_size"`
}

// APIConfig points at the CareNest REST server. Each client appends its own
// path segment (user/, bookings/, verifications/) to BaseURL.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	Backend    string        `mapstructure:"backend" validate:"required,oneof=memory redis mongo"`
	CookieName string        `mapstructure:"cookie_name" validate:"required"`
	Secret     string        `mapstructure:"secret" validate:"required,min=32"`
	TTL        time.Duration `mapstructure:"ttl"`
	Secure     bool          `mapstructure:"secure"`
}

type MongoConfig struct {
	URI             string        `mapstructure:"uri"`
	Database        string        `mapstructure:"database"`
	Collection      string        `mapstructure:"collection"`
	MaxPoolSize     uint64        `mapstructure:"max_pool_size"`
	MinPoolSize     uint64        `mapstructure:"min_pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	ServerSelection time.Duration `mapstructure:"server_selection_timeout"`
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=pretty json"`
	Output string `mapstructure:"output" validate:"oneof=stdout stderr file"`
	File   string `mapstructure:"file"`
}

// Load config data from file
func LoadConfig(configPath ...string) (*Config, error) {
	// .env is optional, values already in the environment win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Ignoring unreadable .env file: %v", err)
	}

	v := viper.New()
	for _, p := range configPath {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetEnvPrefix("CARENEST")
	v.AutomaticEnv()

	setDefaults(v)

	// try to read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Println("Config file not found. Using environment variables and defaults.")
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	bindEnvVars(v)

	// parse configuration data
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// validate conf data
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Println("Configuration loaded and validated successfully")
	return &cfg, nil
}

// set defaults data for config
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "carenest-portal")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")

	// HTTP defaults
	v.SetDefault("http.port", "5173")
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("http.write_timeout", "15s")
	v.SetDefault("http.shutdown_timeout", "5s")
	v.SetDefault("http.max_upload_size", 16<<20) // three 5MB documents plus form overhead

	// Upstream API defaults
	v.SetDefault("api.base_url", "http://127.0.0.1:8000/api")
	v.SetDefault("api.timeout", "10s")

	// Session defaults
	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.cookie_name", "carenest_session")
	v.SetDefault("session.secret", defaultSessionSecret)
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("session.secure", false)

	// MongoDB defaults
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "carenest_portal")
	v.SetDefault("mongo.collection", "sessions")
	v.SetDefault("mongo.max_pool_size", 50)
	v.SetDefault("mongo.min_pool_size", 2)
	v.SetDefault("mongo.connect_timeout", "10s")
	v.SetDefault("mongo.server_selection_timeout", "5s")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.min_idle_conns", 5)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "pretty")
	v.SetDefault("log.output", "stdout")
}

// bind Env variables to config fields
func bindEnvVars(v *viper.Viper) {
	envBindings := map[string]string{
		// App
		"app.name":        "APP_NAME",
		"app.environment": "APP_ENV",
		"app.version":     "APP_VERSION",

		// HTTP
		"http.port": "HTTP_PORT",
		"http.host": "HTTP_HOST",

		// API
		"api.base_url": "API_BASE_URL",
		"api.timeout":  "API_TIMEOUT",

		// Session
		"session.backend": "SESSION_BACKEND",
		"session.secret":  "SESSION_SECRET",
		"session.ttl":     "SESSION_TTL",
		"session.secure":  "SESSION_SECURE",

		// MongoDB
		"mongo.uri":      "MONGO_URI",
		"mongo.database": "MONGO_DATABASE",

		// Redis
		"redis.host":     "REDIS_HOST",
		"redis.port":     "REDIS_PORT",
		"redis.password": "REDIS_PASSWORD",
		"redis.db":       "REDIS_DB",

		// Log
		"log.level":  "LOG_LEVEL",
		"log.format": "LOG_FORMAT",
		"log.output": "LOG_OUTPUT",
		"log.file":   "LOG_FILE",
	}

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
}

// validate data for config
func validateConfig(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}

	if cfg.App.Environment == "production" {
		if cfg.Session.Secret == defaultSessionSecret {
			return fmt.Errorf("session secret must be changed in production")
		}
		if !cfg.Session.Secure {
			return fmt.Errorf("session cookie must be secure in production")
		}
	}

	switch cfg.Session.Backend {
	case "redis":
		if cfg.Redis.Host == "" || cfg.Redis.Port == "" {
			return fmt.Errorf("redis host and port are required for the redis session backend")
		}
	case "mongo":
		if cfg.Mongo.URI == "" || cfg.Mongo.Database == "" {
			return fmt.Errorf("MongoDB URI and database are required for the mongo session backend")
		}
	}

	if cfg.Log.Output == "file" && cfg.Log.File == "" {
		return fmt.Errorf("log file path is required when log output is file")
	}

	return nil
}

// ServiceURL joins the API base URL with a service path segment.
func (c *Config) ServiceURL(segment string) string {
	return strings.TrimRight(c.API.BaseURL, "/") + "/" + strings.Trim(segment, "/") + "/"
}
