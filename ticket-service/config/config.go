package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Port       string     `yaml:"port" env:"PORT" env-default:"5000"`
	Log        Log        `yaml:"log"`
	TheatreAPI TheatreAPI `yaml:"theatre_api"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
	Redis      Redis      `yaml:"redis"`
	Kafka      Kafka      `yaml:"kafka"`
	Database   Database   `yaml:"database"`
	Worker     Worker     `yaml:"worker"`

	// Only these proxies may set the client address through X-Forwarded-For. Empty trusts none.
	TrustedProxies []string `yaml:"trusted_proxies" env:"TRUSTED_PROXIES" env-separator:","`
}

type Log struct {
	Level    string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Mode     string `yaml:"mode" env:"LOG_MODE" env-default:"development"`
	Encoding string `yaml:"encoding" env:"LOG_ENCODING" env-default:"console"`
}

// TheatreAPI describes the upstream box office. SourceNumber and ModeOfSale are
// sent verbatim inside the encoded request parameters.
type TheatreAPI struct {
	Domain       string `yaml:"domain" env:"THEATRE_API_DOMAIN" env-default:"ctg-proxy-live.stageblocks.net"`
	SessionKey   string `yaml:"session_key" env:"THEATRE_API_SESSION_KEY" env-required:"true"`
	SourceNumber string `yaml:"source_number" env:"THEATRE_API_SOURCE_NUMBER" env-default:"15686"`
	ModeOfSale   string `yaml:"mode_of_sale" env:"THEATRE_API_MOS" env-default:"6"`

	// HTTP Connection Pool Settings
	MaxIdleConns        int `yaml:"max_idle_conns" env:"HTTP_MAX_IDLE_CONNS" env-default:"20"`
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host" env:"HTTP_MAX_IDLE_CONNS_PER_HOST" env-default:"10"`
	MaxConnsPerHost     int `yaml:"max_conns_per_host" env:"HTTP_MAX_CONNS_PER_HOST" env-default:"20"`
	IdleConnTimeout     int `yaml:"idle_conn_timeout_seconds" env:"HTTP_IDLE_CONN_TIMEOUT" env-default:"90"`
	RequestTimeout      int `yaml:"request_timeout_seconds" env:"THEATRE_API_TIMEOUT" env-default:"60"`
}

func (t *TheatreAPI) GetBaseURL() string {
	return fmt.Sprintf("https://%s/tessitura/ctglive", t.Domain)
}

type RateLimit struct {
	Enabled       bool `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"false"`
	Requests      int  `yaml:"requests" env:"RATE_LIMIT_REQUESTS" env-default:"60"`
	WindowSeconds int  `yaml:"window_seconds" env:"RATE_LIMIT_WINDOW_SECONDS" env-default:"60"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

func (r *Redis) GetRedisURL() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type Kafka struct {
	Enabled       bool     `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"false"`
	Brokers       []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092" env-separator:","`
	LookupTopic   string   `yaml:"lookup_topic" env:"KAFKA_LOOKUP_TOPIC" env-default:"availability-lookups"`
	ConsumerGroup string   `yaml:"consumer_group" env:"KAFKA_CONSUMER_GROUP" env-default:"ticket-service"`
}

type Database struct {
	User         string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password     string `yaml:"password" env:"DB_PASSWORD" env-default:"password"`
	DatabaseName string `yaml:"database_name" env:"DB_NAME" env-default:"eventbooking"`
	Host         string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port         string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	SSLMode      string `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
}

func (d *Database) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DatabaseName, d.SSLMode)
}

type Worker struct {
	MaxWorkers int `yaml:"max_workers" env:"WORKER_MAX_WORKERS" env-default:"10"`
}

func Initialise(configPath string, useEnv bool) (*Config, error) {
	cfg := &Config{}

	if !useEnv && configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := cleanenv.ReadConfig(configPath, cfg); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
			}
			return cfg, cfg.Validate()
		}
	}

	// A missing .env file is fine, the process environment is used as is.
	_ = godotenv.Load()

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment variables: %w", err)
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}

	if c.TheatreAPI.Domain == "" {
		return fmt.Errorf("theatre api domain is required")
	}

	if c.TheatreAPI.SessionKey == "" {
		return fmt.Errorf("theatre api session key is required")
	}

	if c.TheatreAPI.RequestTimeout <= 0 {
		return fmt.Errorf("invalid theatre api timeout: %d", c.TheatreAPI.RequestTimeout)
	}

	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.WindowSeconds <= 0) {
		return fmt.Errorf("invalid rate limit: %d requests per %ds", c.RateLimit.Requests, c.RateLimit.WindowSeconds)
	}

	return nil
}
