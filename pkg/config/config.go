package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Backend types for draw ingestion.
const (
	BackendNone       = "none"
	BackendKafka      = "kafka"
	BackendClickHouse = "clickhouse"
)

// Cache types for the draw cache.
const (
	CacheMemory  = "memory"
	CacheRedis   = "redis"
	CacheLayered = "layered"
	CacheNone    = "none"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Draws struct {
		APIURL         string        `yaml:"api_url"`
		StagingURL     string        `yaml:"staging_url"`
		Timeout        time.Duration `yaml:"timeout" default:"8s"`
		RetryAttempts  uint          `yaml:"retry_attempts" default:"3"`
		RetryDelay     time.Duration `yaml:"retry_delay" default:"500ms"`
		CacheTTL       time.Duration `yaml:"cache_ttl" default:"6h"`
		StaticFallback bool          `yaml:"static_fallback" default:"true"`
		StaticYears    int           `yaml:"static_years" default:"3"`
	} `yaml:"draws"`
	Cache struct {
		Type    string        `yaml:"type" default:"memory"`
		MaxSize int           `yaml:"max_size" default:"256"`
		L1TTL   time.Duration `yaml:"l1_ttl" default:"1m"`
		Redis   struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			PoolSize int    `yaml:"pool_size" default:"10"`
			Prefix   string `yaml:"prefix" default:"eurolens"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Backend struct {
		Type         string `yaml:"type" default:"none"`
		SyncSchedule string `yaml:"sync_schedule" default:"30 22 * * 2,5"`
		SyncOnStart  bool   `yaml:"sync_on_start"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"eurolens.draws"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			BatchSize    int           `yaml:"batch_size" default:"50"`
			BatchTimeout time.Duration `yaml:"batch_timeout" default:"50ms"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id" default:"eurolens-ingest"`
			Workers    int           `yaml:"workers" default:"2"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"eurolens.draws.dlq"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"1048576"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host" default:"localhost"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"eurolens"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		MaxOpenConns int           `yaml:"max_open_conns" default:"5"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"30s"`
	} `yaml:"clickhouse"`
	Generator struct {
		RatePerSecond float64 `yaml:"rate_per_second" default:"2"`
		Burst         int     `yaml:"burst" default:"5"`
	} `yaml:"generator"`
}

// Default returns a config populated from the struct tag defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides selected fields from EUROLENS_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("EUROLENS_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("EUROLENS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := getenv("EUROLENS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getenv("EUROLENS_DRAWS_API_URL"); v != "" {
		c.Draws.APIURL = v
	}
	if v := getenv("EUROLENS_DRAWS_STAGING_URL"); v != "" {
		c.Draws.StagingURL = v
	}
	if v := getenv("EUROLENS_CACHE"); v != "" {
		c.Cache.Type = v
	}
	if v := getenv("EUROLENS_REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := getenv("EUROLENS_REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := getenv("EUROLENS_BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := getenv("EUROLENS_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("EUROLENS_CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("EUROLENS_CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Cache.Type {
	case CacheMemory, CacheRedis, CacheLayered, CacheNone:
	default:
		return fmt.Errorf("cache.type must be one of memory, redis, layered, none, got '%s'", c.Cache.Type)
	}
	switch c.Backend.Type {
	case BackendNone:
	case BackendKafka:
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers cannot be empty when backend.type is kafka")
		}
		if !c.ClickHouse.Enabled && c.Kafka.Consumer.Enabled {
			return fmt.Errorf("kafka.consumer requires clickhouse.enabled")
		}
	case BackendClickHouse:
		if !c.ClickHouse.Enabled {
			return fmt.Errorf("backend.type clickhouse requires clickhouse.enabled")
		}
	default:
		return fmt.Errorf("backend.type must be 'none', 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if c.Backend.Type != BackendNone && c.Draws.APIURL == "" {
		return fmt.Errorf("draws.api_url is required for backend %s", c.Backend.Type)
	}
	if c.Draws.APIURL == "" && !c.ClickHouse.Enabled && !c.Draws.StaticFallback {
		return fmt.Errorf("no draw source configured: set draws.api_url, clickhouse.enabled or draws.static_fallback")
	}
	if c.Generator.RatePerSecond <= 0 || c.Generator.Burst <= 0 {
		return fmt.Errorf("generator rate limit must be positive")
	}
	return nil
}
