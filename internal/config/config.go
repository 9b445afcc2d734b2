// Package config loads service settings from an optional YAML file and the
// environment. Environment variables win over the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMemory    = "memory"
	DriverMySQL     = "mysql"
	DriverRedis     = "redis"
	DriverSimulator = "simulator"
	DriverHTTP      = "http"
)

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type MySQLConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type PSPConfig struct {
	Driver      string        `yaml:"driver"`
	BaseURL     string        `yaml:"base_url"`
	SuccessRate float64       `yaml:"success_rate"`
	FraudRate   float64       `yaml:"fraud_rate"`
	Latency     time.Duration `yaml:"latency"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Config struct {
	ServiceName     string      `yaml:"service_name"`
	Env             string      `yaml:"env"`
	Log             LogConfig   `yaml:"log"`
	HTTP            HTTPConfig  `yaml:"http"`
	CatalogDriver   string      `yaml:"catalog_driver"`
	InventoryDriver string      `yaml:"inventory_driver"`
	MySQL           MySQLConfig `yaml:"mysql"`
	Redis           RedisConfig `yaml:"redis"`
	PSP             PSPConfig   `yaml:"psp"`
	Kafka           KafkaConfig `yaml:"kafka"`
	JaegerEndpoint  string      `yaml:"jaeger_endpoint"`
	SeedDemoData    bool        `yaml:"seed_demo_data"`
}

// Default is a self-contained setup: in-memory stores and a simulated PSP.
func Default() Config {
	return Config{
		ServiceName: "minishop-checkout",
		Env:         "dev",
		Log:         LogConfig{Level: "info"},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			RequestTimeout:  5 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		CatalogDriver:   DriverMemory,
		InventoryDriver: DriverMemory,
		MySQL: MySQLConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    10,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		PSP: PSPConfig{
			Driver:      DriverSimulator,
			SuccessRate: 0.7,
			FraudRate:   0.2,
		},
		Kafka:        KafkaConfig{Topic: "order-events"},
		SeedDemoData: true,
	}
}

// Load reads CONFIG_FILE when set, then applies environment overrides and
// validates the result.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("SERVICE_NAME", &c.ServiceName)
	str("ENV", &c.Env)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FILE", &c.Log.File)
	str("HTTP_ADDR", &c.HTTP.Addr)
	str("CATALOG_DRIVER", &c.CatalogDriver)
	str("INVENTORY_DRIVER", &c.InventoryDriver)
	str("MYSQL_DSN", &c.MySQL.DSN)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("PSP_DRIVER", &c.PSP.Driver)
	str("PSP_BASE_URL", &c.PSP.BaseURL)
	str("KAFKA_TOPIC", &c.Kafka.Topic)
	str("JAEGER_ENDPOINT", &c.JaegerEndpoint)

	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v, ok := lookup("PSP_SUCCESS_RATE"); ok && v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: PSP_SUCCESS_RATE: %w", err)
		}
		c.PSP.SuccessRate = rate
	}
	if v, ok := lookup("HTTP_REQUEST_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: HTTP_REQUEST_TIMEOUT: %w", err)
		}
		c.HTTP.RequestTimeout = d
	}
	if v, ok := lookup("SEED_DEMO_DATA"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: SEED_DEMO_DATA: %w", err)
		}
		c.SeedDemoData = b
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	if c.ServiceName == "" {
		errs = append(errs, errors.New("service_name is required"))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.HTTP.RequestTimeout < 0 || c.HTTP.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("http timeouts must not be negative"))
	}

	switch c.CatalogDriver {
	case DriverMemory:
	case DriverMySQL:
		if c.MySQL.DSN == "" {
			errs = append(errs, errors.New("mysql.dsn is required for the mysql catalog"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown catalog_driver %q", c.CatalogDriver))
	}

	switch c.InventoryDriver {
	case DriverMemory:
	case DriverRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis inventory"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown inventory_driver %q", c.InventoryDriver))
	}

	switch c.PSP.Driver {
	case DriverSimulator:
		if c.PSP.SuccessRate < 0 || c.PSP.SuccessRate > 1 || c.PSP.FraudRate < 0 || c.PSP.FraudRate > 1 {
			errs = append(errs, errors.New("psp rates must be within [0, 1]"))
		}
	case DriverHTTP:
		if c.PSP.BaseURL == "" {
			errs = append(errs, errors.New("psp.base_url is required for the http psp"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown psp.driver %q", c.PSP.Driver))
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
