// shared/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// CommonConfig holds infrastructure details used by MULTIPLE services.
// Field names mirror the environment variables that override them.
type CommonConfig struct {
	//Database (PostgreSQL) config
	DB_USER     string `yaml:"db_user"`
	DB_PASSWORD string `yaml:"db_password"`
	DB_NAME     string `yaml:"db_name"`
	DB_HOST     string `yaml:"db_host"`
	DB_PORT     string `yaml:"db_port"`

	// STORE_DRIVER selects the shipment document store: postgres, sqlite or memory
	STORE_DRIVER string `yaml:"store_driver"`
	SQLITE_PATH  string `yaml:"sqlite_path"`

	//Kafka config
	KAFKA_TOPIC           string `yaml:"kafka_topic"`
	KAFKA_BROKER          string `yaml:"kafka_broker"`
	KAFKA_SEARCH_TOPIC    string `yaml:"kafka_search_topic"`
	KAFKA_RECONCILE_TOPIC string `yaml:"kafka_reconcile_topic"`

	//RabbitMQ config
	RABBITMQ_USER     string `yaml:"rabbitmq_user"`
	RABBITMQ_PASSWORD string `yaml:"rabbitmq_password"`
	RABBITMQ_HOST     string `yaml:"rabbitmq_host"`
	RABBITMQ_PORT     string `yaml:"rabbitmq_port"`

	// Redis backs the recent-search history
	REDIS_ADDR     string `yaml:"redis_addr"`
	REDIS_PASSWORD string `yaml:"redis_password"`
	REDIS_DB       int    `yaml:"redis_db"`

	TEMPORAL_HOST_PORT string `yaml:"temporal_host_port"`

	GRPC_ADDR string `yaml:"grpc_addr"`
	HTTP_ADDR string `yaml:"http_addr"`

	// API_KEYS_FILE points at the YAML list of hashed API keys
	API_KEYS_FILE string `yaml:"api_keys_file"`

	SEARCH_TIMEOUT     time.Duration `yaml:"search_timeout"`
	SEARCH_CONCURRENCY int           `yaml:"search_concurrency"`

	LOG_LEVEL string `yaml:"log_level"`
}

// DefaultCommonConfig returns the values used when neither a file nor the
// environment provides one.
func DefaultCommonConfig() *CommonConfig {
	return &CommonConfig{
		DB_HOST:               "localhost",
		DB_PORT:               "5432",
		STORE_DRIVER:          "postgres",
		SQLITE_PATH:           "logisynapse.db",
		KAFKA_SEARCH_TOPIC:    "match.search.completed",
		KAFKA_RECONCILE_TOPIC: "reconcile.requested",
		REDIS_ADDR:            "localhost:6379",
		TEMPORAL_HOST_PORT:    "temporal:7233", // Default for Docker environment
		GRPC_ADDR:             ":50052",
		HTTP_ADDR:             ":8080",
		SEARCH_TIMEOUT:        10 * time.Second,
		SEARCH_CONCURRENCY:    8,
		LOG_LEVEL:             "info",
	}
}

// LoadCommonConfig returns the shared infrastructure config from defaults and
// environment variables only.
func LoadCommonConfig() *CommonConfig {
	cfg := DefaultCommonConfig()
	cfg.applyEnv()
	return cfg
}

// Load reads an optional YAML file on top of the defaults, then lets the
// environment override whatever the file set. An empty path skips the file.
func Load(path string) (*CommonConfig, error) {
	cfg := DefaultCommonConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *CommonConfig) applyEnv() {
	setString(&c.DB_USER, "DB_USER")
	setString(&c.DB_PASSWORD, "DB_PASSWORD")
	setString(&c.DB_HOST, "DB_HOST")
	setString(&c.DB_PORT, "DB_PORT")
	setString(&c.DB_NAME, "DB_NAME")

	setString(&c.STORE_DRIVER, "STORE_DRIVER")
	setString(&c.SQLITE_PATH, "SQLITE_PATH")

	setString(&c.KAFKA_TOPIC, "KAFKA_TOPIC")
	setString(&c.KAFKA_BROKER, "KAFKA_BROKER")
	setString(&c.KAFKA_SEARCH_TOPIC, "KAFKA_SEARCH_TOPIC")
	setString(&c.KAFKA_RECONCILE_TOPIC, "KAFKA_RECONCILE_TOPIC")

	setString(&c.RABBITMQ_USER, "RABBITMQ_USER")
	setString(&c.RABBITMQ_PASSWORD, "RABBITMQ_PASSWORD")
	setString(&c.RABBITMQ_HOST, "RABBITMQ_HOST")
	setString(&c.RABBITMQ_PORT, "RABBITMQ_PORT")

	setString(&c.REDIS_ADDR, "REDIS_ADDR")
	setString(&c.REDIS_PASSWORD, "REDIS_PASSWORD")
	setInt(&c.REDIS_DB, "REDIS_DB")

	setString(&c.TEMPORAL_HOST_PORT, "TEMPORAL_HOST_PORT")
	setString(&c.GRPC_ADDR, "GRPC_ADDR")
	setString(&c.HTTP_ADDR, "HTTP_ADDR")
	setString(&c.API_KEYS_FILE, "API_KEYS_FILE")

	setDuration(&c.SEARCH_TIMEOUT, "SEARCH_TIMEOUT")
	setInt(&c.SEARCH_CONCURRENCY, "SEARCH_CONCURRENCY")
	setString(&c.LOG_LEVEL, "LOG_LEVEL")
}

// GetDBURL formats the config into a PostgreSQL connection string
func (c *CommonConfig) GetDBURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DB_USER, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME)
}

// GetRabbitMQURL formats the config into a RabbitMQ connection string
func (c *CommonConfig) GetRabbitMQURL() string {
	//defaults standard ports if missing, prevents crashes
	host := c.RABBITMQ_HOST
	if host == "" {
		host = "localhost"
	}
	port := c.RABBITMQ_PORT
	if port == "" {
		port = "5672"
	}

	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.RABBITMQ_USER, c.RABBITMQ_PASSWORD, host, port)
}

// KafkaEnabled reports whether a broker is configured at all.
func (c *CommonConfig) KafkaEnabled() bool {
	return c.KAFKA_BROKER != ""
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// malformed numbers are ignored so a typo in one variable does not take the
// service down; the default or file value stays in place.
func setInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
	}
}
