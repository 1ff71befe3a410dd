package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// BridgeConfig holds all configuration for the telemetry bridge service
type BridgeConfig struct {
	// Health / metrics HTTP server
	Server ServerConfig `json:"server"`

	// Inbound MQTT subscription
	MQTT MQTTConfig `json:"mqtt"`

	// Metadata document store
	Mongo MongoConfig `json:"mongo"`

	// Outbound AMQP exchange
	AMQP AMQPConfig `json:"amqp"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// MQTTConfig holds MQTT-related configuration
type MQTTConfig struct {
	BrokerHost  string        `json:"broker_host"`
	BrokerPort  int           `json:"broker_port"`
	BrokerUser  string        `json:"broker_user"`
	BrokerPass  string        `json:"broker_pass"`
	UseTLS      bool          `json:"use_tls"`
	CACertPath  string        `json:"ca_cert_path"`
	Topics      []string      `json:"topics"`
	ClientID    string        `json:"client_id"`
	SharedGroup string        `json:"shared_group"`
	QoS         int           `json:"qos"`
	KeepAlive   time.Duration `json:"keep_alive"`
	PingTimeout time.Duration `json:"ping_timeout"`
}

// MongoConfig holds MongoDB-related configuration
type MongoConfig struct {
	URI            string        `json:"uri"`
	Database       string        `json:"database"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	QueryTimeout   time.Duration `json:"query_timeout"`
}

// AMQPConfig holds the outbound exchange configuration
type AMQPConfig struct {
	URL          string `json:"url"`
	Exchange     string `json:"exchange"`
	ExchangeType string `json:"exchange_type"`
	RoutingKey   string `json:"routing_key"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level        string `json:"level"`
	Format       string `json:"format"` // json or text
	Output       string `json:"output"` // stdout or stderr
	EnableCaller bool   `json:"enable_caller"`
}

// DefaultTopics are the sensor topics the bridge subscribes to when MQTT_TOPICS is unset
var DefaultTopics = []string{
	"+/gateway/v1/humidity",
	"+/gateway/v1/temperature",
	"+/gateway/v1/vibration",
}

// LoadBridgeConfig loads configuration for the telemetry bridge service
func LoadBridgeConfig() (*BridgeConfig, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	config := &BridgeConfig{
		Server: ServerConfig{
			Port:         getEnv("BRIDGE_PORT", "9004"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		MQTT: MQTTConfig{
			BrokerHost:  getEnv("BROKER_HOST", "localhost"),
			BrokerPort:  getInt("BROKER_PORT", 1883),
			BrokerUser:  getEnv("BROKER_USER", ""),
			BrokerPass:  getEnv("BROKER_PASS", ""),
			UseTLS:      getBool("BROKER_TLS", false),
			CACertPath:  getEnv("BROKER_CA_FILE", ""),
			Topics:      getStringSlice("MQTT_TOPICS", DefaultTopics),
			ClientID:    getEnv("MQTT_CLIENT_ID", "telemetry-bridge"),
			SharedGroup: getEnv("MQTT_SHARED_GROUP", ""),
			QoS:         getInt("MQTT_QOS", 1),
			KeepAlive:   getDuration("MQTT_KEEP_ALIVE", 30*time.Second),
			PingTimeout: getDuration("MQTT_PING_TIMEOUT", 10*time.Second),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGODB_URI", ""),
			Database:       getEnv("MONGODB_DB", "terepac"),
			ConnectTimeout: getDuration("MONGODB_CONNECT_TIMEOUT", 20*time.Second),
			QueryTimeout:   getDuration("MONGODB_QUERY_TIMEOUT", 5*time.Second),
		},
		AMQP: AMQPConfig{
			URL:          getEnv("AMQP_URL", ""),
			Exchange:     getEnv("AMQP_EXCHANGE", "telemetry"),
			ExchangeType: getEnv("AMQP_EXCHANGE_TYPE", "direct"),
			RoutingKey:   getEnv("AMQP_ROUTING_KEY", "telemetry"),
		},
		Logging: LoggingConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			Format:       getEnv("LOG_FORMAT", "text"),
			Output:       getEnv("LOG_OUTPUT", "stdout"),
			EnableCaller: getBool("LOG_ENABLE_CALLER", false),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *BridgeConfig) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if c.AMQP.URL == "" {
		return fmt.Errorf("AMQP_URL is required")
	}
	if c.AMQP.Exchange == "" {
		return fmt.Errorf("AMQP_EXCHANGE must not be empty")
	}
	if len(c.MQTT.Topics) == 0 {
		return fmt.Errorf("at least one MQTT topic is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("MQTT_QOS must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	if c.Mongo.QueryTimeout <= 0 {
		return fmt.Errorf("MONGODB_QUERY_TIMEOUT must be positive")
	}
	return nil
}

// GetMQTTBrokerURL returns the MQTT broker URL
func (c *BridgeConfig) GetMQTTBrokerURL() string {
	scheme := "tcp"
	if c.MQTT.UseTLS {
		scheme = "tcps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.MQTT.BrokerHost, c.MQTT.BrokerPort)
}

// SubscriptionTopics returns the configured topics, prefixed with the shared
// subscription group when one is set
func (c *BridgeConfig) SubscriptionTopics() []string {
	topics := make([]string, 0, len(c.MQTT.Topics))
	for _, topic := range c.MQTT.Topics {
		if c.MQTT.SharedGroup != "" {
			topic = fmt.Sprintf("$share/%s/%s", c.MQTT.SharedGroup, topic)
		}
		topics = append(topics, topic)
	}
	return topics
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return intValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if value == "1" || value == "true" || value == "TRUE" {
		return true
	}
	if value == "0" || value == "false" || value == "FALSE" {
		return false
	}
	log.Fatalf("invalid %s: %q (expected true/false or 1/0)", key, value)
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return duration
}

func getStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
