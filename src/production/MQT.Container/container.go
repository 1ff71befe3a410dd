package container

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	amqp "github.com/rabbitmq/amqp091-go"
	config "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Config"
	"gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.IngestorService/health"
	logger "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Logger"
	publisher "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Publisher"
	"go.mongodb.org/mongo-driver/mongo"
)

// BridgeContainer manages dependencies for the telemetry bridge and their lifecycle
type BridgeContainer struct {
	config   *config.BridgeConfig
	logger   *logger.Logger
	registry *prometheus.Registry

	mongoClient *mongo.Client
	amqpConn    *amqp.Connection

	// Mutex for thread-safe access
	mu sync.Mutex

	// Cleanup functions, run in reverse order on Shutdown
	cleanupFuncs []func() error
}

// NewBridgeContainer loads configuration and sets up logging and the metrics registry
func NewBridgeContainer() (*BridgeContainer, error) {
	cfg, err := config.LoadBridgeConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load bridge configuration: %w", err)
	}

	return newBridgeContainer(cfg, logger.NewLogger(&cfg.Logging)), nil
}

func newBridgeContainer(cfg *config.BridgeConfig, log *logger.Logger) *BridgeContainer {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &BridgeContainer{
		config:   cfg,
		logger:   log,
		registry: registry,
	}
}

// GetConfig returns the configuration
func (c *BridgeContainer) GetConfig() *config.BridgeConfig {
	return c.config
}

// GetLogger returns the logger
func (c *BridgeContainer) GetLogger() *logger.Logger {
	return c.logger
}

// GetRegistry returns the prometheus registry served on /metrics
func (c *BridgeContainer) GetRegistry() *prometheus.Registry {
	return c.registry
}

// GetMongoClient returns the MongoDB client, connecting on first use
func (c *BridgeContainer) GetMongoClient() (*mongo.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mongoClient == nil {
		client, err := health.ConnectMongoWithTimeout(c.config.Mongo)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		c.mongoClient = client
		c.logger.Logger.Info().Str("database", c.config.Mongo.Database).Msg("Connected to MongoDB")
	}

	return c.mongoClient, nil
}

// GetMongoDatabase returns the metadata database
func (c *BridgeContainer) GetMongoDatabase() (*mongo.Database, error) {
	client, err := c.GetMongoClient()
	if err != nil {
		return nil, err
	}
	return client.Database(c.config.Mongo.Database), nil
}

// GetAMQPConnection returns the AMQP connection, dialing on first use.
// The connection is not re-dialed if the broker closes it; readiness reports it instead.
func (c *BridgeContainer) GetAMQPConnection() (*amqp.Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.amqpConn == nil {
		conn, err := publisher.Dial(c.config.AMQP, c.config.MQTT.ClientID)
		if err != nil {
			return nil, err
		}
		c.amqpConn = conn

		closed := conn.NotifyClose(make(chan *amqp.Error, 1))
		go func() {
			if err, ok := <-closed; ok && err != nil {
				c.logger.WithError(err).Error("AMQP connection closed by broker")
			}
		}()
		c.logger.Logger.Info().Str("exchange", c.config.AMQP.Exchange).Msg("Connected to AMQP broker")
	}

	return c.amqpConn, nil
}

// AddCleanupFunc adds a cleanup function
func (c *BridgeContainer) AddCleanupFunc(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}

// Shutdown runs the cleanup functions in reverse order, then closes the
// AMQP connection and the MongoDB client
func (c *BridgeContainer) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	c.mu.Lock()
	cleanup := c.cleanupFuncs
	c.cleanupFuncs = nil
	amqpConn := c.amqpConn
	mongoClient := c.mongoClient
	c.amqpConn, c.mongoClient = nil, nil
	c.mu.Unlock()

	for i := len(cleanup) - 1; i >= 0; i-- {
		if err := cleanup[i](); err != nil {
			c.logger.ErrorWithError(err, "Error during cleanup")
		}
	}

	if amqpConn != nil && !amqpConn.IsClosed() {
		if err := amqpConn.Close(); err != nil {
			c.logger.ErrorWithError(err, "Error closing AMQP connection")
		}
	}

	if mongoClient != nil {
		if err := mongoClient.Disconnect(ctx); err != nil {
			c.logger.ErrorWithError(err, "Error disconnecting from MongoDB")
		}
	}

	c.logger.Info("Container shutdown complete")
	return nil
}
