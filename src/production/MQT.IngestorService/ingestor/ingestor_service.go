package mqtingestor

import (
	"context"
	"fmt"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Config"
	logger "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Logger"
	metrics "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Metrics"
	mqtmodels "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Models"
	interfaces "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Repository/Interfaces"
)

// RecordPublisher hands an assembled record to the outbound queue
type RecordPublisher interface {
	Publish(ctx context.Context, record mqtmodels.TelemetryRecord) error
}

// Ingestor subscribes to sensor topics and runs every message through the pipeline
type Ingestor struct {
	cfg        *config.BridgeConfig
	repo       interfaces.MetadataRepository
	publisher  RecordPublisher
	metrics    *metrics.Metrics
	logger     *logger.Logger
	mqttClient mqtt.Client

	ctx      context.Context
	mu       sync.RWMutex
	stopping bool
	inflight sync.WaitGroup
}

func New(cfg *config.BridgeConfig, repo interfaces.MetadataRepository, publisher RecordPublisher, m *metrics.Metrics, log *logger.Logger) *Ingestor {
	return &Ingestor{
		cfg:       cfg,
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    log.WithComponent("ingestor"),
		ctx:       context.Background(),
	}
}

// Start connects to the broker and subscribes on every (re)connect.
// ctx is the parent context of every message handler.
func (i *Ingestor) Start(ctx context.Context) error {
	opts, err := clientOptions(i.cfg)
	if err != nil {
		return err
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		i.logger.Logger.Error().Err(err).Msg("MQTT connection lost")
	}
	opts.OnReconnecting = func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		i.logger.WithField("broker", i.cfg.GetMQTTBrokerURL()).Info("Reconnecting to MQTT broker")
	}
	opts.OnConnect = func(c mqtt.Client) {
		filters := subscriptionFilters(i.cfg)
		i.logger.Logger.Info().Strs("topics", i.cfg.SubscriptionTopics()).Msg("MQTT connected, subscribing to topics")
		if token := c.SubscribeMultiple(filters, i.onMessage); token.Wait() && token.Error() != nil {
			i.logger.Logger.Error().Err(token.Error()).Strs("topics", i.cfg.SubscriptionTopics()).Msg("Failed to subscribe to MQTT topics")
		}
	}

	i.ctx = ctx
	i.mqttClient = mqtt.NewClient(opts)
	if tk := i.mqttClient.Connect(); tk.Wait() && tk.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", tk.Error())
	}

	return nil
}

// Stop disconnects from the broker and waits for in-flight messages to finish
func (i *Ingestor) Stop() {
	i.mu.Lock()
	i.stopping = true
	i.mu.Unlock()

	if i.mqttClient != nil && i.mqttClient.IsConnected() {
		i.mqttClient.Disconnect(500)
	}
	i.inflight.Wait()
}

func (i *Ingestor) IsConnected() bool {
	return i.mqttClient != nil && i.mqttClient.IsConnected()
}

func (i *Ingestor) onMessage(_ mqtt.Client, m mqtt.Message) {
	i.mu.RLock()
	if i.stopping {
		i.mu.RUnlock()
		i.logger.Logger.Debug().Str("topic", m.Topic()).Msg("Ingestor stopping, dropping MQTT message")
		return
	}
	i.inflight.Add(1)
	i.mu.RUnlock()
	defer i.inflight.Done()

	i.logger.Logger.Debug().Str("topic", m.Topic()).Int("payload_size", len(m.Payload())).Msg("Received MQTT message")
	i.HandleMessage(i.ctx, m.Topic(), m.Payload())
}
