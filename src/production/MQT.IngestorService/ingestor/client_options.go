package mqtingestor

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	config "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Config"
)

// clientOptions builds the paho options for the inbound subscription.
// Handlers run on their own goroutines so slow lookups don't block the client.
func clientOptions(cfg *config.BridgeConfig) (*mqtt.ClientOptions, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.GetMQTTBrokerURL()).
		SetClientID(cfg.MQTT.ClientID).
		SetOrderMatters(false).
		SetKeepAlive(cfg.MQTT.KeepAlive).
		SetPingTimeout(cfg.MQTT.PingTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(false)

	if cfg.MQTT.BrokerUser != "" {
		opts.SetUsername(cfg.MQTT.BrokerUser)
		opts.SetPassword(cfg.MQTT.BrokerPass)
	}

	if cfg.MQTT.UseTLS {
		tlsCfg, err := tlsConfig(cfg.MQTT.CACertPath)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	return opts, nil
}

func tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file %s", caFile)
	}
	cfg.RootCAs = cp
	return cfg, nil
}

// subscriptionFilters maps every configured topic to the configured QoS
func subscriptionFilters(cfg *config.BridgeConfig) map[string]byte {
	filters := make(map[string]byte, len(cfg.MQTT.Topics))
	for _, topic := range cfg.SubscriptionTopics() {
		filters[topic] = byte(cfg.MQTT.QoS)
	}
	return filters
}
