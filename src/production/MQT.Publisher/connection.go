package publisher

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	config "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Config"
)

// Channel is the part of *amqp.Channel the publisher needs
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// ChannelOpener opens channels on an established connection
type ChannelOpener interface {
	Channel() (Channel, error)
}

type connectionOpener struct {
	conn *amqp.Connection
}

// NewConnectionOpener adapts an AMQP connection to ChannelOpener
func NewConnectionOpener(conn *amqp.Connection) ChannelOpener {
	return &connectionOpener{conn: conn}
}

func (o *connectionOpener) Channel() (Channel, error) {
	ch, err := o.conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// Dial opens the AMQP connection used for publishing
func Dial(cfg config.AMQPConfig, clientName string) (*amqp.Connection, error) {
	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName(clientName)

	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{
		Heartbeat:  10 * time.Second,
		Locale:     "en_US",
		Properties: props,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to connect to AMQP broker: %w", err)
	}
	return conn, nil
}
