package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	config "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Config"
	errs "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Errors"
	mqtmodels "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Models"
)

const contentTypeJSON = "application/json"

// AMQPPublisher publishes telemetry records to a durable exchange.
//
// One channel is shared by all publishes and reopened after a failure.
// Each record gets exactly one publish attempt.
type AMQPPublisher struct {
	opener       ChannelOpener
	exchange     string
	exchangeType string
	routingKey   string
	appID        string

	mu sync.Mutex
	ch Channel
}

func NewAMQPPublisher(opener ChannelOpener, cfg config.AMQPConfig, appID string) *AMQPPublisher {
	return &AMQPPublisher{
		opener:       opener,
		exchange:     cfg.Exchange,
		exchangeType: cfg.ExchangeType,
		routingKey:   cfg.RoutingKey,
		appID:        appID,
	}
}

// Publish declares the exchange and publishes record as persistent JSON
func (p *AMQPPublisher) Publish(ctx context.Context, record mqtmodels.TelemetryRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return errs.Publish("marshal", err)
	}

	ch, err := p.channel()
	if err != nil {
		return errs.Publish("channel", err)
	}

	if err := ch.ExchangeDeclare(p.exchange, p.exchangeType, true, false, false, false, nil); err != nil {
		p.discard(ch)
		return errs.Publish("exchange declare", err)
	}

	msg := amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		AppId:        p.appID,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg); err != nil {
		p.discard(ch)
		return errs.Publish("publish", err)
	}
	return nil
}

// Close closes the cached channel, if any
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return nil
	}
	err := p.ch.Close()
	p.ch = nil
	if err != nil && err != amqp.ErrClosed {
		return fmt.Errorf("failed to close AMQP channel: %w", err)
	}
	return nil
}

// channel returns the cached channel, opening a new one when there is none
// or the broker closed it
func (p *AMQPPublisher) channel() (Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}

	ch, err := p.opener.Channel()
	if err != nil {
		return nil, err
	}
	p.ch = ch
	return ch, nil
}

// discard drops ch from the cache so the next publish opens a fresh one
func (p *AMQPPublisher) discard(ch Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == ch {
		_ = ch.Close()
		p.ch = nil
	}
}
