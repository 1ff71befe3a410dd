package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Config"
	errs "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Errors"
	mqtmodels "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Models"
)

type declareCall struct {
	name, kind string
	durable    bool
}

type publishCall struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	declareErr error
	publishErr error
	closed     bool
	declares   []declareCall
	publishes  []publishCall
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.declares = append(c.declares, declareCall{name: name, kind: kind, durable: durable})
	return c.declareErr
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishes = append(c.publishes, publishCall{exchange: exchange, key: key, msg: msg})
	return c.publishErr
}

func (c *fakeChannel) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

type fakeOpener struct {
	channels []*fakeChannel
	opened   int
	err      error
}

func (o *fakeOpener) Channel() (Channel, error) {
	if o.err != nil {
		return nil, o.err
	}
	ch := o.channels[o.opened]
	o.opened++
	return ch, nil
}

func testConfig() config.AMQPConfig {
	return config.AMQPConfig{Exchange: "telemetry", ExchangeType: "direct", RoutingKey: "telemetry"}
}

func testRecord() mqtmodels.TelemetryRecord {
	return mqtmodels.TelemetryRecord{
		Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Tag:       mqtmodels.RecordTag{Full: "L1_AS1_S1"},
		Data:      mqtmodels.RecordData{Unit: "C", Values: mqtmodels.RecordValues{Point: 21.5}},
	}
}

func TestPublish_DeclaresAndPublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := NewAMQPPublisher(&fakeOpener{channels: []*fakeChannel{ch}}, testConfig(), "telemetry-bridge")

	require.NoError(t, p.Publish(context.Background(), testRecord()))

	require.Len(t, ch.declares, 1)
	assert.Equal(t, declareCall{name: "telemetry", kind: "direct", durable: true}, ch.declares[0])

	require.Len(t, ch.publishes, 1)
	call := ch.publishes[0]
	assert.Equal(t, "telemetry", call.exchange)
	assert.Equal(t, "telemetry", call.key)
	assert.Equal(t, amqp.Persistent, call.msg.DeliveryMode)
	assert.Equal(t, "application/json", call.msg.ContentType)
	assert.Equal(t, "telemetry-bridge", call.msg.AppId)
	assert.NotEmpty(t, call.msg.MessageId)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(call.msg.Body, &doc))
	assert.Equal(t, "L1_AS1_S1", doc["tag"].(map[string]interface{})["full"])
}

func TestPublish_ReusesChannel(t *testing.T) {
	ch := &fakeChannel{}
	opener := &fakeOpener{channels: []*fakeChannel{ch}}
	p := NewAMQPPublisher(opener, testConfig(), "bridge")

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Publish(context.Background(), testRecord()))
	}

	assert.Equal(t, 1, opener.opened)
	assert.Len(t, ch.declares, 3)
	assert.Len(t, ch.publishes, 3)
}

func TestPublish_DeclareFailureSkipsPublish(t *testing.T) {
	broken := &fakeChannel{declareErr: errors.New("access refused")}
	healthy := &fakeChannel{}
	opener := &fakeOpener{channels: []*fakeChannel{broken, healthy}}
	p := NewAMQPPublisher(opener, testConfig(), "bridge")

	err := p.Publish(context.Background(), testRecord())
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrPublish)
	assert.Empty(t, broken.publishes)
	assert.True(t, broken.closed)

	require.NoError(t, p.Publish(context.Background(), testRecord()))
	assert.Equal(t, 2, opener.opened)
	assert.Len(t, healthy.publishes, 1)
}

func TestPublish_PublishFailureIsNotRetried(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p := NewAMQPPublisher(&fakeOpener{channels: []*fakeChannel{ch}}, testConfig(), "bridge")

	err := p.Publish(context.Background(), testRecord())
	assert.ErrorIs(t, err, errs.ErrPublish)
	assert.Len(t, ch.publishes, 1)
}

func TestPublish_ChannelOpenFailure(t *testing.T) {
	p := NewAMQPPublisher(&fakeOpener{err: errors.New("connection closed")}, testConfig(), "bridge")

	err := p.Publish(context.Background(), testRecord())
	assert.ErrorIs(t, err, errs.ErrPublish)
	assert.Contains(t, err.Error(), "channel")
}

func TestPublish_ReopensClosedChannel(t *testing.T) {
	first := &fakeChannel{}
	second := &fakeChannel{}
	opener := &fakeOpener{channels: []*fakeChannel{first, second}}
	p := NewAMQPPublisher(opener, testConfig(), "bridge")

	require.NoError(t, p.Publish(context.Background(), testRecord()))
	first.closed = true
	require.NoError(t, p.Publish(context.Background(), testRecord()))

	assert.Equal(t, 2, opener.opened)
	assert.Len(t, second.publishes, 1)
}

func TestClose(t *testing.T) {
	ch := &fakeChannel{}
	p := NewAMQPPublisher(&fakeOpener{channels: []*fakeChannel{ch}}, testConfig(), "bridge")

	require.NoError(t, p.Close())
	require.NoError(t, p.Publish(context.Background(), testRecord()))
	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
