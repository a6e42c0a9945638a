package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apper-canvas/stylehub-crypto-chip/pkg/logger"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestNewEvent(t *testing.T) {
	event, err := NewEvent("notification.created", "sess-1", "stylehub", map[string]string{"message": "Cart cleared"})
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "sess-1", string(event.PartitionKey()))

	var payload map[string]string
	require.NoError(t, event.DecodeData(&payload))
	assert.Equal(t, "Cart cleared", payload["message"])

	_, err = NewEvent("bad", "k", "stylehub", make(chan int))
	assert.Error(t, err)
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	event, err := NewEvent("notification.created", "sess-1", "stylehub", 1)
	require.NoError(t, err)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	event.WithCorrelationID("corr-1").At(at)

	raw, err := event.Marshal()
	require.NoError(t, err)

	restored, err := DecodeEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, event.ID, restored.ID)
	assert.Equal(t, "corr-1", restored.CorrelationID)
	assert.True(t, at.Equal(restored.OccurredAt))

	_, err = DecodeEvent([]byte("{"))
	assert.Error(t, err)
}

func TestEvent_AnonymousPartitionKey(t *testing.T) {
	event, err := NewEvent("notification.created", "", "stylehub", nil)
	require.NoError(t, err)
	assert.Equal(t, event.ID, string(event.PartitionKey()))
}

func TestProducer_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w, []string{"localhost:9092"}, logger.Discard())

	event, err := NewEvent("notification.created", "sess-7", "stylehub", "hi")
	require.NoError(t, err)
	event.WithCorrelationID("corr-7")

	require.NoError(t, p.Publish(context.Background(), "stylehub.notification", event))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "stylehub.notification", msg.Topic)
	assert.Equal(t, "sess-7", string(msg.Key))
	assert.Equal(t, "notification.created", headerValue(msg, "event_type"))
	assert.Equal(t, "corr-7", headerValue(msg, "correlation_id"))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducer_PublishError(t *testing.T) {
	w := &recordingWriter{err: errors.New("leader not available")}
	p := NewProducerWithWriter(w, nil, logger.Discard())

	event, err := NewEvent("notification.created", "sess-7", "stylehub", "hi")
	require.NoError(t, err)

	err = p.Publish(context.Background(), "stylehub.notification", event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}

func TestProducer_PingWithoutBrokers(t *testing.T) {
	p := NewProducerWithWriter(&recordingWriter{}, nil, logger.Discard())
	assert.Error(t, p.Ping(context.Background()))
}
