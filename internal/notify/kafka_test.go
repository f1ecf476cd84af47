package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublishEncodesEvent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var e map[string]any
		if err := json.Unmarshal(val, &e); err != nil {
			return err
		}
		if e["eventType"] != TypeOrderPlaced {
			return errors.New("unexpected event type")
		}
		if e["eventId"] == "" {
			return errors.New("missing event id")
		}
		return nil
	})

	k := NewKafkaWithProducer(producer, "", zerolog.Nop())
	err := k.Publish(context.Background(), Event{Type: TypeOrderPlaced, Key: "order-1", Payload: map[string]string{"orderId": "order-1"}})
	require.NoError(t, err)
	require.NoError(t, k.Close())
}

func TestKafkaPublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	k := NewKafkaWithProducer(producer, "orders", zerolog.Nop())
	err := k.Publish(context.Background(), Event{Type: TypeOrderPlaced})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, k.Close())
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Publish(context.Background(), Event{Type: TypePasswordReset}))
	r.Err = errors.New("down")
	assert.Error(t, r.Publish(context.Background(), Event{Type: TypePasswordReset}))
	assert.Len(t, r.Events(), 1)
}
