package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/shopgrid/internal/catalog/domain"
)

func testProduct() *domain.Product {
	return &domain.Product{
		ID:        "0b7a6f0e-6d43-4c4e-8f5c-0d3c1e2b9a11",
		Title:     "Lamp",
		Price:     19.99,
		Category:  "Home",
		Image:     "http://img/lamp.png",
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPublisher_PublishProductCreated(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, cfg)

	var sent *sarama.ProducerMessage
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		sent = msg
		return nil
	})

	p := NewPublisherWithProducer(producer, "catalog-events")
	require.NoError(t, p.PublishProductCreated(context.Background(), testProduct()))
	require.NoError(t, p.Close())

	require.NotNil(t, sent)
	assert.Equal(t, "catalog-events", sent.Topic)

	key, err := sent.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, testProduct().ID, string(key))

	raw, err := sent.Value.Encode()
	require.NoError(t, err)
	var event ProductCreatedEvent
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, EventTypeProductCreated, event.EventType)
	assert.Equal(t, "Lamp", event.Title)
	assert.Equal(t, "Home", event.Category)
	assert.NotEmpty(t, event.EventID)

	headers := map[string]string{}
	for _, h := range sent.Headers {
		headers[string(h.Key)] = string(h.Value)
	}
	assert.Equal(t, EventTypeProductCreated, headers["event_type"])
	assert.Equal(t, event.EventID, headers["event_id"])
}

func TestPublisher_SendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(errors.New("leader not available"))

	p := NewPublisherWithProducer(producer, "")
	err := p.PublishProductCreated(context.Background(), testProduct())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
	require.NoError(t, p.Close())
}
