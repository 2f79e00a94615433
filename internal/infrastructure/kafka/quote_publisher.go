package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaQuotePublisher struct {
	writer messageWriter
}

func NewKafkaQuotePublisher(brokers []string, topic string) *KafkaQuotePublisher {
	return &KafkaQuotePublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (k *KafkaQuotePublisher) PublishQuote(ctx context.Context, quote domain.RateQuote) error {
	event := NewQuoteEvent(quote)
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key()),
		Value: msg,
		Time:  time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to publish quote event: %w", err)
	}
	return nil
}

func (k *KafkaQuotePublisher) Close() error {
	return k.writer.Close()
}
