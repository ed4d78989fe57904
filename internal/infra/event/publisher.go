// Package event はコミット済みの取引を外部に知らせる。
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"innledger/internal/domain/model"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// 取引IDをキーにするので、同じ取引のイベントは同じパーティションに順番に入る。
type KafkaPublisher struct {
	w messageWriter
}

func NewKafkaPublisher(broker string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev model.TransactionEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}

	//トレースをヘッダに載せる
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := make([]kafka.Header, 0, len(carrier)+1)
	headers = append(headers, kafka.Header{Key: "event_type", Value: []byte(ev.Type)})
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	msg := kafka.Message{
		Key:     []byte(strconv.FormatInt(ev.Transaction.ID, 10)),
		Value:   payload,
		Headers: headers,
		Time:    ev.OccurredAt,
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// KAFKA_BROKER未設定のとき
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.TransactionEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
