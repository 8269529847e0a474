package kafka

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/DRSN-tech/catalog-admin/internal/cfg"
	"github.com/DRSN-tech/catalog-admin/internal/usecase"
	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/DRSN-tech/catalog-admin/pkg/logger"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Producer публикует события изменения товаров в Kafka. Ключ сообщения равен id товара,
// поэтому события одного товара попадают в одну партицию и читаются по порядку.
type Producer struct {
	writer *kafka.Writer
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    1,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		cfg:    cfg,
	}
}

// PublishProductEvent синхронно отправляет событие. Вызывается после коммита транзакции.
func (p *Producer) PublishProductEvent(ctx context.Context, event *usecase.ProductEvent) error {
	value, err := GetPayloadBytes(event)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ProductID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	p.logger.Debugf("published %s for product %d", event.Type, event.ProductID)
	return nil
}

// EnsureTopic создаёт топик, если его ещё нет.
func (p *Producer) EnsureTopic(timeout time.Duration) error {
	conn, err := kafka.Dial(p.cfg.NetworkMode, p.cfg.Brokers[0])
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(p.cfg.Topic)
	if err == nil && len(partitions) > 0 {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.CreateTopics(kafka.TopicConfig{
			Topic:             p.cfg.Topic,
			NumPartitions:     p.cfg.Partitions,
			ReplicationFactor: p.cfg.ReplicationFactor,
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), fmt.Errorf("failed to create topic %s: %w", p.cfg.Topic, err))
		}
		p.logger.Infof("kafka topic %q created", p.cfg.Topic)
		return nil
	case <-time.After(timeout):
		_ = conn.Close()
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("timeout: %v, topic: %s", timeout, p.cfg.Topic))
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// GetPayloadBytes сериализует событие в protobuf (google.protobuf.Struct).
// Цена и время события передаются строками: числа в Struct хранятся как float64.
func GetPayloadBytes(event *usecase.ProductEvent) ([]byte, error) {
	fields := map[string]any{
		"event_id":    uuid.NewString(),
		"event_type":  string(event.Type),
		"product_id":  event.ProductID,
		"occurred_at": event.OccurredAt.UTC().Format(time.RFC3339Nano),
	}

	if d := event.Product; d != nil {
		photos := make([]any, 0, len(d.Photos))
		for _, ph := range d.Photos {
			photos = append(photos, ph)
		}

		product := map[string]any{
			"id":              d.ID,
			"name":            d.Name,
			"price":           d.Price.StringFixed(2),
			"category_id":     d.CategoryID,
			"manufacturer_id": d.ManufacturerID,
			"photos":          photos,
		}
		if d.Description != nil {
			product["description"] = *d.Description
		}
		if d.CategoryName != nil {
			product["category_name"] = *d.CategoryName
		}
		if d.ManufacturerName != nil {
			product["manufacturer_name"] = *d.ManufacturerName
		}
		fields["product"] = product
	}

	payload, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return proto.Marshal(payload)
}
