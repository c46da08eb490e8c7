package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	config "github.com/bloomlane/visual-search/internal/cfg"
	"github.com/bloomlane/visual-search/internal/usecase"
	"github.com/bloomlane/visual-search/pkg/e"
	"github.com/bloomlane/visual-search/pkg/logger"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
)

const (
	eventProductIndexed = "product.indexed"
	eventBatchCompleted = "batch.completed"
)

// Producer публикует события индексации для downstream-потребителей
// (CRM, прогрев кэшей витрины). События советующие: их потеря не влияет
// на консистентность индексов, поэтому outbox здесь не нужен.
type Producer struct {
	writer *kafka.Writer
	logger logger.Logger
}

func NewProducer(cfg *config.KafkaCfg, logger logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    10,
		BatchTimeout: 500 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warnf("kafka producer error: %s", err.Error())
			}
		},
	}

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

type indexedEvent struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	ProductID int64  `json:"product_id"`
	ShopID    string `json:"shop_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type batchEvent struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	BatchID   string `json:"batch_id"`
	Total     int    `json:"total"`
	Indexed   int    `json:"indexed"`
	Failed    int    `json:"failed"`
	Timestamp int64  `json:"timestamp"`
}

func (p *Producer) ProductIndexed(ctx context.Context, productID int64, shopID string) error {
	value, err := json.Marshal(indexedEvent{
		EventID:   uuid.NewString(),
		EventType: eventProductIndexed,
		ProductID: productID,
		ShopID:    shopID,
		Timestamp: time.Now().UTC().Unix(),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(productID, 10)),
		Value: value,
	})
}

func (p *Producer) BatchCompleted(ctx context.Context, batchID string, res *usecase.BatchIndexRes) error {
	value, err := json.Marshal(batchEvent{
		EventID:   uuid.NewString(),
		EventType: eventBatchCompleted,
		BatchID:   batchID,
		Total:     res.Total,
		Indexed:   res.Indexed,
		Failed:    res.Failed,
		Timestamp: time.Now().UTC().Unix(),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(batchID),
		Value: value,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// NopProducer используется, когда брокеры не сконфигурированы.
type NopProducer struct{}

func NewNopProducer() *NopProducer {
	return &NopProducer{}
}

func (NopProducer) ProductIndexed(ctx context.Context, productID int64, shopID string) error {
	return nil
}

func (NopProducer) BatchCompleted(ctx context.Context, batchID string, res *usecase.BatchIndexRes) error {
	return nil
}
