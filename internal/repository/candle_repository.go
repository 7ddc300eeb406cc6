package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/internal/domain/repository"
	pkgkafka "FinCast/pkg/kafka"
	applogger "FinCast/pkg/logger"
)

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseStorage) Store(ctx context.Context, c *models.Candle) error {
	q := fmt.Sprintf("INSERT INTO %s (bucket, symbol, open, high, low, close, vol) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		c.Bucket,
		c.Symbol,
		c.Open,
		c.High,
		c.Low,
		c.Close,
		c.Volume,
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	// Batch insert using multi-row VALUES to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(candles); start += chunkSize {
		end := start + chunkSize
		if end > len(candles) {
			end = len(candles)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, c := range candles[start:end] {
			if c == nil || c.Symbol == "" || c.Bucket.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				c.Bucket,
				c.Symbol,
				c.Open,
				c.High,
				c.Low,
				c.Close,
				c.Volume,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (bucket, symbol, open, high, low, close, vol) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Candle, error) {
	q := fmt.Sprintf("SELECT bucket, symbol, open, high, low, close, vol FROM %s WHERE symbol = ? AND bucket >= ? AND bucket <= ? ORDER BY bucket DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candles []*models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Bucket, &c.Symbol, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		candles = append(candles, &c)
	}
	return candles, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka candle publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func candleMessage(c *models.Candle) map[string]interface{} {
	return map[string]interface{}{
		"symbol": c.Symbol,
		"t":      c.Bucket.Unix(),
		"o":      c.Open,
		"h":      c.High,
		"l":      c.Low,
		"c":      c.Close,
		"v":      c.Volume,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, c *models.Candle) error {
	return p.producer.Publish(ctx, p.topic, []byte(c.Symbol), candleMessage(c))
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(candles))
	for i, c := range candles {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(c.Symbol),
			Value: candleMessage(c),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// KafkaSummaryPublisher hands prediction summaries to the alerts topic.
// Delivery channels past the topic (mail, chat, webhooks) are external.
type KafkaSummaryPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSummaryPublisher creates a Kafka summary publisher.
func NewKafkaSummaryPublisher(producer *pkgkafka.Producer, topic string) repository.SummaryPublisher {
	return &KafkaSummaryPublisher{producer: producer, topic: topic}
}

func (p *KafkaSummaryPublisher) PublishSummary(ctx context.Context, s *models.PredictionSummary) error {
	if s == nil {
		return fmt.Errorf("summary is nil")
	}
	return p.producer.Publish(ctx, p.topic, []byte(s.Timestamp.UTC().Format(time.RFC3339)), s)
}

func (p *KafkaSummaryPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// KafkaLogPublisher forwards aggregated error logs to a Kafka topic.
type KafkaLogPublisher struct {
	producer *pkgkafka.Producer
}

var _ applogger.Publisher = (*KafkaLogPublisher)(nil)

// NewKafkaLogPublisher creates the sink the log collector flushes into.
func NewKafkaLogPublisher(producer *pkgkafka.Producer) *KafkaLogPublisher {
	return &KafkaLogPublisher{producer: producer}
}

func (p *KafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}
