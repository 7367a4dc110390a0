// Package producer publishes records to Kafka with franz-go.
package producer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is one record to publish. Key drives partitioning.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

type Producer struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type Option func(*Producer)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Producer) {
		p.logger = logger
	}
}

// New connects to brokers and produces to topic by default.
func New(brokers []string, topic string, opts ...Option) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	p := &Producer{client: client, topic: topic, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// EnsureTopic creates the topic when it does not exist yet.
func (p *Producer) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	admin := kadm.NewClient(p.client)
	resp, err := admin.CreateTopic(ctx, partitions, replicationFactor, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", p.topic, resp.Err)
	}
	p.logger.InfoContext(ctx, "kafka topic ready", "topic", p.topic, "partitions", partitions)
	return nil
}

// Publish produces msgs synchronously and returns the first failure.
func (p *Producer) Publish(ctx context.Context, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}
	records := make([]*kgo.Record, 0, len(msgs))
	for _, m := range msgs {
		r := &kgo.Record{Topic: p.topic, Key: m.Key, Value: m.Value}
		for k, v := range m.Headers {
			r.Headers = append(r.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
		}
		records = append(records, r)
	}
	if err := p.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}

// Ping checks broker connectivity.
func (p *Producer) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

func (p *Producer) Close() {
	p.client.Close()
}
