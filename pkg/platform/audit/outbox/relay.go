// Package outbox relays audit events written to the Postgres outbox table to
// Kafka and stamps them as published.
package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fellinglicence/internal/platform/kafka/producer"
	auditpostgres "fellinglicence/pkg/platform/audit/store/postgres"
	txcontext "fellinglicence/pkg/platform/tx"
)

const (
	defaultBatchSize = 100
	defaultInterval  = time.Second
)

// Source is the outbox side of the relay.
type Source interface {
	FetchUnpublished(ctx context.Context, limit int) ([]auditpostgres.OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Sink publishes relayed messages.
type Sink interface {
	Publish(ctx context.Context, msgs []producer.Message) error
}

// Transactor runs fn in a transaction carried by ctx.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Relay struct {
	source    Source
	sink      Sink
	tx        Transactor
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Relay)

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Relay) {
		r.now = now
	}
}

func NewRelay(source Source, sink Sink, tx Transactor, opts ...Option) *Relay {
	r := &Relay{
		source:    source,
		sink:      sink,
		tx:        tx,
		batchSize: defaultBatchSize,
		interval:  defaultInterval,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run relays batches until ctx is cancelled. A full batch is followed
// immediately by the next one; otherwise the relay waits one interval.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "outbox relay started", "batch_size", r.batchSize, "interval", r.interval)
	for {
		n, err := r.RelayOnce(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			r.logger.ErrorContext(ctx, "outbox relay batch failed", "error", err)
		}
		if n == r.batchSize && err == nil {
			continue
		}

		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "outbox relay stopped")
			return nil
		case <-time.After(r.interval):
		}
	}
}

// RelayOnce publishes one batch. Rows stay unpublished when the sink fails,
// so delivery is at-least-once.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	var published int
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		entries, err := r.source.FetchUnpublished(ctx, r.batchSize)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		msgs := make([]producer.Message, len(entries))
		ids := make([]uuid.UUID, len(entries))
		for i, e := range entries {
			msgs[i] = producer.Message{
				Key:   []byte(e.AggregateID),
				Value: e.Payload,
				Headers: map[string]string{
					"event_id":   e.ID.String(),
					"event_type": e.EventType,
				},
			}
			ids[i] = e.ID
		}

		if err := r.sink.Publish(ctx, msgs); err != nil {
			return err
		}
		if err := r.source.MarkPublished(ctx, ids, r.now()); err != nil {
			return err
		}
		published = len(entries)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("relay outbox batch: %w", err)
	}
	if published > 0 {
		r.logger.DebugContext(ctx, "outbox batch relayed", "count", published)
	}
	return published, nil
}

// SQLTransactor opens a *sql.Tx per batch so the SKIP LOCKED row locks are
// held until the batch is marked published.
type SQLTransactor struct {
	DB *sql.DB
}

func (t SQLTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin outbox transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}
