package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "fellinglicence/pkg/domain"
	audit "fellinglicence/pkg/platform/audit"
	txcontext "fellinglicence/pkg/platform/tx"
)

// Schema is the DDL for the outbox table.
//
//go:embed schema.sql
var Schema string

// Store implements audit.Store using the transactional outbox pattern.
// Events are written to the outbox table and relayed to Kafka by the outbox relay.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// outboxPayload is the JSON structure published to Kafka.
type outboxPayload struct {
	ID            string          `json:"id"`
	Category      string          `json:"category"`
	Timestamp     string          `json:"timestamp"`
	Action        string          `json:"action"`
	ApplicationID string          `json:"application_id"`
	ActorID       string          `json:"actor_id,omitempty"`
	RequestID     string          `json:"request_id,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// OutboxEntry is an unpublished outbox row handed to the relay.
type OutboxEntry struct {
	ID          uuid.UUID
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	// Category is always derived from the action; the map in audit is the source of truth.
	category := audit.AuditEvent(event.Action).Category()

	payload := outboxPayload{
		ID:            eventID.String(),
		Category:      string(category),
		Timestamp:     event.Timestamp.Format(time.RFC3339Nano),
		Action:        event.Action,
		ApplicationID: event.ApplicationID.String(),
		RequestID:     event.RequestID,
		Reason:        event.Reason,
		Payload:       event.Payload,
	}
	if !event.ActorID.IsNil() {
		payload.ActorID = event.ActorID.String()
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query,
		eventID,
		"application",
		event.ApplicationID.String(),
		event.Action,
		payloadBytes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListByApplication returns the events recorded for an application, oldest first.
func (s *Store) ListByApplication(ctx context.Context, applicationID id.ApplicationID) ([]audit.Event, error) {
	query := `
		SELECT payload
		FROM outbox
		WHERE aggregate_type = 'application' AND aggregate_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, applicationID.String())
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event, err := decodePayload(raw)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// FetchUnpublished returns up to limit outbox rows not yet relayed, oldest first.
// Rows are locked with SKIP LOCKED so concurrent relays do not double-publish.
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]OutboxEntry, error) {
	query := `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var e OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps relayed outbox rows in one round trip.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, u := range ids {
		raw[i] = u.String()
	}
	query := `UPDATE outbox SET published_at = $2 WHERE id = ANY($1::uuid[])`
	if _, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query, pq.Array(raw), at); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

func decodePayload(raw []byte) (audit.Event, error) {
	var p outboxPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return audit.Event{}, fmt.Errorf("decode audit payload: %w", err)
	}
	event := audit.Event{
		Category:  audit.EventCategory(p.Category),
		Action:    p.Action,
		RequestID: p.RequestID,
		Reason:    p.Reason,
		Payload:   p.Payload,
	}
	if ts, err := time.Parse(time.RFC3339Nano, p.Timestamp); err == nil {
		event.Timestamp = ts
	}
	if appID, err := uuid.Parse(p.ApplicationID); err == nil {
		event.ApplicationID = id.ApplicationID(appID)
	}
	if p.ActorID != "" {
		if actor, err := uuid.Parse(p.ActorID); err == nil {
			event.ActorID = id.UserID(actor)
		}
	}
	return event, nil
}
