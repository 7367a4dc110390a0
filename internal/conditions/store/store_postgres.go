package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"fellinglicence/internal/conditions/models"
	id "fellinglicence/pkg/domain"
	"fellinglicence/pkg/platform/sentinel"
	txcontext "fellinglicence/pkg/platform/tx"
)

// Schema is the DDL for the licence_conditions table.
//
//go:embed schema.sql
var Schema string

// PostgresStore persists condition records in PostgreSQL. Calls made with a
// transaction in ctx run inside it.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ClearConditionsForApplication(ctx context.Context, applicationID id.ApplicationID) error {
	query := `DELETE FROM licence_conditions WHERE application_id = $1`
	if _, err := txcontext.ExecutorFrom(ctx, s.db).ExecContext(ctx, query, uuid.UUID(applicationID)); err != nil {
		return classify(err, "clear licence conditions")
	}
	return nil
}

func (s *PostgresStore) SaveConditionsForApplication(ctx context.Context, applicationID id.ApplicationID, records []models.ConditionRecord) error {
	query := `
		INSERT INTO licence_conditions
			(id, application_id, position, applies_to, condition_name, conditions_text, parameters, created_at)
		VALUES ($1, $2, $3, $4::uuid[], $5, $6, $7, $8)
	`
	exec := txcontext.ExecutorFrom(ctx, s.db)
	for i, r := range records {
		params, err := json.Marshal(r.Parameters)
		if err != nil {
			return fmt.Errorf("marshal condition parameters: %w", err)
		}
		if r.Parameters == nil {
			params = []byte("[]")
		}
		_, err = exec.ExecContext(ctx, query,
			uuid.UUID(r.ID),
			uuid.UUID(applicationID),
			i,
			pq.Array(compartmentStrings(r.AppliesToCompartmentIDs)),
			r.ConditionName,
			pq.Array(r.ConditionsText),
			params,
			r.CreatedAt,
		)
		if err != nil {
			return classify(err, "insert licence condition")
		}
	}
	return nil
}

func (s *PostgresStore) GetConditionsForApplication(ctx context.Context, applicationID id.ApplicationID) ([]models.ConditionRecord, error) {
	query := `
		SELECT id, applies_to::text[], condition_name, conditions_text, parameters, created_at
		FROM licence_conditions
		WHERE application_id = $1
		ORDER BY position ASC
	`
	rows, err := txcontext.ExecutorFrom(ctx, s.db).QueryContext(ctx, query, uuid.UUID(applicationID))
	if err != nil {
		return nil, classify(err, "query licence conditions")
	}
	defer rows.Close()

	records := []models.ConditionRecord{}
	for rows.Next() {
		var (
			recordID  uuid.UUID
			appliesTo []string
			params    []byte
			r         models.ConditionRecord
		)
		if err := rows.Scan(&recordID, pq.Array(&appliesTo), &r.ConditionName,
			pq.Array(&r.ConditionsText), &params, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan licence condition: %w", err)
		}
		r.ID = id.ConditionID(recordID)
		r.ApplicationID = applicationID
		if r.AppliesToCompartmentIDs, err = parseCompartments(appliesTo); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(params, &r.Parameters); err != nil {
			return nil, fmt.Errorf("unmarshal condition parameters: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "iterate licence conditions")
	}
	return records, nil
}

func compartmentStrings(ids []id.CompartmentID) []string {
	out := make([]string, len(ids))
	for i, c := range ids {
		out[i] = c.String()
	}
	return out
}

func parseCompartments(raw []string) ([]id.CompartmentID, error) {
	out := make([]id.CompartmentID, 0, len(raw))
	for _, s := range raw {
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse applies_to compartment %q: %w", s, err)
		}
		out = append(out, id.CompartmentID(u))
	}
	return out, nil
}

// classify maps connection-level failures to sentinel.ErrUnavailable so
// callers can tell an outage from a rejected statement.
func classify(err error, op string) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 08: connection exception, 57P: operator intervention (shutdown).
		class := string(pqErr.Code.Class())
		return class == "08" || class == "57"
	}
	return false
}
