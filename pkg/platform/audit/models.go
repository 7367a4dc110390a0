package audit

import (
	"context"
	"encoding/json"
	"time"

	id "fellinglicence/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance: the
	// licence conditions that were actually recorded against an application.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity such as draft previews.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category      EventCategory
	Timestamp     time.Time
	Action        string
	ApplicationID id.ApplicationID
	// ActorID is the user who triggered the calculation, if known.
	ActorID   id.UserID
	RequestID string
	Reason    string
	// Payload is arbitrary JSON describing the outcome (counts, draft flag, error).
	Payload json.RawMessage
}

type AuditEvent string

const (
	EventConditionsCalculated        AuditEvent = "conditions_calculated"
	EventConditionsCalculationFailed AuditEvent = "conditions_calculation_failed"
	EventConditionsSaved             AuditEvent = "conditions_saved"
	EventConditionsSaveFailed        AuditEvent = "conditions_save_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventConditionsSaved:      CategoryCompliance,
	EventConditionsSaveFailed: CategoryCompliance,

	EventConditionsCalculated:        CategoryOperations,
	EventConditionsCalculationFailed: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByApplication(ctx context.Context, applicationID id.ApplicationID) ([]Event, error)
}

// NewPayload marshals v for Event.Payload. Marshal failures yield an empty
// object rather than dropping the event.
func NewPayload(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}
