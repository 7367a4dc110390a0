// Package service orchestrates condition calculation: strategy dispatch,
// the coverage check, auditing and the clear-then-save unit of work.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"fellinglicence/internal/conditions/metrics"
	"fellinglicence/internal/conditions/models"
	"fellinglicence/internal/conditions/strategy"
	id "fellinglicence/pkg/domain"
	dErrors "fellinglicence/pkg/domain-errors"
	"fellinglicence/pkg/platform/audit"
	"fellinglicence/pkg/platform/sentinel"
	"fellinglicence/pkg/requestcontext"
)

// Store persists condition records for an application.
type Store interface {
	ClearConditionsForApplication(ctx context.Context, applicationID id.ApplicationID) error
	SaveConditionsForApplication(ctx context.Context, applicationID id.ApplicationID, records []models.ConditionRecord) error
	GetConditionsForApplication(ctx context.Context, applicationID id.ApplicationID) ([]models.ConditionRecord, error)
}

// AuditPublisher emits audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

const tracerName = "fellinglicence/internal/conditions/service"

type Service struct {
	strategies     []strategy.Strategy
	store          Store
	tx             ConditionStoreTx
	auditPublisher AuditPublisher
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(strategies []strategy.Strategy, store Store, tx ConditionStoreTx, opts ...Option) (*Service, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("at least one condition strategy is required")
	}
	if store == nil {
		return nil, fmt.Errorf("condition store is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("condition store transaction is required")
	}

	svc := &Service{
		strategies: strategies,
		store:      store,
		tx:         tx,
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

type calculatedPayload struct {
	IsDraft         bool `json:"isDraft"`
	ConditionsCount int  `json:"conditionsCount"`
}

type calculationFailedPayload struct {
	IsDraft bool   `json:"isDraft"`
	Error   string `json:"error"`
}

type savedPayload struct {
	ConditionsCount int `json:"conditionsCount"`
}

type saveFailedPayload struct {
	Error string `json:"error"`
}

// Calculate runs every strategy over the operations it owns and, unless
// isDraft, replaces the application's stored conditions with the result.
// Operations owned by no strategy produce nothing. A failing strategy aborts
// the whole calculation and nothing is persisted.
func (s *Service) Calculate(ctx context.Context, applicationID id.ApplicationID, operations []models.RestockingOperation, isDraft bool) (*models.ConditionsResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "conditions.Calculate", trace.WithAttributes(
		attribute.String("application_id", applicationID.String()),
		attribute.Bool("draft", isDraft),
		attribute.Int("operations", len(operations)),
	))
	defer span.End()
	defer func() { s.metrics.ObserveCalculateLatency(isDraft, time.Since(start)) }()

	if err := validateInput(applicationID, operations); err != nil {
		s.metrics.IncrementOutcome(metrics.OutcomeInvalidArgs, isDraft)
		recordSpanError(span, err)
		s.logAudit(ctx, audit.EventConditionsCalculationFailed, applicationID,
			calculationFailedPayload{IsDraft: isDraft, Error: err.Error()},
			"is_draft", isDraft, "error", err)
		return nil, err
	}

	conditions, err := s.calculate(operations)
	if err != nil {
		s.metrics.IncrementOutcome(metrics.OutcomeCalcFailed, isDraft)
		recordSpanError(span, err)
		s.logAudit(ctx, audit.EventConditionsCalculationFailed, applicationID,
			calculationFailedPayload{IsDraft: isDraft, Error: err.Error()},
			"is_draft", isDraft, "error", err)
		return nil, err
	}

	s.metrics.IncrementOutcome(metrics.OutcomeCalculated, isDraft)
	s.logAudit(ctx, audit.EventConditionsCalculated, applicationID,
		calculatedPayload{IsDraft: isDraft, ConditionsCount: len(conditions)},
		"is_draft", isDraft, "conditions_count", len(conditions))

	if isDraft {
		return &models.ConditionsResult{Conditions: conditions}, nil
	}

	if err := s.persist(ctx, applicationID, conditions); err != nil {
		s.metrics.IncrementOutcome(metrics.OutcomeSaveFailed, isDraft)
		recordSpanError(span, err)
		s.logAudit(ctx, audit.EventConditionsSaveFailed, applicationID,
			saveFailedPayload{Error: err.Error()},
			"error", err)
		return nil, storageError(err, "failed to save licence conditions")
	}

	s.metrics.IncrementOutcome(metrics.OutcomeSaved, isDraft)
	s.logAudit(ctx, audit.EventConditionsSaved, applicationID,
		savedPayload{ConditionsCount: len(conditions)},
		"conditions_count", len(conditions))

	return &models.ConditionsResult{Conditions: conditions}, nil
}

// RetrieveExisting returns the stored conditions for an application. An
// application with no stored conditions yields an empty list.
func (s *Service) RetrieveExisting(ctx context.Context, applicationID id.ApplicationID) (*models.ConditionsResult, error) {
	ctx, span := s.tracer.Start(ctx, "conditions.RetrieveExisting", trace.WithAttributes(
		attribute.String("application_id", applicationID.String()),
	))
	defer span.End()

	if applicationID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "application id is required")
	}

	records, err := s.store.GetConditionsForApplication(ctx, applicationID)
	if err != nil {
		recordSpanError(span, err)
		return nil, storageError(err, "failed to load licence conditions")
	}

	conditions := make([]models.CalculatedCondition, 0, len(records))
	for _, r := range records {
		conditions = append(conditions, r.ToCondition())
	}
	return &models.ConditionsResult{Conditions: conditions}, nil
}

// calculate dispatches owned operations to each strategy in order and checks
// that every owned compartment lands in exactly one condition.
func (s *Service) calculate(operations []models.RestockingOperation) ([]models.CalculatedCondition, error) {
	conditions := []models.CalculatedCondition{}
	owned := make(map[id.CompartmentID]struct{})

	for _, st := range s.strategies {
		var subset []models.RestockingOperation
		for _, op := range operations {
			if st.AppliesToOperation(op) {
				subset = append(subset, op)
				owned[op.RestockingCompartmentID] = struct{}{}
			}
		}
		if len(subset) == 0 {
			continue
		}

		produced, err := st.CalculateCondition(subset)
		if err != nil {
			return nil, err
		}
		s.metrics.AddConditions(st.Name(), len(produced))
		conditions = append(conditions, produced...)
	}

	if err := checkCoverage(owned, conditions); err != nil {
		return nil, err
	}
	return conditions, nil
}

// checkCoverage enforces that each owned compartment appears in exactly one
// condition and that no condition names a compartment outside the input.
func checkCoverage(owned map[id.CompartmentID]struct{}, conditions []models.CalculatedCondition) error {
	seen := make(map[id.CompartmentID]int, len(owned))
	for _, c := range conditions {
		if len(c.AppliesToCompartmentIDs) == 0 {
			return dErrors.New(dErrors.CodeInternal, fmt.Sprintf("condition %q applies to no compartments", c.ConditionName))
		}
		for _, cid := range c.AppliesToCompartmentIDs {
			if _, ok := owned[cid]; !ok {
				return dErrors.New(dErrors.CodeInternal, fmt.Sprintf("condition %q applies to unknown compartment %s", c.ConditionName, cid))
			}
			seen[cid]++
		}
	}
	for cid := range owned {
		switch n := seen[cid]; {
		case n == 0:
			return dErrors.New(dErrors.CodeInternal, fmt.Sprintf("compartment %s produced no condition", cid))
		case n > 1:
			return dErrors.New(dErrors.CodeInternal, fmt.Sprintf("compartment %s appears in %d conditions", cid, n))
		}
	}
	return nil
}

// persist replaces the application's conditions in one unit of work.
func (s *Service) persist(ctx context.Context, applicationID id.ApplicationID, conditions []models.CalculatedCondition) error {
	ctx, span := s.tracer.Start(ctx, "conditions.persist")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.ObservePersistLatency(time.Since(start)) }()

	now := requestcontext.Now(ctx)
	records := make([]models.ConditionRecord, 0, len(conditions))
	for _, c := range conditions {
		records = append(records, models.NewConditionRecord(applicationID, c, now))
	}

	err := s.tx.RunInTx(WithApplication(ctx, applicationID), func(ctx context.Context, store Store) error {
		if err := store.ClearConditionsForApplication(ctx, applicationID); err != nil {
			return fmt.Errorf("clear conditions: %w", err)
		}
		if err := store.SaveConditionsForApplication(ctx, applicationID, records); err != nil {
			return fmt.Errorf("save conditions: %w", err)
		}
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
	}
	return err
}

// logAudit logs the event and emits it to the audit publisher. Emission
// failures are logged and never fail the caller.
func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, applicationID id.ApplicationID, payload any, attrs ...any) {
	requestID := requestcontext.RequestID(ctx)
	actor := requestcontext.UserID(ctx)

	args := append(attrs,
		"event", string(event),
		"log_type", "audit",
		"application_id", applicationID.String(),
	)
	if requestID != "" {
		args = append(args, "request_id", requestID)
	}
	if !actor.IsNil() {
		args = append(args, "actor_id", actor.String())
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}

	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Timestamp:     requestcontext.Now(ctx),
		Action:        string(event),
		ApplicationID: applicationID,
		ActorID:       actor,
		RequestID:     requestID,
		Payload:       audit.NewPayload(payload),
	})
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

func validateInput(applicationID id.ApplicationID, operations []models.RestockingOperation) error {
	if applicationID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "application id is required")
	}
	for i, op := range operations {
		if err := op.Validate(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvalidInput, fmt.Sprintf("operation %d", i))
		}
	}
	return nil
}

// storageError keeps timeouts and unavailability distinguishable from other
// storage failures.
func storageError(err error, msg string) error {
	switch {
	case dErrors.HasCode(err, dErrors.CodeTimeout), errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
