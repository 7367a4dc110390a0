package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fellinglicence/internal/conditions/handler"
	"fellinglicence/internal/conditions/service"
	"fellinglicence/internal/conditions/store"
	"fellinglicence/internal/conditions/strategy"
	"fellinglicence/internal/platform/config"
	httpmetrics "fellinglicence/internal/platform/metrics"
	"fellinglicence/internal/species"
	"fellinglicence/pkg/platform/audit"
	"fellinglicence/pkg/platform/audit/publisher"
	auditmemory "fellinglicence/pkg/platform/audit/store/memory"
	auditpostgres "fellinglicence/pkg/platform/audit/store/postgres"
	"fellinglicence/pkg/platform/middleware/request"
	"fellinglicence/pkg/testutil"
)

type routerFixture struct {
	router http.Handler
	audit  *auditmemory.InMemoryStore
}

func newFixture(t *testing.T, ready func(context.Context) error) routerFixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := store.NewInMemory()
	auditStore := auditmemory.NewInMemoryStore()

	svc, err := service.New(strategy.DefaultStrategies(strategy.DefaultTemplates()), mem,
		service.NewShardedTx(mem, service.DefaultTxTimeout),
		service.WithLogger(log),
		service.WithAuditPublisher(publisher.NewPublisher(auditStore)),
	)
	require.NoError(t, err)

	router := newRouter(log, handler.New(svc, species.Default(), log), ready,
		httpmetrics.NewWith(prometheus.NewRegistry()))
	return routerFixture{router: router, audit: auditStore}
}

func calculateBody(compartmentID string) handler.CalculateRequest {
	return handler.CalculateRequest{Operations: []handler.OperationRequest{{
		RestockingCompartmentID:     compartmentID,
		RestockingCompartmentNumber: "4",
		FellingCompartmentNumber:    "4",
		FellingOperationType:        "clear_felling",
		RestockingProposalType:      "restock_with_coppice_regrowth",
		RestockingDensity:           1600,
		Species:                     []handler.SpeciesRequest{{Code: "HAZ", Percentage: 100}},
	}}}
}

func TestRouter_CalculateSaveAndRetrieve(t *testing.T) {
	f := newFixture(t, func(context.Context) error { return nil })
	applicationID := uuid.NewString()
	compartmentID := uuid.NewString()
	actorID := uuid.NewString()

	testutil.Given(t, "saved conditions for an application", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost,
			"/v1/applications/"+applicationID+"/conditions/calculate", calculateBody(compartmentID))
		req.Header.Set(request.HeaderActorID, actorID)
		req.Header.Set(request.HeaderRequestID, "req-e2e-1")

		rr := testutil.DoRequest(f.router, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "req-e2e-1", rr.Header().Get(request.HeaderRequestID))
		resp := testutil.Decode[handler.ConditionsResponse](t, rr)
		require.Len(t, resp.Conditions, 1)
		assert.Equal(t, "Restock with coppice regrowth", resp.Conditions[0].ConditionName)
	})

	testutil.When(t, "the conditions are retrieved", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodGet,
			"/v1/applications/"+applicationID+"/conditions", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		resp := testutil.Decode[handler.ConditionsResponse](t, rr)
		require.Len(t, resp.Conditions, 1)
		assert.Equal(t, []string{compartmentID}, resp.Conditions[0].AppliesToCompartmentIDs)
	})

	testutil.Then(t, "the save is audited against the acting user", func(t *testing.T) {
		events, err := f.audit.ListByAction(context.Background(), audit.EventConditionsSaved)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, actorID, events[0].ActorID.String())
		assert.Equal(t, "req-e2e-1", events[0].RequestID)
	})
}

func TestRouter_RejectsMalformedActor(t *testing.T) {
	f := newFixture(t, func(context.Context) error { return nil })

	req := testutil.NewJSONRequest(t, http.MethodPost,
		"/v1/applications/"+uuid.NewString()+"/conditions/calculate", calculateBody(uuid.NewString()))
	req.Header.Set(request.HeaderActorID, "not-a-user")

	testutil.AssertStatusAndError(t, testutil.DoRequest(f.router, req), http.StatusBadRequest, "bad_request")
}

func TestRouter_RoutesAreVersioned(t *testing.T) {
	f := newFixture(t, func(context.Context) error { return nil })

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodGet,
		"/applications/"+uuid.NewString()+"/conditions", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_Health(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		f := newFixture(t, func(context.Context) error { return nil })

		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ok", testutil.Decode[map[string]string](t, rr)["status"])
	})

	t.Run("dependency down", func(t *testing.T) {
		f := newFixture(t, func(context.Context) error { return errors.New("database: connection refused") })

		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, "unavailable", testutil.Decode[map[string]string](t, rr)["status"])
	})
}

func TestRouter_ExposesMetrics(t *testing.T) {
	f := newFixture(t, func(context.Context) error { return nil })

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestNewAuditRelay(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("disabled without an outbox", func(t *testing.T) {
		relay, closeRelay, err := newAuditRelay(context.Background(), config.KafkaConfig{Brokers: []string{"localhost:9092"}, AuditTopic: "audit"}, nil, nil, log)
		require.NoError(t, err)
		assert.Nil(t, relay)
		closeRelay()
	})

	t.Run("disabled without brokers", func(t *testing.T) {
		relay, closeRelay, err := newAuditRelay(context.Background(), config.KafkaConfig{AuditTopic: "audit"}, nil, auditpostgres.New(nil), log)
		require.NoError(t, err)
		assert.Nil(t, relay)
		closeRelay()
	})

	t.Run("producer failure is returned before serving", func(t *testing.T) {
		relay, _, err := newAuditRelay(context.Background(), config.KafkaConfig{Brokers: []string{"localhost:9092"}}, nil, auditpostgres.New(nil), log)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "create audit producer")
		assert.Nil(t, relay)
	})
}
