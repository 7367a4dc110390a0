package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"fellinglicence/internal/conditions/handler"
	conditionmetrics "fellinglicence/internal/conditions/metrics"
	"fellinglicence/internal/conditions/service"
	"fellinglicence/internal/conditions/store"
	"fellinglicence/internal/conditions/strategy"
	"fellinglicence/internal/platform/config"
	"fellinglicence/internal/platform/httpserver"
	"fellinglicence/internal/platform/kafka/producer"
	"fellinglicence/internal/platform/logger"
	httpmetrics "fellinglicence/internal/platform/metrics"
	redisclient "fellinglicence/internal/platform/redis"
	"fellinglicence/internal/species"
	id "fellinglicence/pkg/domain"
	"fellinglicence/pkg/platform/audit"
	"fellinglicence/pkg/platform/audit/outbox"
	"fellinglicence/pkg/platform/audit/publisher"
	auditmemory "fellinglicence/pkg/platform/audit/store/memory"
	auditpostgres "fellinglicence/pkg/platform/audit/store/postgres"
	"fellinglicence/pkg/platform/circuit"
	"fellinglicence/pkg/platform/httputil"
	"fellinglicence/pkg/platform/middleware/request"
)

const version = id.APIVersionV1

// main wires dependencies and runs the HTTP server alongside the audit
// outbox relay. Business logic lives in internal/conditions.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	src := species.Sources{RedisKey: cfg.Conditions.SpeciesCatalogKey, DB: db}
	if rdb != nil {
		defer rdb.Close()
		src.Redis = rdb
	}
	catalog, err := species.Load(ctx, src)
	if err != nil {
		return fmt.Errorf("load species catalog: %w", err)
	}
	log.Info("species catalog loaded", "species", catalog.Len())

	templates := strategy.DefaultTemplates()
	if cfg.Conditions.TemplatesPath != "" {
		if templates, err = strategy.LoadTemplates(cfg.Conditions.TemplatesPath); err != nil {
			return fmt.Errorf("load condition templates: %w", err)
		}
	}

	auditStore, outboxStore := auditStores(db)
	pubOpts := []publisher.Option{
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics()),
		publisher.WithBreaker(circuit.New("audit")),
	}
	if cfg.Audit.Buffer > 0 {
		pubOpts = append(pubOpts, publisher.WithAsyncBuffer(cfg.Audit.Buffer))
	}
	auditPublisher := publisher.NewPublisher(auditStore, pubOpts...)
	defer auditPublisher.Close()

	var (
		conditionStore service.Store
		conditionTx    service.ConditionStoreTx
	)
	if db != nil {
		pg := store.NewPostgres(db)
		conditionStore, conditionTx = pg, store.NewPostgresTx(db, cfg.Conditions.TxTimeout)
	} else {
		mem := store.NewInMemory()
		conditionStore, conditionTx = mem, service.NewShardedTx(mem, cfg.Conditions.TxTimeout)
	}

	svc, err := service.New(strategy.DefaultStrategies(templates), conditionStore, conditionTx,
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(conditionmetrics.New()),
	)
	if err != nil {
		return fmt.Errorf("build condition service: %w", err)
	}

	router := newRouter(log, handler.New(svc, catalog, log), readiness(db, rdb), httpmetrics.New())
	srv := httpserver.New(cfg.Server.Addr, router, log)

	relay, closeRelay, err := newAuditRelay(ctx, cfg.Kafka, db, outboxStore, log)
	if err != nil {
		return err
	}
	defer closeRelay()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting felling licence conditions service", "addr", cfg.Server.Addr, "persistence", persistence(db))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if relay != nil {
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}

	return g.Wait()
}

// newAuditRelay prepares the outbox relay before anything starts serving.
// It returns a nil relay when there is no outbox or no brokers.
func newAuditRelay(ctx context.Context, cfg config.KafkaConfig, db *sql.DB, source *auditpostgres.Store, log *slog.Logger) (*outbox.Relay, func(), error) {
	if source == nil || len(cfg.Brokers) == 0 {
		return nil, func() {}, nil
	}
	prod, err := producer.New(cfg.Brokers, cfg.AuditTopic, producer.WithLogger(log))
	if err != nil {
		return nil, nil, fmt.Errorf("create audit producer: %w", err)
	}
	if err := prod.EnsureTopic(ctx, 3, 1); err != nil {
		prod.Close()
		return nil, nil, fmt.Errorf("ensure audit topic: %w", err)
	}
	relay := outbox.NewRelay(source, prod, outbox.SQLTransactor{DB: db},
		outbox.WithInterval(cfg.RelayInterval),
		outbox.WithLogger(log),
	)
	return relay, prod.Close, nil
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	for _, schema := range []string{store.Schema, auditpostgres.Schema, species.Schema} {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return db, nil
}

func auditStores(db *sql.DB) (audit.Store, *auditpostgres.Store) {
	if db == nil {
		return auditmemory.NewInMemoryStore(), nil
	}
	pg := auditpostgres.New(db)
	return pg, pg
}

func newRouter(log *slog.Logger, conditions *handler.Handler, ready func(context.Context) error, httpMetrics *httpmetrics.HTTP) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(request.RequestID)
	r.Use(request.Time)
	r.Use(request.Logger(log))
	r.Use(httpMetrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := ready(r.Context()); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route(version.Prefix(), func(r chi.Router) {
		r.Use(request.Version(version))
		r.Use(request.Actor)
		conditions.Register(r)
	})
	return r
}

func readiness(db *sql.DB, rdb *redisclient.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("database: %w", err)
			}
		}
		if rdb != nil {
			if err := rdb.Health(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}
}

func persistence(db *sql.DB) string {
	if db == nil {
		return "memory"
	}
	return "postgres"
}
