package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	_ "github.com/lib/pq"

	"github.com/jvasek/tipliga/external/auditlog"
	"github.com/jvasek/tipliga/internal/config"
	"github.com/jvasek/tipliga/internal/domain/audit"
	"github.com/jvasek/tipliga/internal/infrastructure/account"
	repocache "github.com/jvasek/tipliga/internal/infrastructure/repository/cache"
	"github.com/jvasek/tipliga/internal/infrastructure/repository/postgres"
	"github.com/jvasek/tipliga/internal/interfaces/httpapi"
	basecache "github.com/jvasek/tipliga/internal/platform/cache"
	idgen "github.com/jvasek/tipliga/internal/platform/id"
	"github.com/jvasek/tipliga/internal/platform/logging"
	"github.com/jvasek/tipliga/internal/usecase"
)

// NewHTTPServer wires the full service: postgres repositories behind the
// cache decorators, the account token verifier, the audit publisher, and
// every usecase service, all behind the HTTP router. The returned cleanup
// closes the database pool and must run after the server shuts down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := basecache.NewStore(cfg.CacheTTL)

	repos := postgres.NewRepositories(db)
	leaderboardStore := (*basecache.Store)(nil)
	if cfg.CacheEnabled {
		repos.Leagues = repocache.NewLeagueRepository(repos.Leagues, store)
		repos.Players = repocache.NewPlayerRepository(repos.Players, store)
		repos.Evaluators = repocache.NewEvaluatorRepository(repos.Evaluators, store)
		leaderboardStore = store
	}

	uow := postgres.NewUnitOfWork(db)
	invalidator := repocache.NewInvalidator(store)
	ids := idgen.NewRandomGenerator()

	var auditor audit.Recorder = auditlog.NewNopRecorder()
	if cfg.AuditWebhookEnabled {
		auditor = auditlog.NewWebhookPublisher(auditlog.WebhookPublisherConfig{
			WebhookURL:          cfg.AuditWebhookURL,
			Token:               cfg.AuditWebhookToken,
			Timeout:             cfg.AuditWebhookTimeout,
			CircuitBreaker:      cfg.AuditWebhookCircuit,
			CaptureRequestBody:  cfg.UptraceCaptureRequestBody,
			RequestBodyMaxBytes: cfg.UptraceRequestBodyMaxBytes,
		}, logger)
	}

	verifier := account.NewClient(
		&http.Client{Timeout: cfg.AccountTimeout},
		account.Config{
			BaseURL:        cfg.AccountBaseURL,
			IntrospectPath: cfg.AccountIntrospectPath,
			ServiceKey:     cfg.AccountServiceKey,
			CacheTTL:       cfg.AccountCacheTTL,
			CacheEntries:   cfg.AccountCacheEntries,
			CircuitBreaker: cfg.AccountCircuit,
		},
		logger,
	)

	leagueSvc := usecase.NewLeagueService(repos)
	betSvc := usecase.NewBetService(repos, uow, auditor, invalidator, ids, logger)
	resultSvc := usecase.NewResultService(repos, uow, auditor, invalidator, logger)
	evaluationSvc := usecase.NewEvaluationService(repos, uow, auditor, invalidator, cfg.EvaluationWorkers, logger)
	leaderboardSvc := usecase.NewLeaderboardService(repos, leaderboardStore)

	handler := httpapi.NewHandler(leagueSvc, betSvc, resultSvc, evaluationSvc, leaderboardSvc, logger)
	router := httpapi.NewRouter(
		handler,
		verifier,
		logger,
		cfg.SwaggerEnabled,
		cfg.CORSAllowedOrigins,
		cfg.InternalJobToken,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, db.Close, nil
}
