package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Toromb/gym-app-sub000/internal/cache"
	"github.com/Toromb/gym-app-sub000/internal/config"
	"github.com/Toromb/gym-app-sub000/internal/db"
	"github.com/Toromb/gym-app-sub000/internal/locker"
	"github.com/Toromb/gym-app-sub000/internal/musclestats/catalog"
	"github.com/Toromb/gym-app-sub000/internal/musclestats/fatigue"
	"github.com/Toromb/gym-app-sub000/internal/musclestats/ledger"
	"github.com/Toromb/gym-app-sub000/internal/musclestats/loadstate"
	musclestatsmcp "github.com/Toromb/gym-app-sub000/internal/musclestats/mcp"
	"github.com/Toromb/gym-app-sub000/internal/telemetry/metrics"
	"github.com/Toromb/gym-app-sub000/internal/telemetry/tracing"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// Server wires the musclestats engine to postgres, redis and telemetry.
// Commands build one and use its repos and Engine directly.
type Server struct {
	config            *config.Config
	dbPool            *pgxpool.Pool
	redisClient       *redis.Client
	metricsHttpServer *http.Server
	// set when redis is disabled
	localLocker *locker.LocalLocker

	CatalogRepo *catalog.Repo
	Catalog     *catalog.CachedCatalog
	Ledger      *ledger.Repo
	States      *loadstate.Repo
	Engine      *fatigue.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config        *config.Config
	DBUser        string
	DBPassword    string
	RedisPassword string
	// ServiceName names the process in traces and metrics.
	ServiceName string
	// Migrate applies the schema on start.
	Migrate bool
}

func NewServer(ctx context.Context, params NewServerParams) (_ *Server, err error) {
	cfg := params.Config
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	loadParams, err := fatigue.NewParams(cfg.Load)
	if err != nil {
		return nil, fmt.Errorf("load params: %w", err)
	}

	location := time.UTC
	if cfg.TimeZone != "" {
		location, err = time.LoadLocation(cfg.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("load time zone [%s]: %w", cfg.TimeZone, err)
		}
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(cfg.TracingEnabled, params.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("tracing setup: %w", err)
	}

	s := &Server{
		config:       cfg,
		otelShutdown: otelShutdown,
	}
	defer func() {
		if err != nil {
			s.GracefulShutdown()
		}
	}()

	s.dbPool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         params.DBUser,
		DBPassword:     params.DBPassword,
		TracingEnabled: cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}
	if err := s.dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	if params.Migrate {
		if err := db.Migrate(ctx, s.dbPool); err != nil {
			return nil, err
		}
		log.Debugln("musclestats schema applied")
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		s.dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	s.promRegistry = metrics.SetupPrometheus(pgxpoolCollector)
	s.metricsManager = metrics.NewManager("musclestats", params.ServiceName, s.promRegistry)

	var (
		studentLocker  locker.Locker
		rebuildLimiter fatigue.RebuildLimiter
	)
	if cfg.RedisEnabled {
		s.redisClient = db.NewRedisClient(ctx, db.NewRedisClientParams{
			Host:           cfg.RedisHost,
			Port:           cfg.RedisPort,
			Password:       params.RedisPassword,
			TracingEnabled: cfg.TracingEnabled,
		})
		studentLocker = locker.NewRedisLocker(s.redisClient, loadParams.LockTTL)
		rebuildLimiter = redis_rate.NewLimiter(s.redisClient)
	} else {
		log.Warnln("redis disabled: student locks are per process, rebuilds are not throttled")
		s.localLocker = locker.NewLocalLocker()
		studentLocker = s.localLocker
	}

	s.CatalogRepo = catalog.NewRepo(s.dbPool)
	s.Catalog = catalog.NewCachedCatalog(
		s.CatalogRepo,
		cache.NewFreeCache(catalog.DefaultCacheSizeBytes),
		catalog.DefaultCacheTTLSeconds,
		s.metricsManager,
	)
	s.Ledger = ledger.NewRepo(s.dbPool)
	s.States = loadstate.NewRepo(s.dbPool)

	s.Engine, err = fatigue.NewService(fatigue.NewServiceParams{
		Catalog:        s.Catalog,
		Ledger:         s.Ledger,
		States:         s.States,
		Locker:         studentLocker,
		RebuildLimiter: rebuildLimiter,
		Params:         loadParams,
		Metrics:        s.metricsManager,
		Location:       location,
	})
	if err != nil {
		return nil, fmt.Errorf("new fatigue service: %w", err)
	}

	return s, nil
}

// MCPServer exposes the engine as MCP tools.
func (s *Server) MCPServer() *mcp.Server {
	return musclestatsmcp.NewServer(s.dbPool, s.Engine, s.CatalogRepo)
}

// ServeMetrics starts the prometheus endpoint in the background.
func (s *Server) ServeMetrics() {
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metrics.NewRouter(s.promRegistry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	if s.metricsManager != nil {
		s.metricsManager.GaugeLifeSignal.Set(0)
	}

	if n := s.pendingStudentLocks(); n > 0 {
		log.Warnf("shutting down with %d student locks held or awaited", n)
	}

	if s.otelShutdown != nil {
		s.otelShutdown()
		log.Trace("otel shut down ...")
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	if s.metricsHttpServer != nil {
		ctx, timeoutCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer timeoutCancel()
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}
}

// pendingStudentLocks counts in-process student locks still held or waited
// on. Redis locks expire on their own and are not counted.
func (s *Server) pendingStudentLocks() int {
	if s.localLocker == nil {
		return 0
	}
	return s.localLocker.Held()
}
