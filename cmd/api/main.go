package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/ahmedabdul/staff-portal/internal/api/http"
	"github.com/ahmedabdul/staff-portal/internal/api/http/handlers"
	"github.com/ahmedabdul/staff-portal/internal/auth"
	"github.com/ahmedabdul/staff-portal/internal/blob"
	"github.com/ahmedabdul/staff-portal/internal/config"
	"github.com/ahmedabdul/staff-portal/internal/events"
	"github.com/ahmedabdul/staff-portal/internal/ledger"
	"github.com/ahmedabdul/staff-portal/internal/observability"
	"github.com/ahmedabdul/staff-portal/internal/persistence"
	"github.com/ahmedabdul/staff-portal/internal/repository"
	"github.com/ahmedabdul/staff-portal/internal/service"
	"github.com/ahmedabdul/staff-portal/internal/session"
	"github.com/ahmedabdul/staff-portal/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	probes := map[string]handlers.Pinger{}
	durable, closeDurable := openDurable(ctx, cfg, logger, probes)
	defer closeDurable()
	ephemeral, closeEphemeral := openEphemeral(cfg, logger, probes)
	defer closeEphemeral()

	roster, err := session.NewRoster(ctx, repository.NewStaffRepository(durable), cfg.Portal.AdminEmail, logger.Named("roster"))
	if err != nil {
		logger.Fatal("failed to load staff roster", zap.Error(err))
	}
	creds, err := auth.NewCredentials(cfg.Portal.AdminEmail, cfg.Portal.AdminPassword, cfg.Portal.StaffPassword, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to hash portal credentials", zap.Error(err))
	}
	registry := session.NewRegistry(session.Config{
		Roster:      roster,
		Credentials: creds,
		Tokens:      auth.NewTokenManager(cfg.Auth.JWTSecret),
		Durable:     durable,
		Ephemeral:   ephemeral,
		RememberTTL: cfg.Auth.RememberTTL(),
		SessionTTL:  cfg.Auth.SessionTTL(),
		Logger:      logger.Named("session"),
	})

	var reportRepo repository.ReportRepository
	if cfg.Portal.LedgerPersistence == config.LedgerPersistenceDurable {
		reportRepo = repository.NewReportRepository(durable)
	}
	reports, err := ledger.New(ctx, reportRepo, logger.Named("ledger"))
	if err != nil {
		logger.Fatal("failed to load report ledger", zap.Error(err))
	}

	blobs, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		logger.Fatal("failed to open attachment store", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	if len(cfg.Kafka.Brokers) > 0 {
		forwarder := events.NewKafkaForwarder(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger.Named("kafka"))
		forwarder.Register(dispatcher)
		defer forwarder.Close() //nolint:errcheck
	}
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, reports, roster, logger.Named("notifications"), nil))

	reportService := service.NewReportService(service.ReportDependencies{
		Ledger:     reports,
		Roster:     roster,
		Blobs:      blobs,
		Dispatcher: dispatcher,
		Logger:     logger.Named("reports"),
	})

	sweeperDone := worker.StartSessionSweeper(ctx, registry, cfg.Auth.SweepInterval(), cfg.Auth.IdleEvict(), logger)

	metrics := observability.NewMetrics("staff_portal")
	sessionMiddleware := auth.NewSessionMiddleware(
		auth.ResolverFunc(func(ctx context.Context, clientID, sessionID string) (auth.SessionStore, error) {
			store, err := registry.Get(ctx, clientID, sessionID)
			if err != nil {
				return nil, err
			}
			return store, nil
		}),
		auth.CookieOptions{
			Name:        cfg.Auth.ClientCookieName,
			SessionName: cfg.Auth.SessionCookieName,
			MaxAge:      time.Duration(cfg.Auth.ClientCookieMaxDays) * 24 * time.Hour,
			Secure:      cfg.App.SecureCookies,
		},
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, probes),
		Session:           handlers.NewSessionHandler(metrics, logger),
		Staff:             handlers.NewStaffHandler(),
		Reports:           handlers.NewReportsHandler(reportService),
		Portal:            handlers.NewPortalHandler(),
		SessionMiddleware: sessionMiddleware,
		Metrics:           metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	<-sweeperDone
}

func openDurable(ctx context.Context, cfg *config.Config, logger *zap.Logger, probes map[string]handlers.Pinger) (persistence.Medium, func()) {
	switch cfg.Portal.DurableMedium {
	case config.MediumPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg, cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		probes["postgres"] = pg
		return pg, pg.Close
	case config.MediumSQLite:
		db, err := persistence.NewSQLite(cfg.SQLite, logger)
		if err != nil {
			logger.Fatal("failed to open sqlite", zap.Error(err))
		}
		probes["sqlite"] = db
		return db, db.Close
	default:
		logger.Warn("durable medium is in-memory; staff and remembered sessions are lost on restart")
		return persistence.NewMemory(), func() {}
	}
}

func openEphemeral(cfg *config.Config, logger *zap.Logger, probes map[string]handlers.Pinger) (persistence.Medium, func()) {
	if cfg.Portal.SessionMedium != config.MediumRedis {
		return persistence.NewMemory(), func() {}
	}
	redis := persistence.NewRedis(cfg.Redis, cfg.Auth.SessionTTL(), logger)
	probes["redis"] = redis
	return redis, redis.Close
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
