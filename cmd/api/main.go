package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"escrow-settlement/config"
	httpHandler "escrow-settlement/internal/adapter/http/handler"
	"escrow-settlement/internal/adapter/ledger/stripe"
	"escrow-settlement/internal/adapter/storage/memory"
	pgStorage "escrow-settlement/internal/adapter/storage/postgres"
	redisStorage "escrow-settlement/internal/adapter/storage/redis"
	"escrow-settlement/internal/core/domain"
	"escrow-settlement/internal/core/ports"
	"escrow-settlement/internal/metrics"
	"escrow-settlement/internal/service"
	"escrow-settlement/internal/tracing"
	"escrow-settlement/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// repositories is the storage backend selected by storage.driver.
type repositories struct {
	transactor     ports.DBTransactor
	orders         ports.OrderRepository
	offers         ports.OfferRepository
	disputes       ports.DisputeRepository
	wallets        ports.WalletRepository
	walletTxns     ports.WalletTransactionRepository
	payouts        ports.PayoutRepository
	reconciliation ports.ReconciliationRepository
	audit          ports.AuditRepository
	health         []ports.HealthChecker
}

func postgresRepositories(pool *pgxpool.Pool) repositories {
	return repositories{
		transactor:     pgStorage.NewTransactor(pool),
		orders:         pgStorage.NewOrderRepo(pool),
		offers:         pgStorage.NewOfferRepo(pool),
		disputes:       pgStorage.NewDisputeRepo(pool),
		wallets:        pgStorage.NewWalletRepo(pool),
		walletTxns:     pgStorage.NewWalletTxRepo(pool),
		payouts:        pgStorage.NewPayoutRepo(pool),
		reconciliation: pgStorage.NewReconciliationRepo(pool),
		audit:          pgStorage.NewAuditRepository(pool),
		health:         []ports.HealthChecker{pgStorage.NewHealthCheck(pool)},
	}
}

func memoryRepositories(store *memory.Store) repositories {
	return repositories{
		transactor:     store.Transactor(),
		orders:         store.Orders(),
		offers:         store.Offers(),
		disputes:       store.Disputes(),
		wallets:        store.Wallets(),
		walletTxns:     store.WalletTransactions(),
		payouts:        store.Payouts(),
		reconciliation: store.Reconciliation(),
		audit:          store.Audit(),
	}
}

func main() {
	cfg, err := config.Load(os.Getenv("ESC_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Storage.Driver).
		Msg("Starting escrow settlement service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Options{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRate:  cfg.Tracing.SampleRate,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}

	g, gctx := errgroup.WithContext(ctx)

	// Storage
	var repos repositories
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn().Msg("Using in-memory storage; state is lost on restart")
		repos = memoryRepositories(memory.NewStore())
	case "postgres":
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		log.Info().Msg("PostgreSQL connected")
		repos = postgresRepositories(pool)
		g.Go(func() error {
			metrics.StartPoolStatsCollector(gctx, pool, 15*time.Second)
			return nil
		})
	default:
		log.Fatal().Str("driver", cfg.Storage.Driver).Msg("Unknown storage driver")
	}

	// Redis is optional: without it there is no rate limiting and no payment-event fast path.
	var (
		rdb            *goredis.Client
		rateLimitStore *redisStorage.RateLimitStore
		eventCache     ports.PaymentEventCache
	)
	if cfg.Redis.Enabled {
		rdb, err = redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		eventCache = redisStorage.NewPaymentEventCache(rdb)
		repos.health = append(repos.health, redisStorage.NewHealthCheck(rdb))
	}

	notifier, err := newNotifier(cfg.Notify, rdb, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize notifier")
	}

	// Money movement
	rate, err := cfg.Payout.Rate()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid payout configuration")
	}
	fees := domain.FeePolicy{
		InstantRate:     rate,
		InstantMinCents: cfg.Payout.InstantMinCents,
		InstantMaxCents: cfg.Payout.InstantMaxCents,
	}
	processor := stripe.NewClient(cfg.Stripe, &http.Client{Timeout: 30 * time.Second}, log)

	// Services
	ledger := service.NewWalletLedger(repos.wallets, repos.walletTxns, log)
	recorder := service.NewReconciliationRecorder(repos.reconciliation, log)
	policy := service.SettlementPolicy{
		InspectionWindow: cfg.Settlement.InspectionWindow,
		ClearingPeriod:   cfg.Settlement.ClearingPeriod,
		ReturnDeadline:   cfg.Settlement.ReturnDeadline,
		PaymentEventTTL:  cfg.Settlement.PaymentEventTTL,
	}
	engine := service.NewSettlementEngine(service.EngineDeps{
		Transactor: repos.transactor,
		Orders:     repos.orders,
		Offers:     repos.offers,
		Disputes:   repos.disputes,
		Wallets:    repos.wallets,
		Ledger:     ledger,
		Processor:  processor,
		Recorder:   recorder,
		Notifier:   notifier,
		EventCache: eventCache,
	}, policy, log)
	walletSvc := service.NewWalletService(repos.wallets, repos.walletTxns, repos.payouts)
	payoutSvc := service.NewPayoutExecutor(
		repos.wallets,
		repos.payouts,
		ledger,
		processor,
		repos.transactor,
		recorder,
		notifier,
		fees,
		cfg.Stripe.PlatformAccount,
		log,
	)
	reconciliationSvc := service.NewReconciliationService(repos.reconciliation, log)
	auditSvc := service.NewAuditService(repos.audit, log)
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	sweeper := service.NewSettlementSweeper(engine, repos.orders, policy, cfg.Scheduler.Interval, cfg.Scheduler.BatchSize, log)

	if cfg.Internal.Token == "" {
		log.Warn().Msg("internal.token is empty; collaborator routes will reject every call")
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Engine:         engine,
		Wallets:        walletSvc,
		Payouts:        payoutSvc,
		Reconciliation: reconciliationSvc,
		Sweeper:        sweeper,
		TokenSvc:       tokenSvc,
		InternalToken:  cfg.Internal.Token,
		RateLimitStore: rateLimitStore,
		HealthCheckers: repos.health,
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.Scheduler.Enabled {
		g.Go(func() error {
			log.Info().Dur("interval", cfg.Scheduler.Interval).Msg("Settlement sweeper started")
			sweeper.Start(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		sweeper.Stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Tracer shutdown failed")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
	log.Info().Msg("Server exited")
}

// newNotifier selects the delivery channel for domain events.
func newNotifier(cfg config.NotifyConfig, rdb *goredis.Client, log zerolog.Logger) (ports.Notifier, error) {
	switch cfg.Driver {
	case "", "log":
		return service.NewLogNotifier(log), nil
	case "redis":
		if rdb == nil {
			return nil, errors.New("notify.driver=redis requires redis.enabled")
		}
		return redisStorage.NewEventPublisher(rdb, cfg.Channel, log), nil
	case "webhook":
		if cfg.WebhookURL == "" || cfg.WebhookSecret == "" {
			return nil, errors.New("notify.driver=webhook requires notify.webhook_url and notify.webhook_secret")
		}
		return service.NewWebhookNotifier(
			cfg.WebhookURL,
			cfg.WebhookSecret,
			service.NewHMACSignatureService(),
			&http.Client{Timeout: 10 * time.Second},
			log,
		), nil
	}
	return nil, fmt.Errorf("unknown notify.driver %q", cfg.Driver)
}
