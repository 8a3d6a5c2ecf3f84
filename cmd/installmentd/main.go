package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PremHer/kasvarealty-sub001/internal/application/usecase"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
	"github.com/PremHer/kasvarealty-sub001/internal/infrastructure/config"
	"github.com/PremHer/kasvarealty-sub001/internal/infrastructure/kafka"
	"github.com/PremHer/kasvarealty-sub001/internal/infrastructure/lock"
	pgRepo "github.com/PremHer/kasvarealty-sub001/internal/infrastructure/postgres"
	"github.com/PremHer/kasvarealty-sub001/internal/infrastructure/relay"
	"github.com/PremHer/kasvarealty-sub001/internal/infrastructure/scheduler"
	grpcPresentation "github.com/PremHer/kasvarealty-sub001/internal/presentation/grpc"
	"github.com/PremHer/kasvarealty-sub001/internal/presentation/rest"
	"github.com/PremHer/kasvarealty-sub001/pkg/auth"
	pkgkafka "github.com/PremHer/kasvarealty-sub001/pkg/kafka"
	"github.com/PremHer/kasvarealty-sub001/pkg/money"
	"github.com/PremHer/kasvarealty-sub001/pkg/observability"
	pkgpostgres "github.com/PremHer/kasvarealty-sub001/pkg/postgres"
)

const jobTimeout = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("installment-service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load and validate configuration.
	cfg := config.Load()
	logger := observability.InitLogger(cfg.Log)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("starting installment-service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Tracing and metrics.
	shutdownTracer, err := observability.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = shutdownTracer(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
	}
	metrics, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = metrics.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush
	ucMetrics, err := usecase.NewMetrics(metrics.Provider.Meter(cfg.ServiceName))
	if err != nil {
		return fmt.Errorf("init use case metrics: %w", err)
	}

	// Database connection and migrations.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()
	pool, err := pkgpostgres.NewPool(dbCtx, cfg.DB)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := pgRepo.Migrate(cfg.DB.DSN()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Kafka.
	producer, err := pkgkafka.NewProducer(cfg.Kafka.Client(cfg.ServiceName))
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Error("failed to close kafka producer", "error", err)
		}
	}()
	publisher := kafka.NewEventPublisher(producer, logger)

	// Domain engine and adapters.
	var engineOpts []service.GeneratorOption
	if cfg.Engine.StrictCustomDateOrder {
		engineOpts = append(engineOpts, service.WithStrictDateOrder())
	}
	engine := service.NewEngine(engineOpts...)
	locker := lock.NewKeyedMutex()
	accountRepo := pgRepo.NewSaleAccountRepo(pool, cfg.Kafka.EventsTopic)
	outboxRepo := pgRepo.NewOutboxRepo(pool)

	currency, err := money.NewCurrency(cfg.Engine.DefaultCurrency)
	if err != nil {
		return fmt.Errorf("default currency: %w", err)
	}
	lateRate, err := cfg.DefaultLateInterestRate()
	if err != nil {
		return err
	}
	defaults := usecase.Defaults{Currency: currency, LateInterestRate: lateRate}

	// Use cases.
	useCases := rest.UseCases{
		Create:         usecase.NewCreateSaleAccountUseCase(accountRepo, engine, defaults, ucMetrics, logger),
		Preview:        usecase.NewPreviewScheduleUseCase(engine),
		Get:            usecase.NewGetSaleAccountUseCase(accountRepo, engine, defaults),
		Mora:           usecase.NewComputeMoraUseCase(accountRepo, engine, defaults),
		Pay:            usecase.NewApplyPaymentUseCase(accountRepo, locker, engine, defaults, ucMetrics, logger),
		Reprogram:      usecase.NewReprogramUseCase(accountRepo, locker, engine, defaults, ucMetrics, logger),
		Recalculate:    usecase.NewRecalculateBalancesUseCase(accountRepo, locker, engine, defaults),
		Reprogrammings: usecase.NewListReprogrammingsUseCase(accountRepo),
	}
	sweepUC := usecase.NewOverdueSweepUseCase(accountRepo, publisher, engine, cfg.Kafka.EventsTopic, defaults, ucMetrics, logger)

	// Background jobs.
	outboxRelay := relay.New(outboxRepo, publisher, cfg.Scheduler.OutboxBatchSize, cfg.Scheduler.OutboxRetention, logger)
	jobs := scheduler.New(logger, jobTimeout)
	for _, job := range []struct {
		name, spec string
		fn         scheduler.JobFunc
	}{
		{scheduler.JobOutboxRelay, cfg.Scheduler.OutboxRelaySchedule, scheduler.RelayJob(outboxRelay)},
		{scheduler.JobOutboxPurge, cfg.Scheduler.OutboxPurgeSchedule, scheduler.PurgeJob(outboxRelay)},
		{scheduler.JobOverdueSweep, cfg.Scheduler.OverdueSweepSchedule, scheduler.SweepJob(sweepUC)},
	} {
		if err := jobs.Add(job.name, job.spec, job.fn); err != nil {
			return fmt.Errorf("schedule %s: %w", job.name, err)
		}
	}

	// JWT validation: public key preferred, secret as fallback.
	jwtCfg := cfg.JWT
	if cfg.JWTKeyFile != "" {
		keyData, err := auth.LoadKeyFromFile(cfg.JWTKeyFile)
		if err != nil {
			return fmt.Errorf("load JWT public key file: %w", err)
		}
		jwtCfg.PublicKeyPEM = string(keyData)
	}
	jwtSvc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return fmt.Errorf("init JWT service: %w", err)
	}

	// gRPC server.
	handler := grpcPresentation.NewInstallmentHandler(grpcPresentation.UseCases(useCases), logger)
	grpcServer, err := grpcPresentation.NewServer(grpcPresentation.ServerConfig{TLS: cfg.TLS}, handler, jwtSvc, logger)
	if err != nil {
		return fmt.Errorf("init gRPC server: %w", err)
	}

	// HTTP server.
	router := rest.NewRouter(rest.RouterConfig{
		UseCases:       useCases,
		Validator:      jwtSvc,
		DB:             pool,
		Registerer:     metrics.Registry,
		MetricsHandler: metrics.Handler,
		ServiceName:    cfg.ServiceName,
		Logger:         logger,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start servers, consumer and scheduler.
	errCh := make(chan error, 3)

	go func() {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if cfg.Kafka.PaymentsIntake {
		intake := kafka.NewPaymentIntake(useCases.Pay, logger)
		consumer, err := pkgkafka.NewConsumer(cfg.Kafka.Client(cfg.ServiceName), cfg.Kafka.PaymentsTopic, intake.Handle, logger)
		if err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
		defer func() {
			if err := consumer.Close(); err != nil {
				logger.Error("failed to close kafka consumer", "error", err)
			}
		}()
		go func() {
			if err := consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("payments consumer error: %w", err)
			}
		}()
	}

	jobs.Start()

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}
	cancel()

	// Graceful shutdown.
	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		logger.Error("scheduler shutdown error", "error", err)
	}
	// Relay whatever the last requests committed to the outbox.
	if n, err := outboxRelay.Drain(shutdownCtx); err != nil {
		logger.Error("final outbox relay failed", "error", err)
	} else if n > 0 {
		logger.Info("final outbox relay", "published", n)
	}

	logger.Info("installment-service stopped")
	return nil
}
