package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/etfguard-backend/internal/adapter/grpc"
	"github.com/simaogato/etfguard-backend/internal/adapter/marketdata/fundfile"
	"github.com/simaogato/etfguard-backend/internal/adapter/marketdata/yahoo"
	"github.com/simaogato/etfguard-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/etfguard-backend/internal/adapter/rest"
	"github.com/simaogato/etfguard-backend/internal/adapter/telegram"
	"github.com/simaogato/etfguard-backend/internal/config"
	"github.com/simaogato/etfguard-backend/internal/domain"
	"github.com/simaogato/etfguard-backend/internal/logger"
	"github.com/simaogato/etfguard-backend/internal/scheduler"
	"github.com/simaogato/etfguard-backend/internal/usecase/dividendalert"
	"github.com/simaogato/etfguard-backend/internal/usecase/marketsync"
	"github.com/simaogato/etfguard-backend/internal/usecase/notification"
	"github.com/simaogato/etfguard-backend/internal/usecase/portfolio"
	"github.com/simaogato/etfguard-backend/internal/usecase/risk"
	"github.com/simaogato/etfguard-backend/internal/usecase/seeder"
	"github.com/simaogato/etfguard-backend/internal/usecase/user"
)

const jobTimeout = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	// 1. Setup Database
	db, err := connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate schema")
	}

	// 2. Initialize Repositories (Postgres)
	userRepo := postgres.NewUserRepository(db)
	dividendRepo := postgres.NewDividendRepository(db)
	instrumentRepo := postgres.NewInstrumentRepository(db)

	// 3. Initialize market data sources and the notification sender
	funds := fundfile.NewSource(cfg.FundDataFile)
	var quotes domain.QuoteSource = funds
	if cfg.QuoteProvider == "yahoo" {
		quotes = yahoo.NewClient(cfg.YahooBaseURL, log)
	}
	sender := telegram.NewSender(cfg.TelegramAPIURL, cfg.TelegramBotToken, log)
	if !cfg.TelegramEnabled() {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN not set, notifications will be skipped")
	}

	// 4. Initialize Services (Use Cases)
	userService := user.NewUserService(userRepo)
	portfolioService := portfolio.NewPortfolioService(userRepo, instrumentRepo)
	riskService := risk.NewRiskService(instrumentRepo, userRepo)
	notificationService := notification.NewNotificationService(sender, userRepo, dividendRepo, riskService)
	marketSyncService := marketsync.NewMarketSyncService(quotes, funds, instrumentRepo, dividendRepo, log)
	dividendJob := dividendalert.NewDividendJob(userRepo, notificationService, cfg.SchedulerEnabled, cfg.Location(), log)

	// Seed the instrument catalog
	seeded, err := seeder.NewCatalogSeeder(instrumentRepo).Seed(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed instrument catalog")
	}
	log.Info().Int("instruments", seeded).Msg("Instrument catalog seeded")

	// 5. Scheduler
	sched := scheduler.NewInLocation(log, jobTimeout, cfg.Location())
	syncJob := marketsync.NewSyncJob(marketSyncService)

	// Store a first reading so analysis works before the first scheduled sync
	if err := sched.RunNow(syncJob); err != nil {
		log.Warn().Err(err).Msg("Initial market sync failed")
	}

	if cfg.SchedulerEnabled {
		if err := sched.AddJob(cfg.MarketSyncSchedule, syncJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule market sync")
		}
		if err := sched.AddJob(cfg.DividendAlertSchedule, dividendJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule dividend alerts")
		}
		sched.Start()
	} else {
		log.Info().Msg("Scheduler disabled, jobs run on manual trigger only")
	}

	// 6. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(log),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)
	grpcadapter.Register(grpcServer, grpcadapter.NewServer(userService, portfolioService, riskService, marketSyncService, dividendJob))
	reflection.Register(grpcServer)

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", grpcAddr).Msg("Failed to listen")
	}

	go func() {
		log.Info().Str("addr", grpcAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve gRPC server")
		}
	}()

	// 7. Start HTTP Server
	httpServer := rest.New(rest.Config{
		Port:             cfg.HTTPPort,
		Log:              log,
		UserService:      userService,
		PortfolioService: portfolioService,
		RiskService:      riskService,
		AllowedOrigins:   cfg.AllowedOrigins,
	})

	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to serve HTTP server")
		}
	}()

	// Graceful shutdown
	waitForShutdown(log, grpcServer, httpServer, sched)
}

// connect retries while Postgres is still starting
func connect(dsn string, log zerolog.Logger) (*postgres.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		db, err := postgres.NewDB(dsn)
		if err == nil {
			return db, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Msg("Database not ready")
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	return nil, lastErr
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the servers
func waitForShutdown(log zerolog.Logger, grpcServer *grpclib.Server, httpServer *rest.Server, sched *scheduler.Scheduler) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	grpcServer.GracefulStop()
	log.Info().Msg("Servers stopped")
}
