package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cricketbet/internal/cache"
	"cricketbet/internal/config"
	"cricketbet/internal/cricket"
	"cricketbet/internal/db"
	"cricketbet/internal/events"
	"cricketbet/internal/logger"
	"cricketbet/internal/metrics"
	"cricketbet/internal/repository"
	"cricketbet/internal/repository/memory"
	"cricketbet/internal/router"
	"cricketbet/internal/services"

	"github.com/rs/zerolog"
)

func main() {
	cfg := config.LoadConfig()
	log := logger.InitLogger(cfg.LogLevel, cfg.LogPretty)

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrateCommand(cfg, os.Args[2:], log); err != nil {
			log.Fatal().Err(err).Msg("Migration command failed")
		}
		return
	}

	if err := serve(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
}

// runMigrateCommand handles `migrate up`, `migrate down [steps]` and
// `migrate status`.
func runMigrateCommand(cfg config.Config, args []string, log zerolog.Logger) error {
	if len(args) == 0 {
		return errors.New("usage: migrate up|down [steps]|status")
	}

	database, err := db.InitDB(context.Background(), cfg.DBUrl, log)
	if err != nil {
		return err
	}

	switch args[0] {
	case "up":
		return db.MigrateUp(database, log)
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return db.MigrateDown(database, steps, log)
	case "status":
		return db.MigrateStatus(database, log)
	default:
		database.Close()
		return errors.New("unknown migrate command " + args[0])
	}
}

func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (repository.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		log.Warn().Msg("Using in-memory store, data is lost on restart")
		return memory.NewStore(), nil
	case "mysql":
		// The migrator closes its connection when done, so it gets its own pool.
		migrationDB, err := db.InitDB(ctx, cfg.DBUrl, log)
		if err != nil {
			return nil, err
		}
		if err := db.MigrateUp(migrationDB, log); err != nil {
			return nil, err
		}

		database, err := db.InitDB(ctx, cfg.DBUrl, log)
		if err != nil {
			return nil, err
		}
		return repository.NewMySQLStore(database, log), nil
	default:
		return nil, errors.New("unknown STORE_BACKEND " + cfg.StoreBackend)
	}
}

func newPublisher(cfg config.Config, log zerolog.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info().Msg("KAFKA_BROKERS not set, domain events are disabled")
		return events.NoopPublisher{}
	}
	log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("Publishing domain events to Kafka")
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
}

func newMatchCache(ctx context.Context, cfg config.Config, log zerolog.Logger) (*cache.MatchCache, func()) {
	if cfg.RedisAddr == "" {
		return nil, func() {}
	}
	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, match cache disabled")
		return nil, func() {}
	}
	log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.MatchCacheTTL).Msg("Match cache enabled")
	return cache.NewMatchCache(rdb, cfg.MatchCacheTTL), func() { _ = rdb.Close() }
}

func serve(cfg config.Config, log zerolog.Logger) error {
	log.Info().Str("store", cfg.StoreBackend).Msg("Starting cricketbet")
	ctx := context.Background()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	publisher := newPublisher(cfg, log)
	defer publisher.Close()

	matchCache, closeCache := newMatchCache(ctx, cfg, log)
	defer closeCache()

	if cfg.CricketAPIKey == "" {
		log.Warn().Msg("CRICKET_API_KEY not set, match data calls will be rejected upstream")
	}
	upstream := cricket.NewClient(cfg.CricketAPIURL, cfg.CricketAPIKey, cfg.UpstreamTimeout, log)
	m := metrics.New()

	svc := router.Services{
		Auth:         services.NewAuthService(cfg.JWTSecret, cfg.TokenTTL, cfg.AdminUsername, cfg.AdminPasswordHash, log),
		Users:        services.NewUserService(store, log),
		Bets:         services.NewBetService(store, publisher, m, log),
		Transactions: services.NewTransactionService(store, publisher, m, log),
		Balance:      services.NewBalanceService(store, log),
		Settlement: services.NewSettlementService(store, upstream, publisher, m, log, services.SettlementOptions{
			StrictTeamMatch: cfg.StrictTeamMatch,
			UpstreamTimeout: cfg.UpstreamTimeout,
		}),
	}
	// A nil *cache.MatchCache must not become a non-nil interface.
	if matchCache != nil {
		svc.Matches = services.NewMatchService(store, upstream, matchCache, m, log)
	} else {
		svc.Matches = services.NewMatchService(store, upstream, nil, m, log)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.SetupRouter(store, svc, m, router.Options{RateLimit: cfg.RateLimit, RateBurst: cfg.RateBurst}, log),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2*cfg.UpstreamTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}
