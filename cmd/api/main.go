package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jgdelacruz/washbay/internal/app"
	"github.com/jgdelacruz/washbay/internal/clock"
	"github.com/jgdelacruz/washbay/internal/config"
	"github.com/jgdelacruz/washbay/internal/events"
	"github.com/jgdelacruz/washbay/internal/redisx"
	"github.com/jgdelacruz/washbay/internal/storage/postgres"
	transporthttp "github.com/jgdelacruz/washbay/internal/transport/http"
	"github.com/jgdelacruz/washbay/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.Default()
	cfg := config.Load(logger)

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	cache := redisx.NewCache(redisx.New(cfg.RedisAddr), logger)
	producer := events.NewProducer(cfg.KafkaBrokers, cfg.ServiceName, logger)
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Printf("WARN: close producer: %v", err)
		}
	}()

	registrySvc := app.NewRegistry(
		postgres.NewRegistryRepository(pool),
		clock.NewSystem(),
		app.WithIdempotencyCache(cache),
		app.WithOrderEvents(producer),
	)
	settlementSvc := app.NewSettlement(
		postgres.NewSettlementRepository(pool),
		clock.NewSystem(),
		app.WithSettlementCache(cache),
		app.WithSettlementEvents(producer),
	)
	crewSvc := app.NewCrew(postgres.NewCrewRepository(pool))
	supplySvc := app.NewSupplies(postgres.NewSupplyRepository(pool), clock.NewSystem())

	handler := transporthttp.NewRouter(transporthttp.RouterConfig{
		Registry:    registrySvc,
		Settlement:  settlementSvc,
		Crew:        crewSvc,
		Supplies:    supplySvc,
		StatusCache: cache,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}

	log.Printf("api listening on %s", cfg.HTTPAddr)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("server stopped")
}
