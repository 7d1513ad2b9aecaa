// main.go - Marketplace daemon entry point.
//
// Startup sequence:
//   - load configuration (created with defaults on first run)
//   - open the LevelDB-backed state database
//   - compile both circuits and generate or load the Groth16 key pairs
//   - wire the verifier, event emitter, and marketplace controller
//   - serve the REST API until interrupted
//
// Usage:
//
//	marketd -config marketd.json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/rs/zerolog"

	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/events"
	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/marketplace"
	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/store"
	"github.com/dread-pirate-roberts-fellowship/a0-marketplace/internal/zkproof"
)

const version = "0.3.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "marketd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "marketd.json", "path to the daemon configuration file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, closeLog, err := NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()

	log.Info().Str("version", version).Str("config", *configPath).Msg("marketd starting")

	db, err := store.NewLevelDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}
	defer db.Close()
	st := store.NewStateDB(db)

	// Groth16 key material. Setup runs once; later starts reuse the key
	// files under KeyDir.
	vks := make(map[zkproof.ComputationID]groth16.VerifyingKey)
	for _, id := range []zkproof.ComputationID{zkproof.ComputationListing, zkproof.ComputationReputation} {
		log.Info().Str("computation", string(id)).Msg("compiling circuit")
		ccs, err := zkproof.Compile(id)
		if err != nil {
			return fmt.Errorf("compile %s: %w", id, err)
		}
		_, vk, err := zkproof.SetupOrLoadKeys(id, ccs, cfg.KeyDir)
		if err != nil {
			return fmt.Errorf("keys for %s: %w", id, err)
		}
		vks[id] = vk
	}

	verifier := zkproof.NewVerifier(vks)
	emitter := events.NewEmitter()
	emitter.SetLogger(log)
	subscribeEventLog(emitter, log)

	mkt := marketplace.New(st, verifier, emitter)

	metrics := NewMetricsCollector()
	health := NewHealthChecker(version)
	health.RegisterComponent("storage", func() error {
		_, err := db.Get([]byte("healthcheck"))
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	})
	health.RegisterComponent("verifier", func() error {
		if len(vks) != 2 {
			return fmt.Errorf("expected 2 verifying keys, have %d", len(vks))
		}
		return nil
	})

	limiter := NewAccountRateLimiter(
		cfg.RateLimitTokens,
		cfg.RateLimitRefill,
		time.Duration(cfg.RateLimitPeriodMS)*time.Millisecond,
	)

	server := NewServer(mkt, log, metrics, health, limiter)
	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      server.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("marketd stopped")
	return nil
}

// subscribeEventLog mirrors every marketplace event into the structured log.
func subscribeEventLog(emitter *events.Emitter, log zerolog.Logger) {
	types := []events.EventType{
		events.EventItemOnSale,
		events.EventItemBought,
		events.EventSaleCancelled,
		events.EventReputationUpdated,
		events.EventReviewReceived,
	}
	for _, typ := range types {
		emitter.Subscribe(typ, func(ev events.Event) {
			log.Info().Str("event", string(ev.Type)).Fields(ev.Data).Msg("marketplace event")
		})
	}
}
