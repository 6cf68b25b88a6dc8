/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the khata ledger engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Open the store (SQLite file or in-memory)
  3. Restore from the JSON snapshot, if configured and present
  4. Wire the Book, handler, and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (default: 8080, env PORT)
  -db        SQLite database path (default: khata.db, env KHATA_DB)
             Use ":memory:" for the in-memory store
  -snapshot  JSON snapshot path (env KHATA_SNAPSHOT)
             Empty disables snapshot load/save

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/khata.db"

  # Run in-memory with a JSON snapshot for durability
  ./server -db=":memory:" -snapshot="./data/khata.json"

SEE ALSO:
  - api/server.go: router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: database implementation
  - store/snapshot/snapshot.go: JSON snapshot persistence
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/khata/ledger-engine/api"
	"github.com/khata/ledger-engine/ledger"
	memstore "github.com/khata/ledger-engine/ledger/store"
	"github.com/khata/ledger-engine/store/snapshot"
	"github.com/khata/ledger-engine/store/sqlite"
)

func main() {
	// .env is optional; flags override environment.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("KHATA_DB", "khata.db"), "SQLite database path (\":memory:\" for in-memory store)")
	snapshotPath := flag.String("snapshot", envStr("KHATA_SNAPSHOT", ""), "JSON snapshot path (empty disables)")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	// All failure paths return through run, so deferred cleanup (store
	// close) happens before the process exits.
	if err := run(log, *port, *dbPath, *snapshotPath); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func run(log zerolog.Logger, port int, dbPath, snapshotPath string) error {
	// Open the store.
	var (
		st     ledger.Store
		closer func() error
	)
	if dbPath == ":memory:" {
		st = memstore.NewMemory()
		closer = func() error { return nil }
	} else {
		s, err := sqlite.New(dbPath)
		if err != nil {
			return fmt.Errorf("open database %s: %w", dbPath, err)
		}
		st = s
		closer = s.Close
	}
	defer closer()

	book := ledger.NewBook(st)

	// Snapshot persistence is optional. When configured and the store is
	// empty, an existing snapshot seeds it on boot.
	var persister snapshot.Persister
	if snapshotPath != "" {
		file := snapshot.NewFile(snapshotPath)
		persister = file

		ctx := context.Background()
		customers, _, err := book.Export(ctx)
		if err != nil {
			return fmt.Errorf("read store: %w", err)
		}
		if len(customers) == 0 {
			restored, transactions, err := file.Load(ctx)
			if err != nil {
				return fmt.Errorf("load snapshot %s: %w", snapshotPath, err)
			}
			if len(restored) > 0 || len(transactions) > 0 {
				if err := book.Import(ctx, restored, transactions); err != nil {
					return fmt.Errorf("restore snapshot %s: %w", snapshotPath, err)
				}
				log.Info().
					Int("customers", len(restored)).
					Int("transactions", len(transactions)).
					Msg("restored from snapshot")
			}
		}
	}

	handler := api.NewHandler(book, persister, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", port).Str("db", dbPath).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
