package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/one-vote/cache"
	"github.com/danielhkuo/one-vote/cliparse"
	"github.com/danielhkuo/one-vote/engine"
	"github.com/danielhkuo/one-vote/router"
	"github.com/danielhkuo/one-vote/sweep"
	"github.com/danielhkuo/one-vote/txn"
	"github.com/danielhkuo/one-vote/votedb"
)

func main() {
	// Load .env if present; real env still wins
	_ = godotenv.Load()

	// Text logs on a terminal, JSON for everything else
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to MongoDB
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := votedb.Connect(connectCtx, cfg.MongoURI)
	cancelConnect()
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer client.Disconnect(context.Background())

	// Create indexes (exactly-once depends on the partial unique index)
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	err = votedb.EnsureIndexes(indexCtx, client.Database(cfg.Database))
	cancelIndex()
	if err != nil {
		slog.Error("index creation failed", "error", err)
		// os.Exit skips the deferred Disconnect
		_ = client.Disconnect(context.Background())
		os.Exit(1)
	}
	slog.Info("Database indexes ready")

	store := votedb.NewStore(client, cfg.Database, txn.Options{})
	results := cache.New(0)
	eng := engine.New(store, results)

	// Background consistency sweep
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweep.New(store, results, cfg.SweepInterval).Run(sweepCtx)
	slog.Info("Consistency sweep scheduled", "interval", cfg.SweepInterval)

	// Create router
	mux := router.NewRouter(eng)

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		stopSweep()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
