package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/audit"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/cliparse"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/db"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/middleware"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/registry"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/relay"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	if cfg.ConfigFile != "" {
		slog.Info("Loaded config file", "path", cfg.ConfigFile)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	store := db.NewStore(dbConn, logger)

	// Rebuild elections from the stored audit trail
	history, err := store.LoadEvents(ctx)
	if err != nil {
		slog.Error("loading audit history failed", "error", err)
		os.Exit(1)
	}

	reg := registry.New(registry.Options{Sink: store, Logger: logger})
	if err := reg.Restore(ctx, history); err != nil {
		slog.Error("restoring elections failed", "error", err)
		os.Exit(1)
	}

	// Event relay: NATS when configured, otherwise an in-process log
	publisher, closePublisher, err := newPublisher(ctx, cfg, logger, history)
	if err != nil {
		slog.Error("event publisher setup failed", "error", err)
		os.Exit(1)
	}
	defer closePublisher()

	rel := &relay.Relay{Outbox: store, Publisher: publisher, Logger: logger}
	go rel.Run(ctx, cfg.RelayInterval)

	// Create router
	mux := router.NewRouter(reg, store, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		cancel()
		server.Close()
	}()

	// Start server
	slog.Info("Listening",
		"port", cfg.Port,
		"elections", reg.ElectionCount(),
		"events", humanize.Comma(int64(len(history))),
	)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

func newLogger(cfg cliparse.Config) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// newPublisher returns the relay target and a function releasing it.
func newPublisher(ctx context.Context, cfg cliparse.Config, logger *slog.Logger, history []audit.Event) (relay.Publisher, func(), error) {
	if cfg.NATSURL != "" {
		pub, err := relay.NewNATSPublisher(relay.NATSConfig{
			URL:           cfg.NATSURL,
			SubjectPrefix: cfg.NATSSubjectPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		slog.Info("Relaying events to NATS", "url", cfg.NATSURL, "prefix", cfg.NATSSubjectPrefix)
		return pub, func() { pub.Close() }, nil
	}

	// Seed the local log so relayed events continue each election's chain
	local := audit.NewLog(logger)
	for _, ev := range history {
		if err := local.Append(ctx, ev); err != nil {
			return nil, nil, err
		}
	}

	events := local.Subscribe(ctx, 64)
	go func() {
		for ev := range events {
			logger.Debug("event relayed",
				"event_type", ev.Type,
				"election_id", ev.ElectionID,
				"sequence", ev.Sequence,
				"hash", ev.Hash.String(),
			)
		}
	}()

	slog.Info("Relaying events in-process", "held", humanize.Comma(int64(local.Len())))
	return relay.LogPublisher{Log: local}, func() {}, nil
}
