package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/danielhkuo/quickly-grade/cliparse"
	"github.com/danielhkuo/quickly-grade/db"
	"github.com/danielhkuo/quickly-grade/elections"
	"github.com/danielhkuo/quickly-grade/ids"
	"github.com/danielhkuo/quickly-grade/logging"
	"github.com/danielhkuo/quickly-grade/metrics"
	"github.com/danielhkuo/quickly-grade/router"
	"github.com/danielhkuo/quickly-grade/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	log := logging.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect and verify
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil {
		log.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	log.Info("Database schema ready", "type", cfg.DatabaseType)

	st, err := store.New(dbConn, cfg.DatabaseType)
	if err != nil {
		log.Error("store setup failed", "error", err)
		os.Exit(1)
	}

	electionIDs, err := ids.Parse(cfg.ElectionIDScheme)
	if err != nil {
		log.Error("invalid election ID scheme", "error", err)
		os.Exit(1)
	}
	tokenIDs, err := ids.Parse(cfg.TokenIDScheme)
	if err != nil {
		log.Error("invalid token ID scheme", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(dbConn, cfg.DatabaseType),
	)

	svc, err := elections.NewService(st, cfg.Settings(),
		elections.WithElectionIDs(electionIDs),
		elections.WithTokenIDs(tokenIDs),
		elections.WithLogger(log),
		elections.WithMetrics(metrics.New(reg)),
	)
	if err != nil {
		log.Error("election service setup failed", "error", err)
		os.Exit(1)
	}
	settings := svc.Settings()
	log.Info("Election service ready",
		"max_num_grades", settings.MaxNumGrades,
		"languages", settings.Languages,
		"election_ids", cfg.ElectionIDScheme,
		"token_ids", cfg.TokenIDScheme,
	)

	server := http.Server{
		Handler:           router.NewRouter(st, reg),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C or SIGTERM
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	}()

	log.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Server closed", "error", err)
		os.Exit(1)
	}
	log.Info("Server closed")
}
