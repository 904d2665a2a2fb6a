package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rollcall/internal/api"
	"rollcall/internal/config"
	"rollcall/internal/daemon"
	"rollcall/internal/journal"
	"rollcall/internal/logging"
	"rollcall/internal/resync"
	"rollcall/internal/source"
	"rollcall/internal/writeback"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := journal.Open(cfg)
	if err != nil {
		logger.Error("open journal", logging.Error(err))
		os.Exit(1)
	}

	fetcher := source.NewClient(cfg.Source.URL, cfg.SourceTimeout())
	manager := resync.NewManager(fetcher, logger,
		resync.WithJournal(store),
		resync.WithResyncDelay(cfg.ResyncDelay()),
		resync.WithCycleTimeout(cfg.CycleTimeout()),
		resync.WithPollInterval(cfg.PollInterval()),
	)
	appender := writeback.NewClient(cfg.Append.URL, writeback.WithTimeout(cfg.AppendTimeout()))
	entries := api.NewEntryService(store, appender, manager, cfg.Append.DefaultAuthor, logger)

	d, err := daemon.New(cfg, store, manager, entries, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("rollcalld shutting down")
}
