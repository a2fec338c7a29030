package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/lazharichir/blackjack/config"
	"github.com/lazharichir/blackjack/events"
	"github.com/lazharichir/blackjack/server"
	"github.com/lazharichir/blackjack/table"
	"go.uber.org/zap"
)

const defaultAutoplayRounds = 10

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	var migrate bool
	var autoplay int
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--migrate":
			migrate = true
		case "--autoplay":
			autoplay = defaultAutoplayRounds
			if i+1 < len(args) {
				if n, err := strconv.Atoi(args[i+1]); err == nil && n > 0 {
					autoplay = n
					i++
				}
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store events.EventStore = events.NewInMemoryEventStore()
	var pg *events.PostgresEventStore
	if cfg.DatabaseURL != "" {
		pg, err = events.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to open event store", zap.Error(err))
		}
		defer pg.Close()
		store = pg
	}

	if migrate {
		if pg == nil {
			logger.Fatal("--migrate needs DATABASE_URL")
		}
		if err := pg.Migrate(ctx); err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}
		logger.Info("migrated")
		return
	}

	lobby := table.NewLobby(cfg.TableConfig(), store, logger)

	if autoplay > 0 {
		t := lobby.CreateTable()
		results, total, err := t.AutoPlay(ctx, autoplay)
		renderAutoplay(results, total)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal("autoplay failed", zap.Int("rounds_played", len(results)), zap.Error(err))
		}
		return
	}

	srv := server.NewServer(lobby, logger)
	if err := srv.Start(ctx, cfg.Port); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
