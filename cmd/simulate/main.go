// Command simulate runs the chaos garden simulation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/chaosgarden/ecosim/internal/fertility"
	"github.com/chaosgarden/ecosim/internal/rng"
	"github.com/chaosgarden/ecosim/internal/seed"
	"github.com/chaosgarden/ecosim/internal/simconfig"
	"github.com/chaosgarden/ecosim/internal/store/sqlitestore"
	"github.com/chaosgarden/ecosim/internal/tick"
)

func main() {
	dbPath := flag.String("db", "data/garden.db", "path to the SQLite database file")
	once := flag.Bool("once", false, "run a single tick and exit")
	interval := flag.Duration("interval", 15*time.Minute, "wall-clock interval between ticks")
	isDevelopment := flag.Bool("dev", false, "enable verbose development logging")
	flag.Parse()

	logger := newLogger(*isDevelopment)
	slog.SetDefault(logger)

	cfg, err := simconfig.FromEnv()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll("data", 0o755); err != nil {
		logger.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	db, err := sqlitestore.Open(*dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database opened", "path", *dbPath)

	ctx := context.Background()

	src := rng.NewProcessDefault()
	if cfg.Seed != 0 {
		src = rng.NewSeeded(cfg.Seed)
	}
	fert := fertility.New(cfg.Seed, cfg.FertilityNoiseScale, cfg.FertilityEnabled)

	lastCompleted, err := db.GetLastCompletedTick(ctx)
	if err != nil {
		logger.Error("failed to read last completed tick", "error", err)
		os.Exit(1)
	}
	if lastCompleted < 0 {
		logger.Info("no baseline garden state found, seeding a new garden")
		state, err := seed.NewGarden(ctx, db, cfg, seed.DefaultCounts(), src, time.Now().UTC())
		if err != nil {
			logger.Error("failed to seed garden", "error", err)
			os.Exit(1)
		}
		logger.Info("garden seeded",
			"living", state.PopulationSummary.TotalLiving(),
			"plants", state.PopulationSummary.Plant.Living,
			"herbivores", state.PopulationSummary.Herbivore.Living,
			"carnivores", state.PopulationSummary.Carnivore.Living,
			"fungi", state.PopulationSummary.Fungus.Living,
		)
	} else {
		logger.Info("resuming existing garden", "last_completed_tick", lastCompleted)
	}

	if *once {
		runTick(ctx, db, logger, cfg, src, fert, *isDevelopment)
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("chaos garden simulation running, one tick every %s (Ctrl+C to stop)\n", interval.String())

	for {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			return
		case <-ticker.C:
			runTick(ctx, db, logger, cfg, src, fert, *isDevelopment)
		}
	}
}

func runTick(ctx context.Context, db *sqlitestore.DB, logger *slog.Logger, cfg simconfig.Config, src rng.Source, fert *fertility.Field, isDevelopment bool) {
	tickCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := tick.RunSimulationTick(tickCtx, db, logger, cfg, src, fert, isDevelopment)
	if err != nil {
		logger.Error("tick failed", "error", err)
		return
	}
	if !result.Executed {
		logger.Info("tick not executed", "reason", result.SkipReason)
		return
	}
	logger.Info("tick summary",
		"tick", result.TickNumber,
		"new_entities", result.NewEntities,
		"deaths", result.Deaths,
		"total_living", humanize.Comma(int64(result.Populations.TotalLiving())),
	)
}

func newLogger(isDevelopment bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if isDevelopment {
		opts.Level = slog.LevelDebug
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
