package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"

	"github.com/pthm-cable/selection/config"
	"github.com/pthm-cable/selection/render"
	"github.com/pthm-cable/selection/sim"
	"github.com/pthm-cable/selection/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output windowed stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	dbPath := flag.String("db", "", "SQLite database path for census persistence (empty = disabled)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update in headless mode")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	runID := uuid.NewString()
	startedAt := time.Now()

	var store telemetry.Store
	if *dbPath != "" {
		sqlStore := telemetry.NewSQLiteStore(*dbPath)
		if err := sqlStore.Init(context.Background()); err != nil {
			slog.Error("failed to open census database", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		store = sqlStore
	}

	opts := sim.Options{
		Seed:      rngSeed,
		RunID:     runID,
		StartedAt: startedAt,
		LogStats:  *logStats,
		OutputDir: *outputDir,
		Store:     store,
	}

	s, err := sim.New(cfg, opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	slog.Info("starting simulation",
		"run_id", runID,
		"seed", rngSeed,
		"headless", *headless,
		"creatures", cfg.World.InitialCreatures,
		"food", cfg.World.InitialFood,
		"max_ticks", *maxTicks,
	)

	if *headless {
		runHeadless(s, *maxTicks, *stepsPerUpdate)
		return
	}

	runGraphical(s, cfg, *maxTicks)
}

// runHeadless drives the simulation without graphics until extinction or
// the tick limit.
func runHeadless(s *sim.Sim, maxTicks, stepsPerUpdate int) {
	if stepsPerUpdate < 1 {
		stepsPerUpdate = 1
	}

	for {
		for i := 0; i < stepsPerUpdate; i++ {
			if !s.Step() {
				slog.Info("population extinct, stopping",
					"tick", s.Tick(),
					"dead_total", s.DeadCount(),
				)
				return
			}
		}

		if maxTicks > 0 && int(s.Tick()) >= maxTicks {
			slog.Info("max ticks reached",
				"tick", s.Tick(),
				"population", s.Population(),
			)
			return
		}
	}
}

// runGraphical opens a window and drives the simulation one frame at a
// time. The window survives extinction so the final state stays visible.
func runGraphical(s *sim.Sim, cfg *config.Config, maxTicks int) {
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Natural Selection")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	r := render.New(cfg)

	for !rl.WindowShouldClose() {
		r.HandleInput()

		if stepAllowed(r.Paused(), s.Extinct(), s.Tick(), maxTicks) {
			for i := 0; i < r.TicksPerFrame(); i++ {
				if !s.Step() {
					break
				}
				if maxTicks > 0 && int(s.Tick()) >= maxTicks {
					slog.Info("max ticks reached",
						"tick", s.Tick(),
						"population", s.Population(),
					)
					break
				}
			}
		}

		r.Draw(s)
	}
}

// stepAllowed reports whether the frame loop may advance the simulation.
// Once the tick cap is reached the window stays open but the world holds
// still, matching the headless stop at the same cap.
func stepAllowed(paused, extinct bool, tick int64, maxTicks int) bool {
	if paused || extinct {
		return false
	}
	return maxTicks == 0 || tick < int64(maxTicks)
}
