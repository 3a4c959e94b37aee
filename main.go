package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/umlaut/camera"
	"github.com/pthm-cable/umlaut/config"
	"github.com/pthm-cable/umlaut/session"
	"github.com/pthm-cable/umlaut/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output per-generation stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxGenerations := flag.Int("max-generations", 0, "Stop after N generations (0 = unlimited)")
	workers := flag.Int("workers", -1, "Step workers (-1 = use config, 0 = GOMAXPROCS)")
	mode := flag.String("mode", "", "Evaluation mode: realtime or batched (empty = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *workers >= 0 {
		cfg.Parallel.Workers = *workers
	}
	if *mode != "" {
		cfg.Evaluation.Mode = *mode
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}
	cfg.ComputeDerived()

	s, err := session.New(cfg, session.Options{
		Seed:      *seed,
		LogStats:  *logStats || *headless,
		OutputDir: *outputDir,
	})
	if err != nil {
		slog.Error("failed to create session", "error", err)
		os.Exit(1)
	}

	if *headless {
		err = runHeadless(s, *maxGenerations)
	} else {
		err = runWindowed(s, *maxGenerations)
	}
	if cerr := s.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		slog.Error("training stopped", "error", err)
		os.Exit(1)
	}
}

// runHeadless trains as fast as possible until interrupted or the
// generation limit is reached.
func runHeadless(s *session.Session, maxGenerations int) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting headless training",
		"run_id", s.RunID(),
		"seed", s.Seed(),
		"max_generations", maxGenerations,
	)

	err := s.RunHeadless(ctx, maxGenerations)
	if errors.Is(err, context.Canceled) {
		slog.Info("interrupted", "generation", s.Generation())
		return nil
	}
	if err == nil {
		slog.Info("max generations reached", "generation", s.Generation())
	}
	return err
}

// runWindowed advances training once per frame and draws the arena.
func runWindowed(s *session.Session, maxGenerations int) error {
	cfg := s.Config()
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Umlaut")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v := newViewer(s)
	for !rl.WindowShouldClose() {
		v.handleInput()
		if err := s.Update(); err != nil {
			return err
		}
		s.RecordFrame()
		v.draw()

		if maxGenerations > 0 && s.Generation() >= maxGenerations {
			break
		}
	}
	return nil
}

// viewer holds the window's UI state.
type viewer struct {
	s     *session.Session
	cam   *camera.Camera
	arena *ui.ArenaView
	hud   *ui.HUD
	perf  *ui.PerfPanel
	panel *ui.ControlsPanel
	ren   *ui.Renderer
	input ui.InputState

	agents []ui.ArenaAgent
}

const panelWidth = 260

func newViewer(s *session.Session) *viewer {
	cfg := s.Config()
	w, h := float32(cfg.Screen.Width), float32(cfg.Screen.Height)
	cam := camera.New(w, h, float32(cfg.Screen.Scale))
	return &viewer{
		s:     s,
		cam:   cam,
		arena: ui.NewArenaView(cam),
		hud:   ui.NewHUD(),
		perf:  ui.NewPerfPanel(10, 125, 200),
		panel: ui.NewControlsPanel(int32(w)-panelWidth-10, 10, panelWidth, ui.ControlLimits{
			MinCycleTime:  session.MinCycleTime,
			MaxCycleTime:  session.MaxCycleTime,
			MaxHyperSpeed: session.MaxHyperSpeed,
		}),
		ren:   ui.NewRenderer(),
		input: ui.InputState{ShowNetwork: true},
	}
}

func (v *viewer) handleInput() {
	ui.HandleInput(v.s, v.cam, v.panel, &v.input)
	v.panel.SetPosition(int32(rl.GetScreenWidth())-panelWidth-10, 10)
}

func (v *viewer) draw() {
	pop := v.s.Population()
	follow := v.s.Env()
	tr := v.s.Trainer()
	champ := pop.Champion()

	v.agents = v.agents[:0]
	for id := 0; id < pop.Len() && id < follow.Len(); id++ {
		v.agents = append(v.agents, ui.ArenaAgent{
			Pos:      follow.Position(id),
			Color:    pop.Network(id).GenerateColor(),
			Champion: pop.IsChampion(id),
		})
	}

	last := v.s.LastStats()
	perf := v.s.Perf()
	screenH := int32(rl.GetScreenHeight())

	rl.BeginDrawing()
	rl.ClearBackground(v.ren.Theme.Background)

	v.arena.Draw(follow.Target(), v.agents)

	v.hud.Draw(ui.HUDData{
		Title:          "Umlaut",
		Generation:     tr.Generation(),
		Tick:           tr.Tick(),
		EvalTicks:      tr.Options().EvalTicks,
		Population:     pop.Len(),
		ChampionID:     champ.ID,
		ChampionScore:  champ.Score,
		WinnerScore:    last.WinnerScore,
		Improved:       last.Improved,
		Hyper:          v.s.Hyper(),
		Speed:          v.s.HyperSpeed(),
		FPS:            rl.GetFPS(),
		TicksPerSecond: perf.TicksPerSecond,
		Paused:         v.s.Paused(),
	})
	v.perf.Draw(perf)

	if v.input.ShowNetwork && champ.Valid() {
		const w, h = 300, 260
		x := int32(rl.GetScreenWidth()) - w - 10
		y := screenH - h - 40
		v.ren.DrawPanel(x, y, w, h)
		ui.DrawNetworkDiagram(x+40, y, w-80, h, pop.ChampionNetwork())
	}

	v.panel.Draw(v.s)
	v.hud.DrawControls(screenH, ui.ControlsLegend)

	rl.EndDrawing()
}
