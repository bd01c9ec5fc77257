// Command worldsim serves the agent world simulation over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/agentik/internal/api"
	"github.com/talgya/agentik/internal/config"
	"github.com/talgya/agentik/internal/engine"
	"github.com/talgya/agentik/internal/entropy"
	"github.com/talgya/agentik/internal/persistence"
	"github.com/talgya/agentik/internal/world"
)

func main() {
	configPath := flag.String("config", os.Getenv("WORLDSIM_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("agentik world simulation",
		"width", cfg.Width,
		"height", cfg.Height,
		"interval", cfg.StepInterval,
		"auto_run", cfg.AutoRun,
	)

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	saved, err := db.ListFortresses()
	if err != nil {
		slog.Warn("could not list saved fortresses", "error", err)
	}
	slog.Info("database opened", "path", cfg.DBPath, "fortresses", humanize.Comma(int64(len(saved))))
	if last, err := db.GetMeta("last_run"); err == nil {
		slog.Info("previous run", "run", last)
	}

	// ── World ─────────────────────────────────────────────────────────
	w, err := engine.CreateWorld(cfg.Width, cfg.Height)
	if err != nil {
		slog.Error("failed to create world", "error", err)
		os.Exit(1)
	}
	for t, c := range w.Grid.Counts() {
		slog.Debug("terrain", "type", world.TerrainName(t), "count", c)
	}

	var rng entropy.Source = entropy.Crypto()
	if cfg.Seed != 0 {
		rng = entropy.NewSeeded(cfg.Seed)
	}
	slog.Info("world ready", "agents", len(w.Agents), "tiles", humanize.Comma(int64(cfg.Width*cfg.Height)), "seeded", cfg.Seed != 0)

	// ── Simulation ────────────────────────────────────────────────────
	runner := engine.NewRunner(w, rng)
	runner.Interval = cfg.StepInterval
	if cfg.AutoRun {
		runner.Start()
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("WORLDSIM_ADMIN_KEY not set, fortress writes are disabled")
	}
	apiServer := &api.Server{
		Runner:      runner,
		DB:          db,
		Width:       cfg.Width,
		Height:      cfg.Height,
		FortressDir: cfg.FortressDir,
		Port:        cfg.Port,
		AdminKey:    cfg.AdminKey,
		CORSOrigins: cfg.CORSOrigins,
	}
	runner.OnStep = apiServer.Publish
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nagentik is alive: %d agents on a %dx%d world.\n", len(w.Agents), cfg.Width, cfg.Height)
	fmt.Printf("API: http://localhost:%d/api/status\n", cfg.Port)
	fmt.Println("Serving... (Ctrl+C to stop)")

	runner.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}

	fmt.Println("Simulation stopped.")
}
