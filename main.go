package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"tidclock/internal"
	"tidclock/internal/config"
	"tidclock/internal/consent"
	"tidclock/internal/geo"
	"tidclock/internal/geofence"
	"tidclock/internal/location"
	"tidclock/internal/logging"
	"tidclock/internal/project"
	"tidclock/internal/storage"
	"tidclock/internal/timelog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logFile, err := logging.Setup(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logFile.Close()

	db, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	projects := project.NewRepository(db)
	if err := projects.Seed(context.Background()); err != nil {
		return fmt.Errorf("failed to seed projects: %w", err)
	}

	mode, err := location.ParseMode(cfg.Location.Mode)
	if err != nil {
		return err
	}
	device := &location.StaticProvider{
		Mode: mode,
		Fix: location.Position{
			Point:          geo.GeoPoint{Lat: cfg.Location.Latitude, Lon: cfg.Location.Longitude},
			AccuracyMeters: cfg.Location.Accuracy,
		},
		Latency: cfg.Location.Latency,
	}
	provider := location.NewCachedProvider(device, cfg.Location.MaxAge)

	m, err := internal.NewModel(internal.Deps{
		Projects: projects,
		Logs:     timelog.NewRepository(db),
		Consent:  consent.NewManager(storage.NewKV(db)),
		Checker:  geofence.NewChecker(provider, cfg.Location.Options()),
		Tick:     cfg.Timer.Tick,
		Now:      time.Now,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			slog.Error("failed to close session", "error", err)
		}
	}()

	slog.Info("starting", "storage", cfg.Storage.Path, "location_mode", mode)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
