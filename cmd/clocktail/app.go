package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/mark3labs/clocktail/internal/config"
	"github.com/mark3labs/clocktail/internal/logger"
	"github.com/mark3labs/clocktail/internal/store"
)

// app is what every command needs: resolved config and an open store.
type app struct {
	cfg   *config.Config
	store *store.Store
}

// openApp loads config, applies flag overrides, configures logging and
// opens the task file.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if rootFlags.dataFile != "" {
		cfg.DataFile = rootFlags.dataFile
	}

	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	logger.Debug("Config: data_file=%s retention=%s", cfg.DataFile, cfg.Retention)

	s, err := store.Open(store.Options{
		Path:      cfg.DataFile,
		Retention: cfg.Retention,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.DataFile, err)
	}
	return &app{cfg: cfg, store: s}, nil
}

// output wraps w so styled text is downsampled to what the terminal supports.
func output(w io.Writer) io.Writer {
	return colorprofile.NewWriter(w, os.Environ())
}
