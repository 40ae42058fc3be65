package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/chrissnell/bikedash/internal/controllers/restserver"
	"github.com/chrissnell/bikedash/internal/dataset"
	"github.com/chrissnell/bikedash/internal/log"
	"github.com/chrissnell/bikedash/pkg/config"
)

// App represents the main application
type App struct {
	config *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		config: cfg,
		logger: logger,
	}
}

// Columns converts the configured column names into the dataset mapping
func Columns(c config.ColumnsData) dataset.Columns {
	return dataset.Columns{
		Season:      c.Season,
		Temperature: c.Temperature,
		Humidity:    c.Humidity,
		Windspeed:   c.Windspeed,
		Casual:      c.Casual,
		Registered:  c.Registered,
		Total:       c.Total,
	}.WithDefaults()
}

// LoadDataset reads the configured CSV once
func LoadDataset(cfg *config.ConfigData) (*dataset.Table, error) {
	table, err := dataset.Load(cfg.Dataset.Path, Columns(cfg.Dataset.Columns))
	if err != nil {
		return nil, fmt.Errorf("error loading dataset: %w", err)
	}

	counts := table.SeasonCounts()
	log.Infow("dataset loaded",
		"path", table.Path(),
		"rows", table.Len(),
		"spring", counts[dataset.Spring],
		"summer", counts[dataset.Summer],
		"fall", counts[dataset.Fall],
		"winter", counts[dataset.Winter],
	)
	return table, nil
}

// Run loads the dataset, starts the dashboard server and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	table, err := LoadDataset(a.config)
	if err != nil {
		return err
	}

	server, err := restserver.NewController(ctx, &wg, a.config, table, a.logger)
	if err != nil {
		return err
	}
	if err := server.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
