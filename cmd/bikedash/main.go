package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/bikedash/internal/app"
	"github.com/chrissnell/bikedash/internal/constants"
	"github.com/chrissnell/bikedash/internal/log"
	"github.com/chrissnell/bikedash/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source:\n\t\t\t  YAML: config.yaml\n\t\t\t  SQLite: config.db")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	envFile := flag.String("env-file", ".env", "Optional dotenv file with BIKEDASH_* overrides")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", constants.AppName, constants.Version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load configuration
	cfgData, err := loadConfig(*cfgFile, *cfgBackend, *envFile)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Re-initialize with the configured file output
	if cfgData.Logging.File != "" || cfgData.Logging.Debug {
		err := log.InitWithFile(*debug || cfgData.Logging.Debug, log.FileOptions{
			Path:       cfgData.Logging.File,
			MaxSizeMB:  cfgData.Logging.MaxSizeMB,
			MaxBackups: cfgData.Logging.MaxBackups,
			MaxAgeDays: cfgData.Logging.MaxAgeDays,
		})
		if err != nil {
			log.Errorf("Failed to initialize log file: %v", err)
			os.Exit(1)
		}
	}

	// Create and run the application
	application := app.New(cfgData, log.GetSugaredLogger())
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		os.Exit(1)
	}
}

func loadConfig(cfgFile, cfgBackend, envFile string) (*config.ConfigData, error) {
	filename, _ := filepath.Abs(cfgFile)

	provider, err := config.NewProvider(cfgBackend, filename)
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	cfgData, err := config.Load(provider, envFile)
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}

	return cfgData, nil
}
