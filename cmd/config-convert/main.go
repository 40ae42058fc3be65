package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/bikedash/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file (required)")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite database file (required)")
		force      = flag.Bool("force", false, "Overwrite existing SQLite database")
		dryRun     = flag.Bool("dry-run", false, "Show what would be done without executing")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	if _, err := os.Stat(*yamlFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: YAML file does not exist: %s\n", *yamlFile)
		os.Exit(1)
	}

	if _, err := os.Stat(*sqliteFile); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: SQLite file already exists: %s\n", *sqliteFile)
		fmt.Fprintf(os.Stderr, "Use -force to overwrite or choose a different filename\n")
		os.Exit(1)
	}

	fmt.Printf("Converting YAML configuration to SQLite...\n")
	fmt.Printf("  Source: %s\n", *yamlFile)
	fmt.Printf("  Target: %s\n", *sqliteFile)

	yamlProvider := config.NewYAMLProvider(*yamlFile)
	configData, err := yamlProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML configuration: %v\n", err)
		os.Exit(1)
	}
	configData.ApplyDefaults()
	if err := configData.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error validating YAML configuration: %v\n", err)
		os.Exit(1)
	}

	if *dryRun {
		fmt.Println("DRY RUN - No changes will be made")
		printConfigSummary(configData)
		return
	}

	if *force {
		if err := os.Remove(*sqliteFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error removing existing SQLite file: %v\n", err)
			os.Exit(1)
		}
	}

	sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite database: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	if err := sqliteProvider.SaveConfig(configData); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving configuration: %v\n", err)
		os.Exit(1)
	}

	// Read the settings back and compare with the source
	stored, err := sqliteProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading back configuration: %v\n", err)
		os.Exit(1)
	}
	if *stored != *configData {
		fmt.Fprintf(os.Stderr, "Error: stored configuration differs from source\n  yaml:   %+v\n  sqlite: %+v\n", *configData, *stored)
		os.Exit(1)
	}

	fmt.Printf("✓ Stored %d settings\n", len(config.SettingKeys()))
	printConfigSummary(stored)
	fmt.Printf("\nStart the dashboard with: bikedash -config %s -config-backend sqlite\n", *sqliteFile)
}

func printConfigSummary(c *config.ConfigData) {
	fmt.Println("\nConfiguration Summary:")
	fmt.Printf("  Dataset: %s\n", c.Dataset.Path)
	fmt.Printf("  Server: %s", c.Server.Addr())
	if c.Server.Cert != "" {
		fmt.Printf(" (TLS)")
	}
	fmt.Println()
	fmt.Printf("  Dashboard: %q, %d preview rows, %.1fx%.1fin %s charts\n",
		c.Dashboard.PageTitle, c.Dashboard.PreviewRows, c.Dashboard.ChartWidth, c.Dashboard.ChartHeight, c.Dashboard.ChartFormat)
	if c.Logging.File != "" {
		fmt.Printf("  Log file: %s\n", c.Logging.File)
	}
}
