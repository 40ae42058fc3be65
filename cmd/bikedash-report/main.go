// bikedash-report runs one dashboard render pass and prints the aggregates as terminal tables.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/chrissnell/bikedash/internal/analysis"
	"github.com/chrissnell/bikedash/internal/app"
	"github.com/chrissnell/bikedash/internal/log"
	"github.com/chrissnell/bikedash/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "", "Path to configuration source (empty uses defaults and BIKEDASH_* variables)")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' or 'sqlite'")
	envFile := flag.String("env-file", ".env", "Optional dotenv file with BIKEDASH_* overrides")
	dataPath := flag.String("data", "", "Dataset CSV path, overrides the configuration")
	mode := flag.String("mode", string(analysis.ModeFactors), "Analysis mode: factors or users")
	seasons := flag.String("seasons", "Spring,Summer,Fall,Winter", "Comma-separated seasons to analyse; empty selects none")
	factor := flag.String("factor", "temperature", "Factor for the factors mode: temperature, humidity or windspeed")
	rows := flag.Int("rows", analysis.DefaultPreviewRows, "Number of preview rows")
	asJSON := flag.Bool("json", false, "Print the render result as JSON instead of tables")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := loadConfig(*cfgFile, *cfgBackend, *envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dataPath != "" {
		cfg.Dataset.Path = *dataPath
	}

	table, err := app.LoadDataset(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	sel, err := analysis.ParseSelection(url.Values{
		"mode":      {*mode},
		"factor":    {*factor},
		"season":    {*seasons},
		"submitted": {"1"},
	})
	if err != nil {
		log.Fatalf("%v", err)
	}

	result, err := analysis.NewPipeline(table, *rows).Render(sel)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatalf("error encoding result: %v", err)
		}
		return
	}

	printReport(os.Stdout, result)
}

func loadConfig(cfgFile, cfgBackend, envFile string) (*config.ConfigData, error) {
	if cfgFile == "" {
		cfg := &config.ConfigData{}
		cfg.ApplyDefaults()
		if err := config.ApplyEnv(cfg, envFile); err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}

	provider, err := config.NewProvider(cfgBackend, cfgFile)
	if err != nil {
		return nil, err
	}
	defer provider.Close()
	return config.Load(provider, envFile)
}

func printReport(w io.Writer, result *analysis.Result) {
	color.New(color.FgCyan, color.Bold).Fprintf(w, "\n=== %s ===\n", result.Selection.Mode.Title())
	fmt.Fprintf(w, "%d of %d rows selected\n", result.FilteredRows, result.TotalRows)
	if result.Empty() {
		color.New(color.FgRed).Fprintln(w, "No data for the current selection")
	}

	if fa := result.Factors; fa != nil {
		printCorrelation(w, fa.Correlation)

		color.New(color.FgYellow).Fprintf(w, "\nAverage %s by Season\n", analysis.FactorLabel(fa.Factor))
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Season", "Average " + analysis.FactorLabel(fa.Factor)})
		for _, sv := range fa.MeanBySeason {
			table.Append([]string{string(sv.Season), strconv.FormatFloat(sv.Value, 'f', 4, 64)})
		}
		table.Render()

		color.New(color.FgYellow).Fprintf(w, "\n%s vs Total Rentals\n", analysis.FactorLabel(fa.Factor))
		table = tablewriter.NewWriter(w)
		table.SetHeader([]string{"Season", "Points"})
		for _, s := range fa.Scatter {
			table.Append([]string{string(s.Season), strconv.Itoa(len(s.Points))})
		}
		table.Render()
	}

	if ua := result.Users; ua != nil {
		color.New(color.FgYellow).Fprintln(w, "\nAverage Casual and Registered Users by Season")
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Season", "User Type", "Average"})
		for _, uv := range ua.MeanByUserType {
			table.Append([]string{string(uv.Season), uv.UserType.Label(), strconv.FormatFloat(uv.Average, 'f', 2, 64)})
		}
		table.Render()

		color.New(color.FgYellow).Fprintln(w, "\nTotal Users by Season")
		table = tablewriter.NewWriter(w)
		table.SetHeader([]string{"Season", "Casual", "Registered"})
		for _, t := range ua.TotalsBySeason {
			table.Append([]string{string(t.Season), strconv.FormatInt(t.Casual, 10), strconv.FormatInt(t.Registered, 10)})
		}
		table.Render()
	}

	color.New(color.FgYellow).Fprintln(w, "\nSample of the Filtered Dataset")
	table := tablewriter.NewWriter(w)
	table.SetHeader(result.Preview.Columns)
	table.AppendBulk(result.Preview.Rows)
	table.Render()
}

func printCorrelation(w io.Writer, m analysis.CorrelationMatrix) {
	color.New(color.FgYellow).Fprintln(w, "\nCorrelation Matrix")

	header := []string{""}
	for _, f := range m.Fields {
		header = append(header, analysis.FactorLabel(f))
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	for i, f := range m.Fields {
		row := []string{analysis.FactorLabel(f)}
		for j := range m.Fields {
			row = append(row, m.At(i, j).String())
		}
		table.Append(row)
	}
	table.Render()
}
