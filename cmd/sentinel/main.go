package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"BreadthSentinel/internal/collector"
	"BreadthSentinel/internal/config"
	"BreadthSentinel/internal/history"
	"BreadthSentinel/internal/model"
	"BreadthSentinel/internal/recorder"
	"BreadthSentinel/internal/runner"
)

var configPath string

// rootCmd runs the service when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Market breadth early-warning sentinel",
	Long: `BreadthSentinel evaluates NYSE breadth (advances, declines, new highs,
new lows, TRIN) every trading day, classifies the Hindenburg-style warning
state and keeps a rolling JSON history of the results.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultPath, "Path to the YAML config file")
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newStore(cfg *config.Config) *history.Store {
	return history.NewStore(cfg.History.File, cfg.History.Limit)
}

func newCollector(cfg *config.Config) *collector.Collector {
	breadth := collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	var index collector.IndexSource = breadth
	if cfg.DataSource.IndexSource == "yahoo" {
		index = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data sources: breadth=%s index=%s", breadth.Name(), index.Name())

	col := collector.NewCollector(breadth, index, cfg.DataSource.IndexSymbol)
	symbols := make(map[model.SeriesKey]string, len(collector.DefaultSymbols))
	for k, v := range collector.DefaultSymbols {
		symbols[k] = v
	}
	for k, v := range cfg.DataSource.Symbols {
		symbols[model.SeriesKey(k)] = v
	}
	col.Symbols = symbols
	return col
}

// openRecorder falls back to the noop recorder when SQLite cannot be opened.
func openRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func newRunner(cfg *config.Config, rec recorder.Recorder) *runner.Runner {
	return runner.New(newCollector(cfg), newStore(cfg), rec)
}
