package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/hospimap-cli/internal/config"
	"github.com/KaramelBytes/hospimap-cli/internal/dashboard"
	"github.com/KaramelBytes/hospimap-cli/internal/geo"
	"github.com/KaramelBytes/hospimap-cli/internal/monitoring"
	"github.com/KaramelBytes/hospimap-cli/internal/source"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Source flags (override config if set)
	flagSource         string
	flagAreas          string
	flagHTTPTimeoutSec int

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "hospimap",
	Short: "Hospital dashboard for Peru: filters, charts and maps from a spreadsheet",
	Long: `hospimap loads a spreadsheet of health establishments in Peru, detects its latitude,
longitude, region, type and name columns, and renders filtered summaries, charts,
point maps, district choropleths and a proximity analysis, from the terminal or
as a small HTTP dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.hospimap/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagSource, "source", "", "spreadsheet URL or local path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagAreas, "areas", "", "district boundaries GeoJSON (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP fetch timeout in seconds (overrides config)")
}

func loadConfig() {
	if debug {
		monitoring.SetLogger(log.Printf)
	} else {
		monitoring.SetLogger(nil)
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("source") && flagSource != "" {
		cfg.SourceURL = flagSource
	}
	if f.Changed("areas") {
		cfg.AreasPath = flagAreas
	}
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
}

// newService builds the dashboard service from the effective configuration.
func newService(ctx context.Context) (*dashboard.Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}
	proj, err := geo.ParseProjection(cfg.Projection)
	if err != nil {
		return nil, err
	}
	timeout := cfg.HTTPTimeout()
	if timeout <= 0 {
		timeout = source.DefaultTimeout
	}
	opts := dashboard.Options{
		SourceURL:     cfg.SourceURL,
		AreasPath:     cfg.AreasPath,
		AreaProps:     geo.AreaProperties{Name: cfg.AreaNameProperty, Group: cfg.AreaGroupProperty},
		TopN:          cfg.TopN,
		PreviewRows:   cfg.PreviewRows,
		RadiusMeters:  cfg.BufferRadiusM,
		Projection:    proj,
		DensityGroups: cfg.DensityGroups,
	}
	return dashboard.New(ctx, source.NewLoader(timeout), opts), nil
}
