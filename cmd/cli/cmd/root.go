package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ucrparlay/pasgal-go/pkg/config"
	"github.com/ucrparlay/pasgal-go/pkg/pprof"
	"github.com/ucrparlay/pasgal-go/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string
	logger     utils.Logger
	cfg        *config.Config

	// Pprof flags
	pprofEnabled     bool
	pprofMode        string
	pprofDir         string
	pprofProfiles    string
	pprofInterval    string
	pprofCPUDuration string
	pprofCPURate     int
	pprofAddr        string

	// Pprof collector
	pprofCollector *pprof.Collector

	// Result output
	outputPath string

	// validateGraph runs pgraph.Graph.Validate after every load.
	validateGraph bool
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "pasgal",
	Short: "A parallel graph analytics engine",
	Long: `pasgal is a CLI for running parallel graph algorithms over large graphs.

It supports BFS, SSSP (with rho/delta/Bellman-Ford stepping policies),
k-core decomposition, strongly connected components, biconnected
components, and connectivity, all built on a shared sparse/dense
frontier engine.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		if pprofEnabled {
			pcfg, err := buildPprofConfig()
			if err != nil {
				return err
			}

			collector, err := pprof.NewCollector(pcfg)
			if err != nil {
				return err
			}
			if err := collector.Start(); err != nil {
				return err
			}

			pprofCollector = collector
			logger.Info("pprof collection started (mode: %s, dir: %s)", pcfg.Mode, pcfg.OutputDir)
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if pprofCollector != nil {
			logger.Info("Stopping pprof collection...")
			if err := pprofCollector.Stop(); err != nil {
				logger.Warn("Failed to stop pprof collector: %v", err)
			}
			logger.Info("pprof data saved to: %s", pprofCollector.Writer().GetOutputDir())
		}
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&persistToDB, "db", false, "Persist this run's parameters and result to the configured database")
	rootCmd.PersistentFlags().BoolVar(&archiveRun, "archive", false, "Archive a compressed copy of the result to the configured object store (requires --db)")
	rootCmd.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "Write the result to this file instead of stdout (.gz suffix gzips it)")
	rootCmd.PersistentFlags().BoolVar(&validateGraph, "validate", false, "Validate offsets/edge ranges (and symmetry, if claimed) after loading the graph")

	rootCmd.PersistentFlags().BoolVar(&pprofEnabled, "pprof", false, "Enable pprof performance profiling")
	rootCmd.PersistentFlags().StringVar(&pprofMode, "pprof-mode", "file", "Pprof mode: file (periodic snapshots) or http (on-demand)")
	rootCmd.PersistentFlags().StringVar(&pprofDir, "pprof-dir", "./pprof", "Output directory for pprof data")
	rootCmd.PersistentFlags().StringVar(&pprofProfiles, "pprof-profiles", "cpu,heap,goroutine", "Comma-separated profile types: cpu,heap,goroutine,block,mutex,allocs")
	rootCmd.PersistentFlags().StringVar(&pprofInterval, "pprof-interval", "30s", "Snapshot interval for file mode")
	rootCmd.PersistentFlags().StringVar(&pprofCPUDuration, "pprof-cpu-duration", "10s", "CPU profile duration per snapshot")
	rootCmd.PersistentFlags().IntVar(&pprofCPURate, "pprof-cpu-rate", 100, "CPU profiling rate in Hz")
	rootCmd.PersistentFlags().StringVar(&pprofAddr, "pprof-addr", ":6060", "HTTP listen address for http mode")

	binName := BinName()
	rootCmd.Example = `  # Run BFS from vertex 0
  ` + binName + ` bfs -i ./graph.adj -s 0

  # Run SSSP with delta-stepping
  ` + binName + ` sssp -i ./graph.adj -s 0 --policy delta --delta 1000

  # Decompose a graph into k-cores
  ` + binName + ` kcore -i ./graph.adj

  # Find strongly connected components of a directed graph
  ` + binName + ` scc -i ./graph.adj

  # Start the results API server
  ` + binName + ` serve -p 8080`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}

// buildPprofConfig builds pprof configuration from command line flags.
func buildPprofConfig() (*pprof.Config, error) {
	pcfg := pprof.DefaultConfig()
	pcfg.Enabled = true
	pcfg.OutputDir = pprofDir

	switch pprofMode {
	case "file":
		pcfg.Mode = pprof.ModeFile
	case "http":
		pcfg.Mode = pprof.ModeHTTP
	default:
		return nil, fmt.Errorf("invalid pprof mode: %q (valid: file, http)", pprofMode)
	}

	profiles, err := pprof.ParseProfileTypes(pprofProfiles)
	if err != nil {
		return nil, err
	}
	pcfg.Profiles = profiles

	interval, err := time.ParseDuration(pprofInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid pprof interval: %w", err)
	}
	pcfg.FileConfig.Interval = interval

	cpuDuration, err := time.ParseDuration(pprofCPUDuration)
	if err != nil {
		return nil, fmt.Errorf("invalid pprof CPU duration: %w", err)
	}
	pcfg.FileConfig.CPUDuration = cpuDuration
	pcfg.FileConfig.CPURate = pprofCPURate

	pcfg.HTTPConfig.Addr = pprofAddr

	if err := pcfg.Validate(); err != nil {
		return nil, err
	}

	return pcfg, nil
}
