package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/hupe1980/knngraph"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "knngraph",
		Short: "Approximate nearest neighbor graph toolkit",
		Long: `knngraph builds HNSW indexes over synthetic data to measure recall and
latency, and visualizes how a query descends through the graph levels.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("config", "", "YAML file with index parameters")

	rootCmd.AddCommand(
		newVersionCmd(),
		newBenchCmd(),
		newTraceCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "knngraph version %s\n", version)
		},
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// indexOptions assembles the index options shared by all subcommands:
// the logger selected by the global flags, then the config file, then
// KNNGRAPH_* environment overrides.
func indexOptions(cmd *cobra.Command) ([]func(o *knngraph.Options), error) {
	levelFlag, _ := cmd.Flags().GetString("log-level")
	jsonOut, _ := cmd.Flags().GetBool("json")
	configPath, _ := cmd.Flags().GetString("config")

	level, err := parseLevel(levelFlag)
	if err != nil {
		return nil, err
	}

	logger := knngraph.NewTextLogger(level)
	if jsonOut {
		logger = knngraph.NewJSONLogger(level)
	}

	optFns := []func(o *knngraph.Options){
		func(o *knngraph.Options) { o.Logger = logger },
	}

	if configPath != "" {
		cfg, err := knngraph.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		optFns = append(optFns, cfg.Apply)
	}

	envCfg, err := knngraph.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	optFns = append(optFns, envCfg.Apply)

	return optFns, nil
}
