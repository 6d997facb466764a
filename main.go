package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"joinengine/pkg/config"
	"joinengine/pkg/engine"
	"joinengine/pkg/logging"
)

func main() {
	var configPath, logLevel, logFile string

	root := &cobra.Command{
		Use:   "joinengine",
		Short: "In-memory columnar multi-way join engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, logLevel, logFile)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "override the configured log output path (default stderr)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run drives the batch harness against stdin/stdout: relation paths
// first (terminated by "Done"), then batches of queries (terminated by
// "F"), per the batch protocol. logLevel and logFile, when non-empty,
// override the corresponding config file settings.
func run(configPath, logLevel, logFile string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFile != "" {
		cfg.Logging.OutputPath = logFile
	}
	if err := cfg.InitLogging(); err != nil {
		return err
	}
	defer logging.Close()

	e := engine.New(cfg)
	r := bufio.NewReader(os.Stdin)
	ctx := context.Background()

	if err := e.LoadRelations(ctx, r); err != nil {
		logging.WithError(err).Error("failed to load relations")
		return err
	}
	if err := e.RunBatches(ctx, r, os.Stdout); err != nil {
		logging.WithError(err).Error("failed to run batches")
		return err
	}
	return nil
}
