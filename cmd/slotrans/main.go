package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/slotrans/internal/cli"
	"codeberg.org/snonux/slotrans/internal/logger"
	"codeberg.org/snonux/slotrans/internal/models"
	"codeberg.org/snonux/slotrans/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)
	roundTripCmd := cli.CreateRoundTripCommand()
	rootCmd.AddCommand(roundTripCmd)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
		flags.Resolve()
	})

	// Set the run functions
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}
	roundTripCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runRoundTrip(cmd, args, flags)
	}

	// Cancel in-flight translations on Ctrl-C, caches are still flushed
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newLogger(flags *cli.Flags) logger.Logger {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.LevelFromVerbosity(flags.Verbosity)
	cfg.JSON = flags.LogJSON
	return logger.New(cfg)
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(cli.GetOpenAIKey(), cmd.OutOrStdout())
		return lister.ListAvailableModels(cmd.Context())
	}

	proc := processor.NewProcessor(flags, newLogger(flags))

	// Handle batch processing
	if flags.BatchFile != "" {
		if len(args) != 2 {
			return fmt.Errorf("--batch needs <source_language> <target_language>, got %d arguments", len(args))
		}
		return proc.ProcessBatch(cmd.Context(), args[0], args[1])
	}

	if len(args) < 3 {
		return cmd.Help()
	}
	output := ""
	if len(args) == 4 {
		output = args[3]
	}
	_, err := proc.ProcessSingle(cmd.Context(), args[0], args[1], args[2], output)
	return err
}

func runRoundTrip(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	proc := processor.NewProcessor(flags, newLogger(flags))
	_, err := proc.RoundTrip(cmd.Context(), args[0], args[1], args[2])
	return err
}
