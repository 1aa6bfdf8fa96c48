package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"firestige.xyz/pktinspect/internal/config"
	"firestige.xyz/pktinspect/internal/core"
)

// Execute runs the CLI. SIGINT and SIGTERM cancel the command context, which
// drains the running session.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if errors.Is(err, core.ErrConfigInvalid) {
		return fmt.Errorf("%w\nRun 'pktinspect --help' for usage", err)
	}
	return err
}

// loadConfig merges defaults, the --config file, environment and the flags of
// cmd, then validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
