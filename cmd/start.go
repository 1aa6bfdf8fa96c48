package cmd

import (
	"context"
	"io"

	"firestige.xyz/pktinspect/internal/config"
	"firestige.xyz/pktinspect/internal/log"
	"firestige.xyz/pktinspect/internal/metrics"
	"firestige.xyz/pktinspect/internal/session"
)

// runCapture runs one capture session to completion with cfg, writing
// packet blocks and the summary to out.
func runCapture(ctx context.Context, cfg *config.Config, out io.Writer, opts ...session.Option) error {
	if err := log.Init(cfg.Log); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := srv.Stop(context.Background()); err != nil {
				log.GetLogger().WithError(err).Warn("failed to stop metrics server")
			}
		}()
	}

	opts = append([]session.Option{session.WithOutput(out)}, opts...)
	_, err := session.NewController(cfg, opts...).Run(ctx)
	return err
}
