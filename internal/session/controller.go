// Package session runs a capture session: it pulls frames from a source,
// decodes, records and emits them one at a time, then drains and summarizes.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"firestige.xyz/pktinspect/internal/config"
	"firestige.xyz/pktinspect/internal/core/decoder"
	"firestige.xyz/pktinspect/internal/log"
	"firestige.xyz/pktinspect/internal/metrics"
	"firestige.xyz/pktinspect/internal/sink"
	"firestige.xyz/pktinspect/internal/source"
	"firestige.xyz/pktinspect/internal/stats"
)

// Option configures a Controller.
type Option func(*Controller)

// WithOpener replaces the capture source opener.
func WithOpener(o source.Opener) Option {
	return func(c *Controller) { c.opener = o }
}

// WithOutput sets the console writer.
func WithOutput(w io.Writer) Option {
	return func(c *Controller) { c.out = w }
}

// WithClock sets the clock used for the session start time.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller owns one capture session. Run may be called once; Stop may be
// called from any goroutine.
type Controller struct {
	cfg    *config.Config
	opener source.Opener
	out    io.Writer
	now    func() time.Time

	state   atomic.Int32
	started atomic.Bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool

	sink      *sink.Sink
	lastDrops uint64
}

// NewController creates an idle controller for cfg.
func NewController(cfg *config.Config, opts ...Option) *Controller {
	c := &Controller{
		cfg:    cfg,
		opener: source.DefaultOpener,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.setState(StateIdle)
	return c
}

// State returns the current session state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// LogPath returns the session log path, empty if nothing was logged.
func (c *Controller) LogPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sink == nil {
		return ""
	}
	return c.sink.LogPath()
}

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
	metrics.SessionState.Set(float64(s))
}

// Stop ends the session. It is idempotent and a no-op once terminated.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	if c.cancel != nil {
		c.cancel()
	}
}

// Run opens the source and processes frames until the count limit, end of
// stream, cancellation or a fatal error. The session stays Idle while the
// source opens; if that fails it terminates without a log file or summary. Otherwise the session is
// drained and summarized, and a fatal error is returned after the summary.
func (c *Controller) Run(ctx context.Context) (stats.Summary, error) {
	if !c.started.CompareAndSwap(false, true) {
		return stats.Summary{}, fmt.Errorf("session already %s", c.State())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.mu.Lock()
	c.cancel = cancel
	if c.stopped {
		cancel()
	}
	c.mu.Unlock()

	logger := log.GetLogger()
	capCfg := c.cfg.Capture

	src, err := c.opener.Open(capCfg)
	if err != nil {
		logger.WithError(err).Error("failed to open capture source")
		c.setState(StateTerminated)
		return stats.Summary{}, err
	}

	var dump *DumpWriter
	if capCfg.Write != "" {
		dump, err = NewDumpWriter(capCfg.Write, capCfg.SnapLen, src.LinkType())
		if err != nil {
			logger.WithError(err).Error("failed to create dump file")
			src.Close()
			c.setState(StateTerminated)
			return stats.Summary{}, err
		}
	}

	out := sink.New(sink.Config{
		Console:   c.cfg.Console.Enabled,
		Color:     c.cfg.Console.Color,
		LogDir:    c.cfg.Session.LogDir,
		LogPrefix: c.cfg.Session.LogPrefix,
		Start:     c.now(),
		Out:       c.out,
	})
	c.mu.Lock()
	c.sink = out
	c.mu.Unlock()
	c.setState(StateCapturing)

	logger.WithFields(map[string]interface{}{
		"interface": capCfg.Interface,
		"file":      capCfg.File,
		"filter":    capCfg.Filter,
		"count":     capCfg.Count,
	}).Info("capture started")

	tracker := stats.NewTracker()
	reason, runErr := c.capture(ctx, src, dump, out, tracker)

	c.setState(StateDraining)
	logger.WithField("reason", reason).Info("capture stopping")

	c.observeDrops(src)
	if err := src.Close(); err != nil {
		logger.WithError(err).Warn("failed to close capture source")
	}
	if dump != nil {
		if err := dump.Close(); err != nil {
			logger.WithError(err).Warn("failed to close dump file")
			if runErr == nil {
				runErr = err
			}
		}
	}
	if err := out.Close(); err != nil {
		logger.WithError(err).Error("failed to close session log")
		if runErr == nil {
			runErr = err
		}
	}

	summary := tracker.Summary()
	out.Summary(summary)
	c.setState(StateTerminated)

	logger.WithFields(map[string]interface{}{
		"packets": summary.PacketCount,
		"bytes":   summary.Bytes,
	}).Info("capture finished")
	return summary, runErr
}

// capture is the Capturing loop. Each frame is decoded, recorded and emitted
// before the next read; every read returns within the read timeout.
func (c *Controller) capture(ctx context.Context, src source.Source, dump *DumpWriter, out *sink.Sink, tracker *stats.Tracker) (string, error) {
	dec := decoder.NewFrameDecoder(decoder.Config{MaxHintLen: c.cfg.Decoder.MaxHintLen})
	limit := uint64(c.cfg.Capture.Count)
	var seq uint64

	for {
		if ctx.Err() != nil {
			return "stopped", nil
		}

		frame, err := src.ReadFrame()
		switch {
		case err == nil:
		case errors.Is(err, source.ErrTimeout):
			c.observeDrops(src)
			continue
		case errors.Is(err, io.EOF):
			return "end of capture", nil
		default:
			log.GetLogger().WithError(err).Error("capture read failed")
			return "read error", err
		}

		seq++
		rec := dec.Decode(frame, seq)
		tracker.Record(rec)
		metrics.ObserveRecord(rec)
		metrics.UniqueAddresses.Set(float64(tracker.UniqueAddresses()))

		if dump != nil {
			if err := dump.Write(frame); err != nil {
				log.GetLogger().WithError(err).Error("dump write failed")
				return "dump error", err
			}
		}

		if err := out.Emit(rec, tracker.PacketCount()); err != nil {
			log.GetLogger().WithError(err).Error("session log write failed")
			return "log error", err
		}

		if limit > 0 && tracker.PacketCount() >= limit {
			return "count limit reached", nil
		}
	}
}

// observeDrops folds the backend drop counter into the metrics.
func (c *Controller) observeDrops(src source.Source) {
	dropped := src.Stats().Dropped
	if dropped > c.lastDrops {
		metrics.CaptureDropsTotal.Add(float64(dropped - c.lastDrops))
		c.lastDrops = dropped
	}
}
