// Package sink presents packet records on the console and appends them to
// the session log.
package sink

import (
	"io"
	"os"
	"time"

	"firestige.xyz/pktinspect/internal/core"
	"firestige.xyz/pktinspect/internal/log"
	"firestige.xyz/pktinspect/internal/sink/console"
	"firestige.xyz/pktinspect/internal/stats"
)

// Config contains sink configuration.
type Config struct {
	Console   bool      // per-packet console blocks; false = quiet
	Color     bool      // styled output when the writer is a terminal
	LogDir    string    // session log directory
	LogPrefix string    // session log file name prefix
	Start     time.Time // session start, names the log file
	Out       io.Writer // console output (default os.Stdout)
}

// Sink fans each record out to the console renderer and the session log.
type Sink struct {
	console  *console.Renderer
	perFrame bool
	log      *SessionLog
}

// New creates a sink. No file is touched until the first Emit.
func New(cfg Config) *Sink {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	start := cfg.Start
	if start.IsZero() {
		start = time.Now()
	}
	return &Sink{
		console:  console.NewRenderer(out, cfg.Color),
		perFrame: cfg.Console,
		log:      NewSessionLog(cfg.LogDir, cfg.LogPrefix, start),
	}
}

// Emit renders rec on the console and appends it to the session log.
// Console write failures are logged; session log failures are returned.
func (s *Sink) Emit(rec core.PacketRecord, total uint64) error {
	if s.log.State() == LogClosed {
		return core.ErrSinkClosed
	}

	if s.perFrame {
		if err := s.console.Packet(rec, total); err != nil {
			log.GetLogger().WithError(err).Warn("console write failed")
		}
	}
	return s.log.Append(rec.Timestamp, rec.Summary)
}

// Summary renders the end-of-session summary block.
func (s *Sink) Summary(sum stats.Summary) {
	if err := s.console.Summary(sum, s.log.Path()); err != nil {
		log.GetLogger().WithError(err).Warn("console write failed")
	}
}

// Close closes the session log. It is safe to call more than once.
func (s *Sink) Close() error {
	return s.log.Close()
}

// LogPath returns the session log path, empty if nothing was logged.
func (s *Sink) LogPath() string {
	return s.log.Path()
}

// LogState returns the session log lifecycle state.
func (s *Sink) LogState() LogState {
	return s.log.State()
}
