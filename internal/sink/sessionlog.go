package sink

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"firestige.xyz/pktinspect/internal/core"
)

const (
	fileTimeLayout = "20060102_150405"
	lineTimeLayout = "2006-01-02 15:04:05.000"
	bannerText     = "pktinspect - live network traffic inspector"
	separatorWidth = 60

	// maxNameAttempts bounds the _1, _2, ... suffixes tried when sessions
	// share a start second.
	maxNameAttempts = 100
)

// LogState is the lifecycle of a session log.
type LogState int

const (
	LogUnopened LogState = iota
	LogOpen
	LogClosed
)

func (s LogState) String() string {
	switch s {
	case LogUnopened:
		return "unopened"
	case LogOpen:
		return "open"
	case LogClosed:
		return "closed"
	default:
		return fmt.Sprintf("LogState(%d)", int(s))
	}
}

// SessionLog is the per-session text log. The file is created on the first
// append, so a session that never sees a packet leaves no file behind.
type SessionLog struct {
	dir    string
	prefix string
	start  time.Time

	state LogState
	path  string
	file  *os.File
	w     *bufio.Writer
}

// NewSessionLog creates an unopened log named after the session start time.
func NewSessionLog(dir, prefix string, start time.Time) *SessionLog {
	return &SessionLog{
		dir:    dir,
		prefix: prefix,
		start:  start,
	}
}

// FileName returns <prefix>_<YYYYMMDD_HHMMSS>.txt for the session start.
func (l *SessionLog) FileName() string {
	return l.fileName(0)
}

func (l *SessionLog) fileName(n int) string {
	if n == 0 {
		return fmt.Sprintf("%s_%s.txt", l.prefix, l.start.Format(fileTimeLayout))
	}
	return fmt.Sprintf("%s_%s_%d.txt", l.prefix, l.start.Format(fileTimeLayout), n)
}

// State returns the current lifecycle state.
func (l *SessionLog) State() LogState {
	return l.state
}

// Path returns the file path once opened, empty before.
func (l *SessionLog) Path() string {
	return l.path
}

// Append writes one `[timestamp] summary` line, opening the file first if needed.
func (l *SessionLog) Append(ts time.Time, summary string) error {
	switch l.state {
	case LogClosed:
		return core.ErrSinkClosed
	case LogUnopened:
		if err := l.open(); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(l.w, "[%s] %s\n", ts.Format(lineTimeLayout), summary); err != nil {
		return fmt.Errorf("%w: %v", core.ErrSessionLog, err)
	}
	if err := l.w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrSessionLog, err)
	}
	return nil
}

func (l *SessionLog) open() error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create log dir: %v", core.ErrSessionLog, err)
	}

	f, path, err := l.create()
	if err != nil {
		return err
	}

	l.file = f
	l.w = bufio.NewWriter(f)
	l.path = path
	l.state = LogOpen

	fmt.Fprintf(l.w, "%s, session started %s\n", bannerText, l.start.Format("2006-01-02 15:04:05"))
	l.w.WriteString(strings.Repeat("=", separatorWidth))
	l.w.WriteByte('\n')
	return nil
}

// create makes a new file for this session, never reusing one left by
// another session that started in the same second.
func (l *SessionLog) create() (*os.File, string, error) {
	for n := 0; n < maxNameAttempts; n++ {
		path := filepath.Join(l.dir, l.fileName(n))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !os.IsExist(err) {
			return nil, "", fmt.Errorf("%w: open %s: %v", core.ErrSessionLog, path, err)
		}
	}
	return nil, "", fmt.Errorf("%w: no free file name for %s in %s", core.ErrSessionLog, l.FileName(), l.dir)
}

// Close flushes and closes the file if it was opened. Further calls are no-ops.
func (l *SessionLog) Close() error {
	prev := l.state
	l.state = LogClosed
	if prev != LogOpen {
		return nil
	}

	flushErr := l.w.Flush()
	closeErr := l.file.Close()
	l.w = nil
	l.file = nil

	if flushErr != nil {
		return fmt.Errorf("%w: %v", core.ErrSessionLog, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: %v", core.ErrSessionLog, closeErr)
	}
	return nil
}
