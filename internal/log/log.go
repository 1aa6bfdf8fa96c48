// Package log provides the diagnostic logger used across the inspector.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"firestige.xyz/pktinspect/internal/config"
)

type Logger interface {
	Print(args ...interface{})
	Printf(format string, args ...interface{})

	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	Panic(args ...interface{})
	Panicf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsTraceEnabled() bool
	IsDebugEnabled() bool
	IsInfoEnabled() bool
}

const (
	defaultPattern = "%time [%level] %field %msg\n"
	defaultTime    = "2006-01-02 15:04:05.000"
)

var (
	mu     sync.RWMutex
	logger Logger = newLogger(os.Stderr, logrus.InfoLevel, defaultPattern, defaultTime)

	// fileOut is the rotating file behind logger, nil when file output is off.
	fileOut io.Closer
)

// GetLogger returns the process logger. Before Init it writes info and
// above to stderr.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Init replaces the process logger according to cfg. Diagnostics always go
// to stderr so they never interleave with packet output on stdout.
func Init(cfg config.LogConfig) error {
	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	pattern := cfg.Pattern
	if pattern == "" {
		pattern = defaultPattern
	}
	timeLayout := cfg.Time
	if timeLayout == "" {
		timeLayout = defaultTime
	}

	out := NewMultiWriter().Add(os.Stderr)
	var file io.Closer
	if cfg.File.Enabled {
		appender := NewFileAppender(FileAppenderOpt{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSizeMB,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAgeDays,
			Compress:   cfg.File.Compress,
		})
		out.Add(appender)
		file = appender
	}

	setLogger(newLogger(out, level, pattern, timeLayout), file)
	return nil
}

// setLogger installs l and closes the file of the logger it replaces.
func setLogger(l Logger, file io.Closer) {
	mu.Lock()
	prev := fileOut
	logger = l
	fileOut = file
	mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close previous log file: %v\n", err)
		}
	}
}

func newLogger(out io.Writer, level logrus.Level, pattern, timeLayout string) Logger {
	l := logrus.New()
	l.SetFormatter(&formatter{
		pattern: pattern,
		time:    timeLayout,
	})
	l.SetLevel(level)
	l.SetOutput(out)
	return &logrusAdapter{entry: logrus.NewEntry(l)}
}
