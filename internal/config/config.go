// Package config handles configuration loading using viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"firestige.xyz/pktinspect/internal/core"
)

// Capture backends.
const (
	BackendPcap     = "pcap"
	BackendAFPacket = "afpacket"
)

// Config represents the complete inspector configuration.
// Maps to the `pktinspect:` root key in YAML.
type Config struct {
	Capture CaptureConfig `mapstructure:"capture" yaml:"capture"`
	Decoder DecoderConfig `mapstructure:"decoder" yaml:"decoder"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Console ConsoleConfig `mapstructure:"console" yaml:"console"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// ─── Capture ───

// CaptureConfig selects the capture source and its parameters.
type CaptureConfig struct {
	Interface    string        `mapstructure:"interface" yaml:"interface"`
	Backend      string        `mapstructure:"backend" yaml:"backend"` // pcap | afpacket
	File         string        `mapstructure:"file" yaml:"file"`       // offline replay; overrides interface/backend
	Filter       string        `mapstructure:"filter" yaml:"filter"`   // BPF expression, opaque to the core
	Count        int           `mapstructure:"count" yaml:"count"`     // 0 = unlimited
	SnapLen      int           `mapstructure:"snap_len" yaml:"snap_len"`
	Promiscuous  bool          `mapstructure:"promiscuous" yaml:"promiscuous"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	BufferSizeMB int           `mapstructure:"buffer_size_mb" yaml:"buffer_size_mb"`
	Write        string        `mapstructure:"write" yaml:"write"` // pcap dump path, empty = disabled
}

// Offline reports whether the capture replays a file.
func (c CaptureConfig) Offline() bool {
	return c.File != ""
}

// ─── Decoder ───

// DecoderConfig configures the frame decoder.
type DecoderConfig struct {
	MaxHintLen int `mapstructure:"max_hint_len" yaml:"max_hint_len"`
}

// ─── Session log ───

// SessionConfig configures the per-session text log.
type SessionConfig struct {
	LogDir    string `mapstructure:"log_dir" yaml:"log_dir"`
	LogPrefix string `mapstructure:"log_prefix" yaml:"log_prefix"`
}

// ─── Console ───

// ConsoleConfig configures per-packet console output.
type ConsoleConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"` // false = quiet, summary only
	Color   bool `mapstructure:"color" yaml:"color"`
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// ─── Log ───

// LogConfig contains diagnostic logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level" yaml:"level"` // trace / debug / info / warn / error
	Pattern string           `mapstructure:"pattern" yaml:"pattern"`
	Time    string           `mapstructure:"time" yaml:"time"`
	File    FileOutputConfig `mapstructure:"file" yaml:"file"`
}

// FileOutputConfig configures the rotating diagnostic log file.
type FileOutputConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Path       string `mapstructure:"path" yaml:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// ─── Loading ───

const rootKey = "pktinspect"

// configRoot is the top-level wrapper matching the YAML structure `pktinspect: ...`.
type configRoot struct {
	Pktinspect Config `mapstructure:"pktinspect" yaml:"pktinspect"`
}

// flagKeys maps CLI flag names to configuration keys bound with BindPFlag.
var flagKeys = map[string]string{
	"interface": "capture.interface",
	"count":     "capture.count",
	"filter":    "capture.filter",
	"backend":   "capture.backend",
	"read":      "capture.file",
	"write":     "capture.write",
	"snaplen":   "capture.snap_len",
	"log-dir":   "session.log_dir",
	"log-level": "log.level",
}

// Load merges defaults, the optional config file at path, PKTINSPECT_*
// environment variables and the changed flags of fs, in increasing priority.
// Validation is left to the caller.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: failed to read config file: %v", core.ErrConfigInvalid, err)
		}
	}

	// The `pktinspect.` key prefix maps to `PKTINSPECT_` via the key replacer
	// (e.g. key "pktinspect.capture.interface" → env "PKTINSPECT_CAPTURE_INTERFACE").
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(rootKey+"."+key, f); err != nil {
				return nil, fmt.Errorf("%w: failed to bind flag %s: %v", core.ErrConfigInvalid, name, err)
			}
		}
	}

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %v", core.ErrConfigInvalid, err)
	}
	cfg := root.Pktinspect

	if fs != nil {
		applySwitches(&cfg, fs)
	}
	return &cfg, nil
}

// applySwitches handles flags that do not map one-to-one onto a key.
func applySwitches(cfg *Config, fs *pflag.FlagSet) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "quiet":
			if quiet, err := fs.GetBool("quiet"); err == nil && quiet {
				cfg.Console.Enabled = false
			}
		case "no-color":
			if noColor, err := fs.GetBool("no-color"); err == nil && noColor {
				cfg.Console.Color = false
			}
		case "metrics":
			cfg.Metrics.Enabled = true
			cfg.Metrics.Listen = f.Value.String()
		}
	})
}

// setDefaults sets default values for configuration.
// All keys use the "pktinspect." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	// Capture defaults
	v.SetDefault(rootKey+".capture.interface", "")
	v.SetDefault(rootKey+".capture.backend", BackendPcap)
	v.SetDefault(rootKey+".capture.file", "")
	v.SetDefault(rootKey+".capture.filter", "")
	v.SetDefault(rootKey+".capture.count", 0)
	v.SetDefault(rootKey+".capture.snap_len", 65535)
	v.SetDefault(rootKey+".capture.promiscuous", true)
	v.SetDefault(rootKey+".capture.read_timeout", "500ms")
	v.SetDefault(rootKey+".capture.buffer_size_mb", 8)
	v.SetDefault(rootKey+".capture.write", "")

	// Decoder defaults
	v.SetDefault(rootKey+".decoder.max_hint_len", 256)

	// Session log defaults
	v.SetDefault(rootKey+".session.log_dir", ".")
	v.SetDefault(rootKey+".session.log_prefix", "packet_log")

	// Console defaults
	v.SetDefault(rootKey+".console.enabled", true)
	v.SetDefault(rootKey+".console.color", true)

	// Metrics defaults
	v.SetDefault(rootKey+".metrics.enabled", false)
	v.SetDefault(rootKey+".metrics.listen", ":9091")
	v.SetDefault(rootKey+".metrics.path", "/metrics")

	// Log defaults
	v.SetDefault(rootKey+".log.level", "info")
	v.SetDefault(rootKey+".log.pattern", "%time [%level] %field %msg\n")
	v.SetDefault(rootKey+".log.time", "2006-01-02 15:04:05.000")
	v.SetDefault(rootKey+".log.file.enabled", false)
	v.SetDefault(rootKey+".log.file.path", "pktinspect.log")
	v.SetDefault(rootKey+".log.file.max_size_mb", 100)
	v.SetDefault(rootKey+".log.file.max_age_days", 30)
	v.SetDefault(rootKey+".log.file.max_backups", 5)
	v.SetDefault(rootKey+".log.file.compress", true)
}

var validLevels = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}

// Validate checks the configuration before capture starts.
// Every failure wraps core.ErrConfigInvalid.
func (cfg *Config) Validate() error {
	c := &cfg.Capture
	if c.Count < 0 {
		return invalid("capture.count must be >= 0, got %d", c.Count)
	}
	if !c.Offline() {
		if c.Backend != BackendPcap && c.Backend != BackendAFPacket {
			return invalid("unknown capture.backend: %q (must be pcap/afpacket)", c.Backend)
		}
		if c.Interface == "" {
			return invalid("capture.interface is required unless capture.file is set")
		}
	}
	if c.SnapLen <= 0 {
		return invalid("capture.snap_len must be > 0, got %d", c.SnapLen)
	}
	if c.ReadTimeout <= 0 {
		return invalid("capture.read_timeout must be > 0, got %s", c.ReadTimeout)
	}
	if c.BufferSizeMB < 0 {
		return invalid("capture.buffer_size_mb must be >= 0, got %d", c.BufferSizeMB)
	}

	if cfg.Decoder.MaxHintLen <= 0 {
		return invalid("decoder.max_hint_len must be > 0, got %d", cfg.Decoder.MaxHintLen)
	}
	if cfg.Session.LogDir == "" {
		return invalid("session.log_dir is required")
	}
	if cfg.Session.LogPrefix == "" {
		return invalid("session.log_prefix is required")
	}

	if !validLevels[strings.ToLower(cfg.Log.Level)] {
		return invalid("invalid log level: %s (must be trace/debug/info/warn/error)", cfg.Log.Level)
	}
	if cfg.Log.File.Enabled && cfg.Log.File.Path == "" {
		return invalid("log.file.path is required when log.file.enabled=true")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return invalid("metrics.listen is required when metrics.enabled=true")
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", core.ErrConfigInvalid, fmt.Sprintf(format, args...))
}

// Dump renders the effective configuration as YAML under the root key.
func (cfg *Config) Dump() ([]byte, error) {
	return yaml.Marshal(configRoot{Pktinspect: *cfg})
}
