package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/pktinspect/internal/core"
)

func newTestFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("interface", "i", "", "")
	fs.IntP("count", "c", 0, "")
	fs.StringP("filter", "f", "", "")
	fs.String("backend", BackendPcap, "")
	fs.StringP("read", "r", "", "")
	fs.StringP("write", "w", "", "")
	fs.Int("snaplen", 65535, "")
	fs.String("log-dir", ".", "")
	fs.String("log-level", "info", "")
	fs.BoolP("quiet", "q", false, "")
	fs.Bool("no-color", false, "")
	fs.String("metrics", "", "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, BackendPcap, cfg.Capture.Backend)
	assert.Equal(t, 0, cfg.Capture.Count)
	assert.Equal(t, 65535, cfg.Capture.SnapLen)
	assert.True(t, cfg.Capture.Promiscuous)
	assert.Equal(t, 500*time.Millisecond, cfg.Capture.ReadTimeout)
	assert.Equal(t, 256, cfg.Decoder.MaxHintLen)
	assert.Equal(t, "packet_log", cfg.Session.LogPrefix)
	assert.True(t, cfg.Console.Enabled)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yml")

	configContent := `
pktinspect:
  capture:
    interface: "eth0"
    backend: "afpacket"
    filter: "udp port 53"
    count: 10
    read_timeout: "250ms"
  session:
    log_dir: "/tmp/pktlogs"
  console:
    enabled: false
  log:
    level: "debug"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "eth0", cfg.Capture.Interface)
	assert.Equal(t, BackendAFPacket, cfg.Capture.Backend)
	assert.Equal(t, "udp port 53", cfg.Capture.Filter)
	assert.Equal(t, 10, cfg.Capture.Count)
	assert.Equal(t, 250*time.Millisecond, cfg.Capture.ReadTimeout)
	assert.Equal(t, "/tmp/pktlogs", cfg.Session.LogDir)
	assert.False(t, cfg.Console.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 65535, cfg.Capture.SnapLen)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConfigInvalid))
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PKTINSPECT_CAPTURE_INTERFACE", "eth9")
	t.Setenv("PKTINSPECT_LOG_LEVEL", "warn")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "eth9", cfg.Capture.Interface)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFlagsOverride(t *testing.T) {
	t.Setenv("PKTINSPECT_CAPTURE_INTERFACE", "eth9")

	fs := newTestFlags()
	require.NoError(t, fs.Parse([]string{"-i", "lo", "-c", "3", "-f", "tcp", "--quiet", "--metrics", ":9100"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)

	assert.Equal(t, "lo", cfg.Capture.Interface)
	assert.Equal(t, 3, cfg.Capture.Count)
	assert.Equal(t, "tcp", cfg.Capture.Filter)
	assert.False(t, cfg.Console.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9100", cfg.Metrics.Listen)
	// Unset flags do not override defaults.
	assert.Equal(t, BackendPcap, cfg.Capture.Backend)
	assert.True(t, cfg.Console.Color)
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load("", nil)
	require.NoError(t, err)
	cfg.Capture.Interface = "eth0"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"negative count", func(c *Config) { c.Capture.Count = -1 }, "capture.count"},
		{"unknown backend", func(c *Config) { c.Capture.Backend = "netmap" }, "capture.backend"},
		{"missing interface", func(c *Config) { c.Capture.Interface = "" }, "capture.interface"},
		{"file without interface", func(c *Config) {
			c.Capture.Interface = ""
			c.Capture.File = "trace.pcap"
		}, ""},
		{"file ignores backend", func(c *Config) {
			c.Capture.File = "trace.pcap"
			c.Capture.Backend = "bogus"
		}, ""},
		{"zero snaplen", func(c *Config) { c.Capture.SnapLen = 0 }, "snap_len"},
		{"zero read timeout", func(c *Config) { c.Capture.ReadTimeout = 0 }, "read_timeout"},
		{"zero hint length", func(c *Config) { c.Decoder.MaxHintLen = 0 }, "max_hint_len"},
		{"empty log dir", func(c *Config) { c.Session.LogDir = "" }, "log_dir"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log level"},
		{"file log without path", func(c *Config) {
			c.Log.File.Enabled = true
			c.Log.File.Path = ""
		}, "log.file.path"},
		{"metrics without listen", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Listen = ""
		}, "metrics.listen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrConfigInvalid), "error should wrap ErrConfigInvalid: %v", err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDump(t *testing.T) {
	cfg := validConfig(t)

	out, err := cfg.Dump()
	require.NoError(t, err)

	text := string(out)
	if !strings.HasPrefix(text, "pktinspect:") {
		t.Errorf("dump should start with root key, got %q", text)
	}
	assert.Contains(t, text, "interface: eth0")
	assert.Contains(t, text, "read_timeout: 500ms")
	assert.Contains(t, text, "backend: pcap")
}
