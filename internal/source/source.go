// Package source adapts capture backends to the pull API the session loop reads.
package source

import (
	"errors"
	"fmt"

	"github.com/google/gopacket/layers"

	"firestige.xyz/pktinspect/internal/config"
	"firestige.xyz/pktinspect/internal/core"
	"firestige.xyz/pktinspect/internal/log"
)

// ErrTimeout is returned by ReadFrame when no frame arrived within the read
// timeout. It is not fatal; the caller checks for cancellation and reads again.
var ErrTimeout = errors.New("pktinspect: capture read timeout")

// Stats holds backend counters.
type Stats struct {
	Received uint64
	Dropped  uint64 // dropped by the kernel or capture library
}

// Source is a capture handle owned by a single reader.
type Source interface {
	// ReadFrame returns the next frame, ErrTimeout, io.EOF at the end of an
	// offline capture, or a fatal error. The frame data is only valid until
	// the next call.
	ReadFrame() (core.RawFrame, error)
	LinkType() layers.LinkType
	Stats() Stats
	Close() error
}

// Opener opens a capture source from configuration.
type Opener interface {
	Open(cfg config.CaptureConfig) (Source, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(cfg config.CaptureConfig) (Source, error)

func (f OpenerFunc) Open(cfg config.CaptureConfig) (Source, error) {
	return f(cfg)
}

// DefaultOpener selects the backend with Open.
var DefaultOpener Opener = OpenerFunc(Open)

// Open selects the backend: an offline file when capture.file is set,
// otherwise the configured live backend. Failures wrap core.ErrSourceOpen.
func Open(cfg config.CaptureConfig) (Source, error) {
	var (
		src Source
		err error
	)

	switch {
	case cfg.Offline():
		src, err = openFile(cfg)
	case cfg.Backend == config.BackendAFPacket:
		src, err = openAFPacket(cfg)
	case cfg.Backend == config.BackendPcap || cfg.Backend == "":
		src, err = openPcap(cfg)
	default:
		err = fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSourceOpen, err)
	}

	log.GetLogger().WithFields(map[string]interface{}{
		"interface": cfg.Interface,
		"file":      cfg.File,
		"backend":   cfg.Backend,
		"filter":    cfg.Filter,
		"link_type": src.LinkType().String(),
	}).Info("capture source opened")
	return src, nil
}
