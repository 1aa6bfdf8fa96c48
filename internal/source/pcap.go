package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"firestige.xyz/pktinspect/internal/config"
	"firestige.xyz/pktinspect/internal/core"
)

// pcapSource reads from a libpcap handle, live or offline.
type pcapSource struct {
	handle  *pcap.Handle
	offline bool
	closed  bool
}

// openPcap opens a live libpcap handle on cfg.Interface.
func openPcap(cfg config.CaptureConfig) (Source, error) {
	inactive, err := pcap.NewInactiveHandle(cfg.Interface)
	if err != nil {
		return nil, fmt.Errorf("failed to create handle on %s: %w", cfg.Interface, err)
	}
	defer inactive.CleanUp()

	if err := inactive.SetSnapLen(cfg.SnapLen); err != nil {
		return nil, fmt.Errorf("failed to set snaplen: %w", err)
	}
	if err := inactive.SetPromisc(cfg.Promiscuous); err != nil {
		return nil, fmt.Errorf("failed to set promiscuous mode: %w", err)
	}
	if err := inactive.SetTimeout(cfg.ReadTimeout); err != nil {
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}
	if cfg.BufferSizeMB > 0 {
		if err := inactive.SetBufferSize(cfg.BufferSizeMB * 1024 * 1024); err != nil {
			return nil, fmt.Errorf("failed to set buffer size: %w", err)
		}
	}

	handle, err := inactive.Activate()
	if err != nil {
		return nil, fmt.Errorf("failed to activate handle on %s: %w", cfg.Interface, err)
	}

	if cfg.Filter != "" {
		if err := handle.SetBPFFilter(cfg.Filter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("failed to set BPF filter %q: %w", cfg.Filter, err)
		}
	}
	return &pcapSource{handle: handle}, nil
}

// openFile replays a pcap file; reads end with io.EOF.
func openFile(cfg config.CaptureConfig) (Source, error) {
	handle, err := pcap.OpenOffline(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap file %s: %w", cfg.File, err)
	}

	if cfg.Filter != "" {
		if err := handle.SetBPFFilter(cfg.Filter); err != nil {
			handle.Close()
			return nil, fmt.Errorf("failed to set BPF filter %q: %w", cfg.Filter, err)
		}
	}
	return &pcapSource{handle: handle, offline: true}, nil
}

func (s *pcapSource) ReadFrame() (core.RawFrame, error) {
	if s.closed {
		return core.RawFrame{}, io.EOF
	}

	data, ci, err := s.handle.ReadPacketData()
	switch {
	case err == nil:
	case errors.Is(err, pcap.NextErrorTimeoutExpired):
		return core.RawFrame{}, ErrTimeout
	case errors.Is(err, io.EOF):
		return core.RawFrame{}, io.EOF
	default:
		return core.RawFrame{}, fmt.Errorf("%w: %v", core.ErrSourceRead, err)
	}

	return core.RawFrame{
		Data:       data,
		Timestamp:  ci.Timestamp,
		CaptureLen: ci.CaptureLength,
		OrigLen:    ci.Length,
		LinkType:   s.handle.LinkType(),
	}, nil
}

func (s *pcapSource) LinkType() layers.LinkType {
	return s.handle.LinkType()
}

func (s *pcapSource) Stats() Stats {
	if s.offline || s.closed {
		return Stats{}
	}
	st, err := s.handle.Stats()
	if err != nil {
		return Stats{}
	}
	return Stats{
		Received: uint64(st.PacketsReceived),
		Dropped:  uint64(st.PacketsDropped + st.PacketsIfDropped),
	}
}

func (s *pcapSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.handle.Close()
	return nil
}
