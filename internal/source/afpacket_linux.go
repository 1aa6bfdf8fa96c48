//go:build linux

package source

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/gopacket/afpacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/pktinspect/internal/config"
	"firestige.xyz/pktinspect/internal/core"
	"firestige.xyz/pktinspect/internal/log"
)

// afpacketSource reads a TPACKET_V3 ring directly. There is no background
// goroutine touching the ring, so Close cannot race a pending read as long
// as the reader is the one closing.
type afpacketSource struct {
	handle   *afpacket.TPacket
	received uint64
	closed   bool
}

func openAFPacket(cfg config.CaptureConfig) (Source, error) {
	bufferMB := cfg.BufferSizeMB
	if bufferMB <= 0 {
		bufferMB = 8
	}
	frameSize, blockSize, numBlocks, err := ringSize(bufferMB, cfg.SnapLen, os.Getpagesize())
	if err != nil {
		return nil, err
	}

	handle, err := afpacket.NewTPacket(
		afpacket.OptInterface(cfg.Interface),
		afpacket.OptFrameSize(frameSize),
		afpacket.OptBlockSize(blockSize),
		afpacket.OptNumBlocks(numBlocks),
		afpacket.OptPollTimeout(cfg.ReadTimeout),
		afpacket.SocketRaw,
		afpacket.TPacketVersion3,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create TPacket handle on %s: %w", cfg.Interface, err)
	}

	if cfg.Filter != "" {
		insns, err := compileBPF(layers.LinkTypeEthernet, cfg.SnapLen, cfg.Filter)
		if err != nil {
			handle.Close()
			return nil, err
		}
		if err := handle.SetBPF(insns); err != nil {
			handle.Close()
			return nil, fmt.Errorf("failed to set BPF: %w", err)
		}
	}

	if err := handle.InitSocketStats(); err != nil {
		log.GetLogger().WithError(err).Warn("failed to init socket stats")
	}

	log.GetLogger().WithFields(map[string]interface{}{
		"frame_size": frameSize,
		"block_size": blockSize,
		"num_blocks": numBlocks,
	}).Debug("afpacket ring configured")

	return &afpacketSource{handle: handle}, nil
}

func (s *afpacketSource) ReadFrame() (core.RawFrame, error) {
	if s.closed {
		return core.RawFrame{}, errors.New("afpacket source closed")
	}

	data, ci, err := s.handle.ZeroCopyReadPacketData()
	if err != nil {
		if errors.Is(err, afpacket.ErrTimeout) {
			return core.RawFrame{}, ErrTimeout
		}
		return core.RawFrame{}, fmt.Errorf("%w: %v", core.ErrSourceRead, err)
	}
	s.received++

	// data points into the mmap ring and is only valid until the next read.
	return core.RawFrame{
		Data:       data,
		Timestamp:  ci.Timestamp,
		CaptureLen: ci.CaptureLength,
		OrigLen:    ci.Length,
		LinkType:   layers.LinkTypeEthernet,
	}, nil
}

func (s *afpacketSource) LinkType() layers.LinkType {
	return layers.LinkTypeEthernet
}

func (s *afpacketSource) Stats() Stats {
	st := Stats{Received: s.received}
	if s.closed {
		return st
	}
	if _, v3, err := s.handle.SocketStats(); err == nil {
		st.Dropped = uint64(v3.Drops())
	}
	return st
}

func (s *afpacketSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.handle.Close()
	return nil
}
