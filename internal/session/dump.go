package session

import (
	"bufio"
	"fmt"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/pktinspect/internal/core"
)

// DumpWriter copies processed frames into a pcap file.
type DumpWriter struct {
	path   string
	file   *os.File
	buf    *bufio.Writer
	w      *pcapgo.Writer
	closed bool
}

// NewDumpWriter creates path and writes the pcap file header.
func NewDumpWriter(path string, snapLen int, linkType layers.LinkType) (*DumpWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", core.ErrDumpWrite, path, err)
	}

	buf := bufio.NewWriter(f)
	w := pcapgo.NewWriter(buf)
	if err := w.WriteFileHeader(uint32(snapLen), linkType); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: write header: %v", core.ErrDumpWrite, err)
	}

	return &DumpWriter{path: path, file: f, buf: buf, w: w}, nil
}

// Write appends one frame with its original capture metadata.
func (d *DumpWriter) Write(frame core.RawFrame) error {
	if d.closed {
		return core.ErrSinkClosed
	}
	ci := gopacket.CaptureInfo{
		Timestamp:     frame.Timestamp,
		CaptureLength: len(frame.Data),
		Length:        frame.Length(),
	}
	if ci.Length < ci.CaptureLength {
		ci.Length = ci.CaptureLength
	}
	if err := d.w.WritePacket(ci, frame.Data); err != nil {
		return fmt.Errorf("%w: %v", core.ErrDumpWrite, err)
	}
	return nil
}

// Path returns the dump file path.
func (d *DumpWriter) Path() string {
	return d.path
}

// Close flushes buffered packets and closes the file. Safe to call twice.
func (d *DumpWriter) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	flushErr := d.buf.Flush()
	closeErr := d.file.Close()
	if flushErr != nil {
		return fmt.Errorf("%w: %v", core.ErrDumpWrite, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: %v", core.ErrDumpWrite, closeErr)
	}
	return nil
}
