// Package core defines the packet data structures shared by every stage.
package core

import (
	"time"

	"github.com/google/gopacket/layers"
)

// RawFrame is a captured frame as delivered by a capture source.
// Data is only valid until the next read on the same source.
type RawFrame struct {
	Data       []byte          // Raw frame bytes
	Timestamp  time.Time       // Capture timestamp
	CaptureLen int             // Bytes actually captured
	OrigLen    int             // Original wire length
	LinkType   layers.LinkType // Link layer of Data
}

// Length returns the wire length of the frame, falling back to the captured bytes.
func (f RawFrame) Length() int {
	if f.OrigLen > 0 {
		return f.OrigLen
	}
	if f.CaptureLen > 0 {
		return f.CaptureLen
	}
	return len(f.Data)
}

// PacketRecord is the decoded view of one frame.
// Layer fields are nil when the layer is absent or could not be parsed.
type PacketRecord struct {
	Seq       uint64
	Timestamp time.Time
	Length    int
	Summary   string

	Link        *LinkInfo
	Network     *NetworkInfo
	Transport   *TransportInfo
	Application *ApplicationInfo
}
