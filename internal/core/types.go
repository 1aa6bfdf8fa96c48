// Package core defines core types with zero external dependencies.
package core

import (
	"net"
	"net/netip"
	"strings"
)

// LinkInfo represents the L2 Ethernet addresses of a frame.
type LinkInfo struct {
	SrcMAC net.HardwareAddr
	DstMAC net.HardwareAddr
}

// NetworkInfo represents the L3 IP header fields kept for display and statistics.
type NetworkInfo struct {
	Version  uint8
	SrcAddr  netip.Addr
	DstAddr  netip.Addr
	Protocol uint8 // IPv4 protocol or IPv6 next header
}

// ProtocolName returns the display name of the carried protocol.
func (n *NetworkInfo) ProtocolName() string {
	return ProtocolName(n.Protocol)
}

// TransportInfo represents the L4 ports, plus the flag bits for TCP.
type TransportInfo struct {
	SrcPort uint16
	DstPort uint16
	Flags   *TCPFlags // nil unless the segment is TCP
}

// ApplicationInfo carries the first line of a text payload that mentions HTTP.
type ApplicationInfo struct {
	FirstLine string
}

// TCPFlags is the TCP control bit set in wire order (FIN is bit 0).
type TCPFlags uint8

const (
	TCPFlagFIN TCPFlags = 1 << iota
	TCPFlagSYN
	TCPFlagRST
	TCPFlagPSH
	TCPFlagACK
	TCPFlagURG
	TCPFlagECE
	TCPFlagCWR
)

const tcpFlagLetters = "FSRPAUEC"

// Has reports whether every bit of f2 is set.
func (f TCPFlags) Has(f2 TCPFlags) bool {
	return f&f2 == f2
}

// String renders the set bits as letters, e.g. "SA" for SYN+ACK.
func (f TCPFlags) String() string {
	var b strings.Builder
	for i := 0; i < len(tcpFlagLetters); i++ {
		if f&(1<<i) != 0 {
			b.WriteByte(tcpFlagLetters[i])
		}
	}
	return b.String()
}
