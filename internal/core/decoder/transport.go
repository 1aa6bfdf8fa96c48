// Package decoder implements protocol decoding.
package decoder

import (
	"github.com/google/gopacket/layers"

	"firestige.xyz/pktinspect/internal/core"
)

// tcpInfo extracts ports and control bits from a decoded TCP header.
func tcpInfo(tcp *layers.TCP) *core.TransportInfo {
	flags := tcpFlags(tcp)
	return &core.TransportInfo{
		SrcPort: uint16(tcp.SrcPort),
		DstPort: uint16(tcp.DstPort),
		Flags:   &flags,
	}
}

// udpInfo extracts ports from a decoded UDP header. UDP has no flags.
func udpInfo(udp *layers.UDP) *core.TransportInfo {
	return &core.TransportInfo{
		SrcPort: uint16(udp.SrcPort),
		DstPort: uint16(udp.DstPort),
	}
}

func tcpFlags(tcp *layers.TCP) core.TCPFlags {
	var f core.TCPFlags
	if tcp.FIN {
		f |= core.TCPFlagFIN
	}
	if tcp.SYN {
		f |= core.TCPFlagSYN
	}
	if tcp.RST {
		f |= core.TCPFlagRST
	}
	if tcp.PSH {
		f |= core.TCPFlagPSH
	}
	if tcp.ACK {
		f |= core.TCPFlagACK
	}
	if tcp.URG {
		f |= core.TCPFlagURG
	}
	if tcp.ECE {
		f |= core.TCPFlagECE
	}
	if tcp.CWR {
		f |= core.TCPFlagCWR
	}
	return f
}
