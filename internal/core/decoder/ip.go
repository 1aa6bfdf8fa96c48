// Package decoder implements protocol decoding.
package decoder

import (
	"net/netip"

	"github.com/google/gopacket/layers"

	"firestige.xyz/pktinspect/internal/core"
)

// ipv4Info extracts addresses and protocol from a decoded IPv4 header.
// AddrFromSlice copies, so the record does not alias the capture buffer.
func ipv4Info(ip *layers.IPv4) *core.NetworkInfo {
	src, ok := netip.AddrFromSlice(ip.SrcIP.To4())
	if !ok {
		return nil
	}
	dst, ok := netip.AddrFromSlice(ip.DstIP.To4())
	if !ok {
		return nil
	}
	return &core.NetworkInfo{
		Version:  4,
		SrcAddr:  src,
		DstAddr:  dst,
		Protocol: uint8(ip.Protocol),
	}
}

// ipv6Info extracts addresses and the upper-layer protocol from a decoded IPv6 header.
func ipv6Info(ip *layers.IPv6) *core.NetworkInfo {
	src, ok := netip.AddrFromSlice(ip.SrcIP.To16())
	if !ok {
		return nil
	}
	dst, ok := netip.AddrFromSlice(ip.DstIP.To16())
	if !ok {
		return nil
	}

	next := ip.NextHeader
	if ip.HopByHop != nil {
		next = ip.HopByHop.NextHeader
	}

	return &core.NetworkInfo{
		Version:  6,
		SrcAddr:  src,
		DstAddr:  dst,
		Protocol: uint8(next),
	}
}
