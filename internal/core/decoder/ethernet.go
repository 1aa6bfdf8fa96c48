// Package decoder implements protocol decoding.
package decoder

import (
	"net"

	"github.com/google/gopacket/layers"

	"firestige.xyz/pktinspect/internal/core"
)

// linkInfo copies the Ethernet addresses out of the reusable layer.
func linkInfo(eth *layers.Ethernet) *core.LinkInfo {
	return &core.LinkInfo{
		SrcMAC: cloneMAC(eth.SrcMAC),
		DstMAC: cloneMAC(eth.DstMAC),
	}
}

func cloneMAC(mac net.HardwareAddr) net.HardwareAddr {
	out := make(net.HardwareAddr, len(mac))
	copy(out, mac)
	return out
}
