package decoder

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/google/gopacket"

	"firestige.xyz/pktinspect/internal/core"
)

// summarize builds the one-line description from the decoded layer names
// and the most specific endpoints available.
func summarize(frame core.RawFrame, decoded []gopacket.LayerType, rec *core.PacketRecord) string {
	if len(decoded) == 0 {
		return fmt.Sprintf("%s frame, %d bytes", frame.LinkType, rec.Length)
	}

	names := make([]string, 0, len(decoded))
	for _, typ := range decoded {
		if typ == gopacket.LayerTypePayload {
			continue
		}
		names = append(names, typ.String())
	}

	var b strings.Builder
	b.WriteString(strings.Join(names, " / "))

	switch {
	case rec.Network != nil && rec.Transport != nil:
		fmt.Fprintf(&b, " %s > %s",
			netip.AddrPortFrom(rec.Network.SrcAddr, rec.Transport.SrcPort),
			netip.AddrPortFrom(rec.Network.DstAddr, rec.Transport.DstPort))
		if rec.Transport.Flags != nil {
			fmt.Fprintf(&b, " %s", rec.Transport.Flags)
		}
	case rec.Network != nil:
		fmt.Fprintf(&b, " %s > %s %s", rec.Network.SrcAddr, rec.Network.DstAddr, rec.Network.ProtocolName())
	case rec.Link != nil:
		fmt.Fprintf(&b, " %s > %s", rec.Link.SrcMAC, rec.Link.DstMAC)
	}
	return b.String()
}
