package core

import "strconv"

// IP protocol numbers with a display name.
const (
	ProtocolICMP uint8 = 1
	ProtocolIGMP uint8 = 2
	ProtocolTCP  uint8 = 6
	ProtocolUDP  uint8 = 17
	ProtocolOSPF uint8 = 89
)

var protocolNames = map[uint8]string{
	ProtocolICMP: "ICMP",
	ProtocolIGMP: "IGMP",
	ProtocolTCP:  "TCP",
	ProtocolUDP:  "UDP",
	ProtocolOSPF: "OSPF",
}

// ProtocolName returns the display name for an IP protocol number,
// or "Proto_<n>" when the number is not in the table.
func ProtocolName(proto uint8) string {
	if name, ok := protocolNames[proto]; ok {
		return name
	}
	return "Proto_" + strconv.Itoa(int(proto))
}
