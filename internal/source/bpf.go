package source

import (
	"fmt"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"golang.org/x/net/bpf"
)

// compileBPF compiles expr with libpcap and converts the program to raw
// instructions for sockets that take a classic BPF program directly.
func compileBPF(linkType layers.LinkType, snapLen int, expr string) ([]bpf.RawInstruction, error) {
	pcapInsns, err := pcap.CompileBPFFilter(linkType, snapLen, expr)
	if err != nil {
		return nil, fmt.Errorf("failed to compile BPF filter %q: %w", expr, err)
	}

	// pcap.BPFInstruction and bpf.RawInstruction share the same layout: Code->Op, Jt, Jf, K.
	raw := make([]bpf.RawInstruction, len(pcapInsns))
	for i, insn := range pcapInsns {
		raw[i] = bpf.RawInstruction{
			Op: insn.Code,
			Jt: insn.Jt,
			Jf: insn.Jf,
			K:  insn.K,
		}
	}
	return raw, nil
}
