// Package stats tracks running statistics for one capture session.
package stats

import (
	"net/netip"
	"sort"

	"firestige.xyz/pktinspect/internal/core"
)

// ProtocolCount holds the packet count of a single protocol.
type ProtocolCount struct {
	Protocol string
	Count    uint64
}

// Summary is a read-only snapshot of session statistics.
type Summary struct {
	PacketCount     uint64
	Bytes           uint64
	UniqueAddresses int
	Protocols       []ProtocolCount // descending by count, ties in first-seen order
}

// Tracker accumulates statistics over the records of a session.
// It is not safe for concurrent use; only the processing loop touches it.
type Tracker struct {
	packets   uint64
	bytes     uint64
	addresses map[netip.Addr]struct{}

	protocols []ProtocolCount // first-seen order
	index     map[string]int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		addresses: make(map[netip.Addr]struct{}),
		index:     make(map[string]int),
	}
}

// Record folds one packet record into the statistics. Records without a
// network layer count as packets but leave addresses and protocols untouched.
func (t *Tracker) Record(rec core.PacketRecord) {
	t.packets++
	if rec.Length > 0 {
		t.bytes += uint64(rec.Length)
	}

	if rec.Network == nil {
		return
	}
	t.addresses[rec.Network.SrcAddr] = struct{}{}
	t.addresses[rec.Network.DstAddr] = struct{}{}

	name := rec.Network.ProtocolName()
	if i, ok := t.index[name]; ok {
		t.protocols[i].Count++
		return
	}
	t.index[name] = len(t.protocols)
	t.protocols = append(t.protocols, ProtocolCount{Protocol: name, Count: 1})
}

// PacketCount returns the number of records seen so far.
func (t *Tracker) PacketCount() uint64 {
	return t.packets
}

// UniqueAddresses returns the number of distinct network addresses seen.
func (t *Tracker) UniqueAddresses() int {
	return len(t.addresses)
}

// Summary returns a snapshot; later Record calls do not affect it.
func (t *Tracker) Summary() Summary {
	protocols := make([]ProtocolCount, len(t.protocols))
	copy(protocols, t.protocols)
	sort.SliceStable(protocols, func(i, j int) bool {
		return protocols[i].Count > protocols[j].Count
	})

	return Summary{
		PacketCount:     t.packets,
		Bytes:           t.bytes,
		UniqueAddresses: len(t.addresses),
		Protocols:       protocols,
	}
}
