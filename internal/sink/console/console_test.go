package console

import (
	"bytes"
	"net"
	"strings"
	"testing"
	"time"

	"firestige.xyz/pktinspect/internal/core"
	"firestige.xyz/pktinspect/internal/stats"
)

func TestRendererPacketLayers(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)

	rec := core.PacketRecord{
		Seq:       3,
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 6_000_000, time.UTC),
		Length:    60,
		Summary:   "Ethernet aa:bb:cc:dd:ee:ff > ff:ff:ff:ff:ff:ff",
		Link: &core.LinkInfo{
			SrcMAC: net.HardwareAddr{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
			DstMAC: net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		},
	}
	if err := r.Packet(rec, 10); err != nil {
		t.Fatalf("Packet failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"[2024-01-02 03:04:05.006] Packet #3",
		"60 bytes",
		"(total 10)",
		"aa:bb:cc:dd:ee:ff > ff:ff:ff:ff:ff:ff",
		"Summary",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Network") || strings.Contains(out, "Transport") {
		t.Errorf("absent layers should not be rendered:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("plain output should carry no escape sequences: %q", out)
	}
}

func TestRendererSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)

	if err := r.Summary(stats.Summary{}, ""); err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Total packets:     0") {
		t.Errorf("unexpected summary:\n%s", out)
	}
	if strings.Contains(out, "Protocols:") || strings.Contains(out, "Log file:") {
		t.Errorf("empty sections should be omitted:\n%s", out)
	}
}

func TestRendererSummaryLogPath(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, true)

	if err := r.Summary(stats.Summary{PacketCount: 1}, "/tmp/packet_log_x.txt"); err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if !strings.Contains(buf.String(), "/tmp/packet_log_x.txt") {
		t.Errorf("log path missing:\n%s", buf.String())
	}
}
