// Package console renders packet records and session summaries for a terminal.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"firestige.xyz/pktinspect/internal/core"
	"firestige.xyz/pktinspect/internal/stats"
)

// TimeLayout renders capture timestamps with millisecond precision.
const TimeLayout = "2006-01-02 15:04:05.000"

const labelWidth = 10

// Renderer writes styled blocks to an output stream. Colour is dropped
// automatically when the stream is not a terminal.
type Renderer struct {
	out io.Writer

	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	summary lipgloss.Style
	box     lipgloss.Style
	title   lipgloss.Style
}

// NewRenderer creates a renderer for out. color=false forces plain text.
func NewRenderer(out io.Writer, color bool) *Renderer {
	r := lipgloss.NewRenderer(out)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		out: out,
		header: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")),
		label: r.NewStyle().
			Width(labelWidth).
			Foreground(lipgloss.Color("240")),
		value: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")),
		summary: r.NewStyle().
			Foreground(lipgloss.Color("229")),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1),
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
	}
}

// Packet writes the multi-line block for one record.
func (r *Renderer) Packet(rec core.PacketRecord, total uint64) error {
	var b strings.Builder

	b.WriteString(r.header.Render(fmt.Sprintf("[%s] Packet #%d  %d bytes  (total %d)",
		rec.Timestamp.Format(TimeLayout), rec.Seq, rec.Length, total)))
	b.WriteByte('\n')

	if rec.Link != nil {
		r.line(&b, "Link", fmt.Sprintf("%s > %s", rec.Link.SrcMAC, rec.Link.DstMAC))
	}
	if rec.Network != nil {
		n := rec.Network
		r.line(&b, "Network", fmt.Sprintf("IPv%d %s > %s  %s", n.Version, n.SrcAddr, n.DstAddr, n.ProtocolName()))
	}
	if rec.Transport != nil {
		t := rec.Transport
		text := fmt.Sprintf("%d > %d", t.SrcPort, t.DstPort)
		if t.Flags != nil {
			text += fmt.Sprintf("  flags [%s]", t.Flags)
		}
		r.line(&b, "Transport", text)
	}
	if rec.Application != nil {
		r.line(&b, "App", rec.Application.FirstLine)
	}
	b.WriteString("  ")
	b.WriteString(r.label.Render("Summary"))
	b.WriteString(r.summary.Render(rec.Summary))
	b.WriteString("\n\n")

	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *Renderer) line(b *strings.Builder, label, text string) {
	b.WriteString("  ")
	b.WriteString(r.label.Render(label))
	b.WriteString(r.value.Render(text))
	b.WriteByte('\n')
}

// Summary writes the end-of-session box. logPath is omitted when empty.
func (r *Renderer) Summary(s stats.Summary, logPath string) error {
	lines := []string{
		r.title.Render("Capture Summary"),
		"",
		fmt.Sprintf("Total packets:     %d", s.PacketCount),
		fmt.Sprintf("Total bytes:       %d", s.Bytes),
		fmt.Sprintf("Unique addresses:  %d", s.UniqueAddresses),
	}

	if len(s.Protocols) > 0 {
		lines = append(lines, "", "Protocols:")
		for _, p := range s.Protocols {
			pct := 0.0
			if s.PacketCount > 0 {
				pct = float64(p.Count) * 100 / float64(s.PacketCount)
			}
			lines = append(lines, fmt.Sprintf("  %-10s %8d  %5.1f%%", p.Protocol, p.Count, pct))
		}
	}
	if logPath != "" {
		lines = append(lines, "", "Log file: "+logPath)
	}

	_, err := io.WriteString(r.out, r.box.Render(strings.Join(lines, "\n"))+"\n")
	return err
}
