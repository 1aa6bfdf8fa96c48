// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"firestige.xyz/pktinspect/internal/core"
)

var (
	// PacketsTotal counts frames processed by the session loop
	PacketsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pktinspect_packets_total",
			Help: "Total number of packets processed",
		},
	)

	// BytesTotal counts wire bytes of processed frames
	BytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pktinspect_bytes_total",
			Help: "Total number of bytes processed",
		},
	)

	// ProtocolPacketsTotal counts packets per network protocol name
	ProtocolPacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pktinspect_protocol_packets_total",
			Help: "Total number of packets per protocol",
		},
		[]string{"protocol"},
	)

	// DecodedLayersTotal counts decoded layers by kind
	DecodedLayersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pktinspect_decoded_layers_total",
			Help: "Total number of decoded layers by kind",
		},
		[]string{"layer"},
	)

	// UniqueAddresses is the number of distinct addresses seen in the session
	UniqueAddresses = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pktinspect_unique_addresses",
			Help: "Number of distinct network addresses seen",
		},
	)

	// SessionState is the capture session state (0=idle, 1=capturing, 2=draining, 3=terminated)
	SessionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pktinspect_session_state",
			Help: "Capture session state (0=idle, 1=capturing, 2=draining, 3=terminated)",
		},
	)

	// CaptureDropsTotal counts packets dropped by the capture backend
	CaptureDropsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pktinspect_capture_drops_total",
			Help: "Total number of packets dropped by the capture backend",
		},
	)
)

// Layer label values.
const (
	LayerLink        = "link"
	LayerNetwork     = "network"
	LayerTransport   = "transport"
	LayerApplication = "application"
)

// ObserveRecord updates the per-packet collectors.
func ObserveRecord(rec core.PacketRecord) {
	PacketsTotal.Inc()
	if rec.Length > 0 {
		BytesTotal.Add(float64(rec.Length))
	}

	if rec.Link != nil {
		DecodedLayersTotal.WithLabelValues(LayerLink).Inc()
	}
	if rec.Network != nil {
		DecodedLayersTotal.WithLabelValues(LayerNetwork).Inc()
		ProtocolPacketsTotal.WithLabelValues(rec.Network.ProtocolName()).Inc()
	}
	if rec.Transport != nil {
		DecodedLayersTotal.WithLabelValues(LayerTransport).Inc()
	}
	if rec.Application != nil {
		DecodedLayersTotal.WithLabelValues(LayerApplication).Inc()
	}
}
