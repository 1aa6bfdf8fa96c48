package metrics

import (
	"context"
	"io"
	"net/http"
	"net/netip"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/pktinspect/internal/core"
)

func TestObserveRecord(t *testing.T) {
	packets := testutil.ToFloat64(PacketsTotal)
	bytes := testutil.ToFloat64(BytesTotal)
	udp := testutil.ToFloat64(ProtocolPacketsTotal.WithLabelValues("UDP"))
	network := testutil.ToFloat64(DecodedLayersTotal.WithLabelValues(LayerNetwork))
	transport := testutil.ToFloat64(DecodedLayersTotal.WithLabelValues(LayerTransport))

	ObserveRecord(core.PacketRecord{
		Length: 74,
		Network: &core.NetworkInfo{
			SrcAddr:  netip.MustParseAddr("10.0.0.1"),
			DstAddr:  netip.MustParseAddr("10.0.0.2"),
			Protocol: core.ProtocolUDP,
		},
		Transport: &core.TransportInfo{SrcPort: 5353, DstPort: 5353},
	})
	ObserveRecord(core.PacketRecord{Length: 60})

	assert.Equal(t, packets+2, testutil.ToFloat64(PacketsTotal))
	assert.Equal(t, bytes+134, testutil.ToFloat64(BytesTotal))
	assert.Equal(t, udp+1, testutil.ToFloat64(ProtocolPacketsTotal.WithLabelValues("UDP")))
	assert.Equal(t, network+1, testutil.ToFloat64(DecodedLayersTotal.WithLabelValues(LayerNetwork)))
	assert.Equal(t, transport+1, testutil.ToFloat64(DecodedLayersTotal.WithLabelValues(LayerTransport)))
}

func TestServerServesMetrics(t *testing.T) {
	s := NewServer("127.0.0.1:0", "")
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	PacketsTotal.Inc()

	resp, err := http.Get("http://" + s.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "pktinspect_packets_total")
}

func TestServerStopWithoutStart(t *testing.T) {
	assert.NoError(t, NewServer(":0", "/m").Stop(context.Background()))
}
