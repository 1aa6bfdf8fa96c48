package source

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/pktinspect/internal/config"
	"firestige.xyz/pktinspect/internal/core"
)

func udpFrame(t *testing.T, dstPort layers.UDPPort) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true},
		&layers.Ethernet{
			SrcMAC:       []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
			DstMAC:       []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
			EthernetType: layers.EthernetTypeIPv4,
		},
		&layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolUDP, SrcIP: []byte{10, 0, 0, 1}, DstIP: []byte{10, 0, 0, 2}},
		&layers.UDP{SrcPort: 40000, DstPort: dstPort},
		gopacket.Payload([]byte("hello")),
	)
	require.NoError(t, err)
	return buf.Bytes()
}

func writePcap(t *testing.T, frames ...[]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace.pcap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := pcapgo.NewWriter(f)
	require.NoError(t, w.WriteFileHeader(65535, layers.LinkTypeEthernet))
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, data := range frames {
		ci := gopacket.CaptureInfo{
			Timestamp:     ts.Add(time.Duration(i) * time.Millisecond),
			CaptureLength: len(data),
			Length:        len(data),
		}
		require.NoError(t, w.WritePacket(ci, data))
	}
	return path
}

func TestOpenFileReadsUntilEOF(t *testing.T) {
	path := writePcap(t, udpFrame(t, 53), udpFrame(t, 123))

	src, err := Open(config.CaptureConfig{File: path})
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, layers.LinkTypeEthernet, src.LinkType())

	frame, err := src.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, layers.LinkTypeEthernet, frame.LinkType)
	assert.Equal(t, len(frame.Data), frame.CaptureLen)
	assert.Equal(t, 2024, frame.Timestamp.Year())

	_, err = src.ReadFrame()
	require.NoError(t, err)

	_, err = src.ReadFrame()
	assert.Equal(t, io.EOF, err)
}

func TestOpenFileWithFilter(t *testing.T) {
	path := writePcap(t, udpFrame(t, 53), udpFrame(t, 123), udpFrame(t, 53))

	src, err := Open(config.CaptureConfig{File: path, Filter: "udp port 53"})
	require.NoError(t, err)
	defer src.Close()

	n := 0
	for {
		_, err := src.ReadFrame()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 2, n)
}

func TestOpenFileMissing(t *testing.T) {
	_, err := Open(config.CaptureConfig{File: filepath.Join(t.TempDir(), "none.pcap")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSourceOpen))
}

func TestOpenFileBadFilter(t *testing.T) {
	path := writePcap(t, udpFrame(t, 53))

	_, err := Open(config.CaptureConfig{File: path, Filter: "not a (valid filter"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSourceOpen))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(config.CaptureConfig{Interface: "eth0", Backend: "netmap"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSourceOpen))
	assert.Contains(t, err.Error(), "netmap")
}

func TestCloseIsIdempotent(t *testing.T) {
	src, err := Open(config.CaptureConfig{File: writePcap(t, udpFrame(t, 53))})
	require.NoError(t, err)

	assert.NoError(t, src.Close())
	assert.NoError(t, src.Close())
	assert.Equal(t, Stats{}, src.Stats())
}

func TestOpenerFunc(t *testing.T) {
	called := false
	var o Opener = OpenerFunc(func(cfg config.CaptureConfig) (Source, error) {
		called = true
		assert.Equal(t, "lo", cfg.Interface)
		return nil, errors.New("boom")
	})

	_, err := o.Open(config.CaptureConfig{Interface: "lo"})
	assert.True(t, called)
	assert.EqualError(t, err, "boom")
}

func TestCompileBPF(t *testing.T) {
	insns, err := compileBPF(layers.LinkTypeEthernet, 65535, "tcp port 80")
	require.NoError(t, err)
	assert.NotEmpty(t, insns)

	_, err = compileBPF(layers.LinkTypeEthernet, 65535, "tcp port")
	assert.Error(t, err)
}
