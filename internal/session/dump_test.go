package session

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/pktinspect/internal/core"
)

func TestDumpWriterTruncatedFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trunc.pcap")
	d, err := NewDumpWriter(path, 64, layers.LinkTypeEthernet)
	require.NoError(t, err)
	assert.Equal(t, path, d.Path())

	frame := core.RawFrame{
		Data:       make([]byte, 64),
		Timestamp:  frameTime,
		CaptureLen: 64,
		OrigLen:    1500,
	}
	require.NoError(t, d.Write(frame))
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r, err := pcapgo.NewReader(f)
	require.NoError(t, err)
	assert.Equal(t, uint32(64), r.Snaplen())

	data, ci, err := r.ReadPacketData()
	require.NoError(t, err)
	assert.Len(t, data, 64)
	assert.Equal(t, 1500, ci.Length)

	_, _, err = r.ReadPacketData()
	assert.Equal(t, io.EOF, err)
}

func TestDumpWriterAfterClose(t *testing.T) {
	d, err := NewDumpWriter(filepath.Join(t.TempDir(), "closed.pcap"), 65535, layers.LinkTypeEthernet)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	err = d.Write(core.RawFrame{Data: []byte{1, 2, 3}})
	assert.True(t, errors.Is(err, core.ErrSinkClosed))
}

func TestDumpWriterCreateFailure(t *testing.T) {
	_, err := NewDumpWriter(filepath.Join(t.TempDir(), "missing", "x.pcap"), 65535, layers.LinkTypeEthernet)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDumpWrite))
}
