// Package decoder implements best-effort L2-L4 frame decoding.
package decoder

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/pktinspect/internal/core"
	"firestige.xyz/pktinspect/internal/log"
)

const defaultMaxHintLen = 256

// Decoder turns a captured frame into a PacketRecord. It never fails:
// layers that cannot be parsed are left out of the record.
type Decoder interface {
	Decode(frame core.RawFrame, seq uint64) core.PacketRecord
}

// Config contains decoder configuration.
type Config struct {
	MaxHintLen int // Maximum bytes kept from the application first line (default 256)
}

// FrameDecoder decodes frames with reusable gopacket decoding layers.
// It is not safe for concurrent use; the capture loop owns one instance.
type FrameDecoder struct {
	cfg Config

	eth     layers.Ethernet
	dot1q   layers.Dot1Q
	sll     layers.LinuxSLL
	loop    layers.Loopback
	ip4     layers.IPv4
	ip6     layers.IPv6
	tcp     layers.TCP
	udp     layers.UDP
	payload gopacket.Payload

	parsers map[gopacket.LayerType]*gopacket.DecodingLayerParser
	decoded []gopacket.LayerType
}

// NewFrameDecoder creates a new frame decoder.
func NewFrameDecoder(cfg Config) *FrameDecoder {
	if cfg.MaxHintLen <= 0 {
		cfg.MaxHintLen = defaultMaxHintLen
	}
	return &FrameDecoder{
		cfg:     cfg,
		parsers: make(map[gopacket.LayerType]*gopacket.DecodingLayerParser),
		decoded: make([]gopacket.LayerType, 0, 8),
	}
}

// Decode decodes one frame into a record carrying the given sequence number.
func (d *FrameDecoder) Decode(frame core.RawFrame, seq uint64) core.PacketRecord {
	rec := core.PacketRecord{
		Seq:       seq,
		Timestamp: frame.Timestamp,
		Length:    frame.Length(),
	}

	first := firstLayer(frame.LinkType, frame.Data)
	if first == gopacket.LayerTypeZero {
		d.decoded = d.decoded[:0]
		if logger := log.GetLogger(); logger.IsDebugEnabled() {
			logger.WithField("seq", seq).WithField("link_type", frame.LinkType.String()).Debug("unsupported link type")
		}
	} else if err := d.parser(first).DecodeLayers(frame.Data, &d.decoded); err != nil {
		// Decoding stops at the failing layer; everything above it is kept.
		if logger := log.GetLogger(); logger.IsDebugEnabled() {
			logger.WithField("seq", seq).WithError(err).Debug("partial frame decode")
		}
	}

	var rest []byte
	for _, typ := range d.decoded {
		switch typ {
		case layers.LayerTypeEthernet:
			rec.Link = linkInfo(&d.eth)
			rest = d.eth.LayerPayload()
		case layers.LayerTypeDot1Q:
			rest = d.dot1q.LayerPayload()
		case layers.LayerTypeLinuxSLL:
			rest = d.sll.LayerPayload()
		case layers.LayerTypeLoopback:
			rest = d.loop.LayerPayload()
		case layers.LayerTypeIPv4:
			rec.Network = ipv4Info(&d.ip4)
			rest = d.ip4.LayerPayload()
		case layers.LayerTypeIPv6:
			rec.Network = ipv6Info(&d.ip6)
			rest = d.ip6.LayerPayload()
		case layers.LayerTypeTCP:
			if rec.Network != nil && rec.Network.Protocol == core.ProtocolTCP {
				rec.Transport = tcpInfo(&d.tcp)
			}
			rest = d.tcp.LayerPayload()
		case layers.LayerTypeUDP:
			if rec.Network != nil && rec.Network.Protocol == core.ProtocolUDP {
				rec.Transport = udpInfo(&d.udp)
			}
			rest = d.udp.LayerPayload()
		case gopacket.LayerTypePayload:
			rest = d.payload.Payload()
		}
	}

	if len(d.decoded) > 0 && !transportMissing(&rec) {
		rec.Application = applicationInfo(rest, d.cfg.MaxHintLen)
	}
	rec.Summary = summarize(frame, d.decoded, &rec)
	return rec
}

// parser returns the cached parser rooted at the given layer type.
func (d *FrameDecoder) parser(first gopacket.LayerType) *gopacket.DecodingLayerParser {
	if p, ok := d.parsers[first]; ok {
		return p
	}
	p := gopacket.NewDecodingLayerParser(
		first,
		&d.eth,
		&d.dot1q,
		&d.sll,
		&d.loop,
		&d.ip4,
		&d.ip6,
		&d.tcp,
		&d.udp,
		&d.payload,
	)
	p.IgnoreUnsupported = true
	d.parsers[first] = p
	return p
}

// transportMissing reports a TCP or UDP packet whose header did not decode.
// The remaining bytes still start with that header, so they are not payload.
func transportMissing(rec *core.PacketRecord) bool {
	if rec.Network == nil || rec.Transport != nil {
		return false
	}
	return rec.Network.Protocol == core.ProtocolTCP || rec.Network.Protocol == core.ProtocolUDP
}

// firstLayer maps the source link type to the outermost layer to decode.
// Link types without a decoder yield gopacket.LayerTypeZero.
func firstLayer(linkType layers.LinkType, data []byte) gopacket.LayerType {
	switch linkType {
	case layers.LinkTypeEthernet:
		return layers.LayerTypeEthernet
	case layers.LinkTypeLinuxSLL:
		return layers.LayerTypeLinuxSLL
	case layers.LinkTypeNull, layers.LinkTypeLoop:
		return layers.LayerTypeLoopback
	case layers.LinkTypeIPv4:
		return layers.LayerTypeIPv4
	case layers.LinkTypeIPv6:
		return layers.LayerTypeIPv6
	case layers.LinkTypeRaw:
		// Raw IP carries no link header; the version nibble tells the family.
		if len(data) > 0 && data[0]>>4 == 6 {
			return layers.LayerTypeIPv6
		}
		return layers.LayerTypeIPv4
	default:
		return gopacket.LayerTypeZero
	}
}
