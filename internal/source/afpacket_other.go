//go:build !linux

package source

import (
	"errors"

	"firestige.xyz/pktinspect/internal/config"
)

func openAFPacket(config.CaptureConfig) (Source, error) {
	return nil, errors.New("afpacket backend is only available on linux")
}
