package decoder

import (
	"strings"

	"firestige.xyz/pktinspect/internal/core"
)

const httpMarker = "HTTP"

// applicationInfo looks for an HTTP marker in the payload left after header
// parsing and keeps the first CRLF-terminated line. Invalid UTF-8 is replaced,
// never rejected.
func applicationInfo(payload []byte, maxLen int) *core.ApplicationInfo {
	if len(payload) == 0 {
		return nil
	}

	text := strings.ToValidUTF8(string(payload), "�")
	if !strings.Contains(text, httpMarker) {
		return nil
	}

	line, _, _ := strings.Cut(text, "\r\n")
	if len(line) > maxLen {
		line = strings.ToValidUTF8(line[:maxLen], "")
	}
	return &core.ApplicationInfo{FirstLine: line}
}
