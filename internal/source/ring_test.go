package source

import "testing"

func TestRingSize(t *testing.T) {
	tests := []struct {
		name     string
		bufferMB int
		snapLen  int
		pageSize int
	}{
		{"default snaplen", 8, 65535, 4096},
		{"small snaplen", 8, 128, 4096},
		{"page sized frame", 2, 4096 - tpacketHdrLen, 4096},
		{"large pages", 64, 9000, 65536},
		{"tiny buffer", 1, 65535, 4096},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frameSize, blockSize, numBlocks, err := ringSize(tt.bufferMB, tt.snapLen, tt.pageSize)
			if err != nil {
				t.Fatalf("ringSize returned error: %v", err)
			}
			if frameSize < tt.snapLen+tpacketHdrLen {
				t.Errorf("frameSize %d cannot hold snaplen %d", frameSize, tt.snapLen)
			}
			if frameSize%tpacketAlignment != 0 {
				t.Errorf("frameSize %d not aligned to %d", frameSize, tpacketAlignment)
			}
			if blockSize%tt.pageSize != 0 {
				t.Errorf("blockSize %d not a multiple of page size %d", blockSize, tt.pageSize)
			}
			if blockSize%frameSize != 0 {
				t.Errorf("blockSize %d not a multiple of frameSize %d", blockSize, frameSize)
			}
			if numBlocks < 1 {
				t.Errorf("numBlocks = %d, expected >= 1", numBlocks)
			}
		})
	}
}

func TestRingSizeInvalid(t *testing.T) {
	tests := []struct {
		name                        string
		bufferMB, snapLen, pageSize int
	}{
		{"zero buffer", 0, 65535, 4096},
		{"zero snaplen", 8, 0, 4096},
		{"bad page size", 8, 65535, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, err := ringSize(tt.bufferMB, tt.snapLen, tt.pageSize); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLCM(t *testing.T) {
	if got := lcm(4096, 65600); got != 4198400 {
		t.Errorf("lcm(4096, 65600) = %d", got)
	}
	if got := lcm(0, 5); got != 0 {
		t.Errorf("lcm(0, 5) = %d", got)
	}
}
