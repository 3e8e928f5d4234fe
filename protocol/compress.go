package protocol

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// MaxBodySize bounds a decompressed frame body.
const MaxBodySize = 64 << 20

var (
	bodyEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	bodyDecoder, _ = zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(0),
		zstd.WithDecoderMaxMemory(MaxBodySize))
)

// Compress returns body as a single zstd frame. Used for frames flagged
// FlagCompressed.
func Compress(body []byte) []byte {
	return bodyEncoder.EncodeAll(body, make([]byte, 0, len(body)/2))
}

func Decompress(body []byte) ([]byte, error) {
	out, err := bodyDecoder.DecodeAll(body, nil)
	if err != nil {
		return nil, fmt.Errorf("protocol: zstd: %w", err)
	}
	return out, nil
}
