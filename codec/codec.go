// Package codec serializes schema values for transport between peers.
//
// Two formats share one shape contract: JSON (the structured-text interop
// format) and CBOR (compact, deterministic). Both are driven by the same
// `json` struct tags.
package codec

type CodecType byte

const (
	CodecTypeJSON CodecType = 0
	CodecTypeCBOR CodecType = 1
)

// Codec serializes values and exposes the record-level primitives the union
// engine works with. Implementations must agree on shape: a record is a map
// keyed by field name, and the same struct tags drive both formats.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Type() CodecType // 0=JSON, 1=CBOR

	// Object builds a record from already-encoded field values.
	Object(fields map[string][]byte) ([]byte, error)
	// Fields splits a record into its raw field values.
	// It fails if data is not a record.
	Fields(data []byte) (map[string][]byte, error)
	// IsNull reports whether raw is an encoded null.
	IsNull(raw []byte) bool
}

func GetCodec(codecType CodecType) Codec {
	if codecType == CodecTypeJSON {
		return &JSONCodec{}
	}

	return &CBORCodec{}
}

// ParseCodecType maps a configuration name to a CodecType.
func ParseCodecType(name string) (CodecType, bool) {
	switch name {
	case "json", "":
		return CodecTypeJSON, true
	case "cbor":
		return CodecTypeCBOR, true
	}
	return 0, false
}

func (t CodecType) String() string {
	switch t {
	case CodecTypeJSON:
		return "json"
	case CodecTypeCBOR:
		return "cbor"
	}
	return "unknown"
}
