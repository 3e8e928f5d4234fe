package codec

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// CBOR simple values for null and undefined.
const (
	cborNull      byte = 0xf6
	cborUndefined byte = 0xf7
)

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map keys,
// smallest integer encoding, no indefinite-length items.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Records are always string keyed; keep any-typed targets
		// compatible with encoding/json.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBORCodec is the compact binary alternative to JSONCodec. It reads the same
// `json` struct tags, including omitempty, so records keep the same keys.
type CBORCodec struct{}

func (c *CBORCodec) Encode(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func (c *CBORCodec) Decode(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

func (c *CBORCodec) Type() CodecType {
	return CodecTypeCBOR
}

func (c *CBORCodec) Object(fields map[string][]byte) ([]byte, error) {
	raw := make(map[string]cbor.RawMessage, len(fields))
	for k, v := range fields {
		raw[k] = v
	}
	return encMode.Marshal(raw)
}

func (c *CBORCodec) Fields(data []byte) (map[string][]byte, error) {
	if c.IsNull(data) {
		return nil, fmt.Errorf("%w: got null", ErrNotRecord)
	}
	var raw map[string]cbor.RawMessage
	if err := decMode.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRecord, err)
	}
	fields := make(map[string][]byte, len(raw))
	for k, v := range raw {
		fields[k] = v
	}
	return fields, nil
}

func (c *CBORCodec) IsNull(raw []byte) bool {
	return len(raw) == 1 && (raw[0] == cborNull || raw[0] == cborUndefined)
}
