package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONCodec is the structured-text wire format. Records are JSON objects and
// absent optional fields are omitted, never written as null.
type JSONCodec struct{}

func (c *JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (c *JSONCodec) Type() CodecType {
	return CodecTypeJSON
}

func (c *JSONCodec) Object(fields map[string][]byte) ([]byte, error) {
	raw := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		raw[k] = v
	}
	return json.Marshal(raw)
}

func (c *JSONCodec) Fields(data []byte) (map[string][]byte, error) {
	if c.IsNull(data) {
		return nil, fmt.Errorf("%w: got null", ErrNotRecord)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRecord, err)
	}
	fields := make(map[string][]byte, len(raw))
	for k, v := range raw {
		fields[k] = v
	}
	return fields, nil
}

func (c *JSONCodec) IsNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
