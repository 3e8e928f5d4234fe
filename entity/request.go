package entity

import (
	"fmt"

	"entity-rpc/codec"
	"github.com/google/uuid"
)

// RequestSchema is the envelope exchanged between peers. ID is a
// caller-assigned correlation token. Method and Param are decoded
// independently; whether they agree is checked at dispatch time.
type RequestSchema struct {
	ID     string
	Method Method
	Param  Param
}

// NewRequest builds an envelope from top-level values without checking that
// method and param agree.
func NewRequest(id string, method Method, param Param) *RequestSchema {
	return &RequestSchema{ID: id, Method: method, Param: param}
}

func NewUserRequest(id string, method UserMethod, param UserParam) *RequestSchema {
	return &RequestSchema{ID: id, Method: method, Param: param}
}

func NewBuildingRequest(id string, method BuildingMethod, param BuildingParam) *RequestSchema {
	return &RequestSchema{ID: id, Method: method, Param: param}
}

// NewOperationRequest derives the method from the payload, so the pair
// always agrees.
func NewOperationRequest(id string, op Param) *RequestSchema {
	return &RequestSchema{ID: id, Method: op.Method(), Param: op}
}

// NewRequestID returns a random correlation token.
func NewRequestID() string {
	return uuid.NewString()
}

// Operation returns the payload when method and param name the same family
// and operation.
func (r *RequestSchema) Operation() (Param, bool) {
	if r == nil || r.Method == nil || r.Param == nil {
		return nil, false
	}
	if r.Param.Method() != r.Method {
		return nil, false
	}
	return r.Param, true
}

func (r *RequestSchema) Encode(c codec.Codec) ([]byte, error) {
	id, err := c.Encode(r.ID)
	if err != nil {
		return nil, err
	}
	method, err := EncodeMethod(c, r.Method)
	if err != nil {
		return nil, err
	}
	param, err := EncodeParam(c, r.Param)
	if err != nil {
		return nil, err
	}
	return c.Object(map[string][]byte{
		"id":     id,
		"method": method,
		"param":  param,
	})
}

func DecodeRequest(c codec.Codec, data []byte) (*RequestSchema, error) {
	fields, err := c.Fields(data)
	if err != nil {
		return nil, fmt.Errorf("entity: decode request: %w", err)
	}
	if err := codec.Require(c, fields, "id", "method", "param"); err != nil {
		return nil, fmt.Errorf("entity: decode request: %w", err)
	}
	id, err := decodeString(c, fields["id"])
	if err != nil {
		return nil, fmt.Errorf("entity: decode request id: %w", err)
	}
	method, err := DecodeMethod(c, fields["method"])
	if err != nil {
		return nil, fmt.Errorf("entity: decode request: %w", err)
	}
	param, err := DecodeParam(c, fields["param"])
	if err != nil {
		return nil, fmt.Errorf("entity: decode request: %w", err)
	}
	return &RequestSchema{ID: id, Method: method, Param: param}, nil
}

func (r RequestSchema) MarshalJSON() ([]byte, error) { return r.Encode(jsonCodec) }
func (r RequestSchema) MarshalCBOR() ([]byte, error) { return r.Encode(cborCodec) }

func (r *RequestSchema) UnmarshalJSON(data []byte) error { return r.decodeFrom(jsonCodec, data) }
func (r *RequestSchema) UnmarshalCBOR(data []byte) error { return r.decodeFrom(cborCodec, data) }

func (r *RequestSchema) decodeFrom(c codec.Codec, data []byte) error {
	decoded, err := DecodeRequest(c, data)
	if err != nil {
		return err
	}
	*r = *decoded
	return nil
}
