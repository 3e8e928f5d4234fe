// Package entity defines the request schema exchanged between peers: the
// domain records, the per-family method enumerations and parameter unions,
// the top-level Method/Param unions that combine the families, and the
// RequestSchema envelope.
//
// Every union travels in the keyed shape described in package codec:
//
//	{"id": "1", "method": {"user": {"_0": "createUser"}},
//	 "param": {"user": {"createUser": {"id": "3", "name": "emi", "email": "emi@example.com"}}}}
package entity

import (
	"errors"

	"entity-rpc/codec"
)

// Family names an entity family. It is also the variant key used by the
// top-level Method and Param unions.
type Family string

const (
	FamilyUser     Family = "user"
	FamilyBuilding Family = "building"
)

var ErrUnknownMethod = errors.New("entity: unknown method")

// Method is the top-level operation name: a UserMethod or a BuildingMethod.
type Method interface {
	Family() Family
	String() string
}

// Param is the top-level payload: any operation payload record.
// The concrete type identifies both the family and the operation.
type Param interface {
	Family() Family
	// Method is the operation this payload belongs to.
	Method() Method
	// TargetID is the id of the record the operation creates or touches.
	TargetID() string
}

var (
	jsonCodec = codec.GetCodec(codec.CodecTypeJSON)
	cborCodec = codec.GetCodec(codec.CodecTypeCBOR)
)

func decodeString(c codec.Codec, raw []byte) (string, error) {
	var s string
	err := c.Decode(raw, &s)
	return s, err
}
