package entity

import (
	"fmt"

	"entity-rpc/codec"
)

// methodName is the payload of a top-level Method variant. The family's
// method name sits under the positional key "_0":
//
//	{"user": {"_0": "createUser"}}
type methodName struct {
	Name string `json:"_0"`
}

// decodeMethodName accepts the {"_0": name} record and, for older peers, a
// bare name string.
func decodeMethodName(c codec.Codec, raw []byte) (string, error) {
	if s, err := decodeString(c, raw); err == nil {
		return s, nil
	}
	p, err := codec.Payload[methodName](c, raw)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}

// Trial order: user, building.
var methodUnion = codec.NewUnion("Method",
	codec.Variant[Method]{
		Key: string(FamilyUser),
		Decode: func(c codec.Codec, raw []byte) (Method, error) {
			s, err := decodeMethodName(c, raw)
			if err != nil {
				return nil, err
			}
			return ParseUserMethod(s)
		},
	},
	codec.Variant[Method]{
		Key: string(FamilyBuilding),
		Decode: func(c codec.Codec, raw []byte) (Method, error) {
			s, err := decodeMethodName(c, raw)
			if err != nil {
				return nil, err
			}
			return ParseBuildingMethod(s)
		},
	},
)

// EncodeMethod writes m as {"<family>": {"_0": "<method>"}}.
func EncodeMethod(c codec.Codec, m Method) ([]byte, error) {
	switch m.(type) {
	case UserMethod, BuildingMethod:
		return codec.EncodeVariant(c, string(m.Family()), methodName{Name: m.String()})
	}
	return nil, fmt.Errorf("entity: encode Method: unsupported %T", m)
}

func DecodeMethod(c codec.Codec, data []byte) (Method, error) {
	return methodUnion.Decode(c, data)
}
