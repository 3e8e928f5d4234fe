package entity

import (
	"fmt"

	"entity-rpc/codec"
)

// Trial order: user, building. Each variant recursively runs the
// family-level union.
var paramUnion = codec.NewUnion("Param",
	codec.Variant[Param]{
		Key: string(FamilyUser),
		Decode: func(c codec.Codec, raw []byte) (Param, error) {
			return DecodeUserParam(c, raw)
		},
	},
	codec.Variant[Param]{
		Key: string(FamilyBuilding),
		Decode: func(c codec.Codec, raw []byte) (Param, error) {
			return DecodeBuildingParam(c, raw)
		},
	},
)

// EncodeParam writes p as {"<family>": {"<method>": {...}}}.
func EncodeParam(c codec.Codec, p Param) ([]byte, error) {
	var (
		inner []byte
		err   error
	)
	switch v := p.(type) {
	case UserParam:
		inner, err = EncodeUserParam(c, v)
	case BuildingParam:
		inner, err = EncodeBuildingParam(c, v)
	default:
		return nil, fmt.Errorf("entity: encode Param: unsupported %T", p)
	}
	if err != nil {
		return nil, err
	}
	return c.Object(map[string][]byte{string(p.Family()): inner})
}

func DecodeParam(c codec.Codec, data []byte) (Param, error) {
	return paramUnion.Decode(c, data)
}
