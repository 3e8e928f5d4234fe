package entity

import (
	"fmt"

	"entity-rpc/codec"
)

// Building is identified by ID. Residents holds user ids; they are opaque
// and not checked against any user store.
type Building struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Residents []string `json:"residents"`
}

type BuildingMethod string

const (
	AddBuilding    BuildingMethod = "addBuilding"
	UpdateBuilding BuildingMethod = "updateBuilding"
	DeleteBuilding BuildingMethod = "deleteBuilding"
)

func (m BuildingMethod) Family() Family { return FamilyBuilding }
func (m BuildingMethod) String() string { return string(m) }

func ParseBuildingMethod(s string) (BuildingMethod, error) {
	switch m := BuildingMethod(s); m {
	case AddBuilding, UpdateBuilding, DeleteBuilding:
		return m, nil
	}
	return "", fmt.Errorf("%w: building %q", ErrUnknownMethod, s)
}

// BuildingParam is the closed set of building operation payloads.
type BuildingParam interface {
	Param
	buildingParam()
}

type AddBuildingParam struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Residents []string `json:"residents"`
}

// UpdateBuildingParam changes only the fields that are set. A non-nil
// NewResidents pointing at an empty list clears the residents.
type UpdateBuildingParam struct {
	BuildingID   string    `json:"buildingId"`
	NewName      *string   `json:"newName,omitempty"`
	NewAddress   *string   `json:"newAddress,omitempty"`
	NewResidents *[]string `json:"newResidents,omitempty"`
}

type DeleteBuildingParam struct {
	BuildingID string `json:"buildingId"`
}

func (AddBuildingParam) Family() Family     { return FamilyBuilding }
func (AddBuildingParam) Method() Method     { return AddBuilding }
func (p AddBuildingParam) TargetID() string { return p.ID }
func (AddBuildingParam) buildingParam()     {}

func (UpdateBuildingParam) Family() Family     { return FamilyBuilding }
func (UpdateBuildingParam) Method() Method     { return UpdateBuilding }
func (p UpdateBuildingParam) TargetID() string { return p.BuildingID }
func (UpdateBuildingParam) buildingParam()     {}

func (DeleteBuildingParam) Family() Family     { return FamilyBuilding }
func (DeleteBuildingParam) Method() Method     { return DeleteBuilding }
func (p DeleteBuildingParam) TargetID() string { return p.BuildingID }
func (DeleteBuildingParam) buildingParam()     {}

func buildingVariant[P BuildingParam](m BuildingMethod) codec.Variant[BuildingParam] {
	return codec.Variant[BuildingParam]{
		Key: m.String(),
		Decode: func(c codec.Codec, raw []byte) (BuildingParam, error) {
			p, err := codec.Payload[P](c, raw)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
	}
}

// Trial order: addBuilding, updateBuilding, deleteBuilding.
var buildingParamUnion = codec.NewUnion("Building.Param",
	buildingVariant[AddBuildingParam](AddBuilding),
	buildingVariant[UpdateBuildingParam](UpdateBuilding),
	buildingVariant[DeleteBuildingParam](DeleteBuilding),
)

func EncodeBuildingParam(c codec.Codec, p BuildingParam) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("entity: encode Building.Param: nil")
	}
	// Residents is a required list; never put null on the wire.
	if add, ok := p.(AddBuildingParam); ok && add.Residents == nil {
		add.Residents = []string{}
		p = add
	}
	return codec.EncodeVariant(c, p.Method().String(), p)
}

func DecodeBuildingParam(c codec.Codec, data []byte) (BuildingParam, error) {
	return buildingParamUnion.Decode(c, data)
}
